package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/sigrelay/internal/client/api"
	"github.com/dmitrijs2005/sigrelay/internal/client/config"
	"github.com/dmitrijs2005/sigrelay/internal/client/services"
	"github.com/dmitrijs2005/sigrelay/internal/client/state"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/filex"
)

// nowFunc is a test seam for the local clock.
var nowFunc = time.Now

// App holds what the commands share once the persistent flags are parsed.
type App struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg   *config.Config
	store *state.Store
	svc   *services.RelayService

	passphrase string
}

func dial(cfg *config.Config) (api.Client, error) {
	if cfg.Transport == config.TransportHTTP {
		return api.NewHTTPClient(cfg.Endpoint(), &http.Client{Timeout: cfg.Timeout}), nil
	}
	return api.NewGRPCClient(cfg.Endpoint())
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	if _, err := filex.EnsureParentDir(cfg.StatePath); err != nil {
		return err
	}
	st, err := state.Open(cmd.Context(), cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	a.store = st

	client, err := dial(cfg)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Endpoint(), err)
	}
	a.svc = services.NewRelayService(client, st)
	return nil
}

// Close releases the relay connection and the state database.
func (a *App) Close() error {
	var errs []error
	if a.svc != nil {
		errs = append(errs, a.svc.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// ctx bounds one command by the configured timeout.
func (a *App) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
}

// unlock returns the passphrase for the stored key: the --passphrase value,
// a terminal prompt when the key is sealed, or nil.
func (a *App) unlock(ctx context.Context) ([]byte, error) {
	if a.passphrase != "" {
		return []byte(a.passphrase), nil
	}
	id, err := a.svc.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if !id.IsSealed() {
		return nil, nil
	}
	return GetPassword(a.errOut, "Passphrase: ")
}

// newPassphrase asks for a passphrase to seal a new key, twice.
func (a *App) newPassphrase() ([]byte, error) {
	if a.passphrase != "" {
		return []byte(a.passphrase), nil
	}
	pw, err := GetPassword(a.errOut, "New passphrase (empty for none): ")
	if err != nil || len(pw) == 0 {
		return nil, err
	}
	again, err := GetPassword(a.errOut, "Repeat passphrase: ")
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(again)
	if !bytes.Equal(pw, again) {
		common.WipeByteArray(pw)
		return nil, errors.New("passphrases do not match")
	}
	return pw, nil
}

// NewRootCmd builds the command tree. The returned App must be closed after
// the command has run.
func NewRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, *App) {
	a := &App{in: bufio.NewReader(in), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "sigrelay",
		Short:         "Sign events and talk to a sigrelay server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&a.passphrase, "passphrase", "p", "", "passphrase of a sealed private key (prompted when omitted)")

	root.AddCommand(
		a.keygenCmd(),
		a.importKeyCmd(),
		a.exportKeyCmd(),
		a.whoamiCmd(),
		a.resetCmd(),
		a.signCmd(),
		a.verifyCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.sessionCmd(),
		a.secretCmd(),
		a.publishCmd(),
		a.eventsCmd(),
		a.usersCmd(),
		a.pingCmd(),
		versionCmd(),
	)
	return root, a
}

// Execute runs the CLI against the process's standard streams.
func Execute(ctx context.Context) error {
	root, app := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	defer app.Close()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "never"
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
