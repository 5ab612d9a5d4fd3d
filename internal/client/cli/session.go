package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/sigrelay/internal/client/state"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

func (a *App) printSession(sess *state.Session) {
	fmt.Fprintf(a.out, "Session:     %s\n", sess.ID)
	fmt.Fprintf(a.out, "Server key:  %s (%s)\n", sess.ServerPublicKey, cryptox.Fingerprint(sess.ServerPublicKey))
	fmt.Fprintf(a.out, "Expires:     %s\n", formatTime(sess.ExpiresAt.Unix()))
}

func (a *App) loginCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session with the relay using the stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if ttl < 0 {
				return fmt.Errorf("%w: negative ttl", common.ErrorValidation)
			}
			pw, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			sess, err := a.svc.Login(ctx, pw, ttl)
			if err != nil {
				return err
			}
			a.printSession(sess)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "requested session lifetime (0 for the server default)")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return a.svc.Logout(ctx)
		},
	}
}

func (a *App) sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session as the relay sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			sess, err := a.svc.Session(ctx)
			if err != nil {
				return err
			}
			a.printSession(sess)
			return nil
		},
	}
}

func (a *App) secretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Print the shared secret of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			pw, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			secret, err := a.svc.SharedSecret(ctx, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, secret)
			return nil
		},
	}
}
