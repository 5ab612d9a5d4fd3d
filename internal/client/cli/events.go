package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/sigrelay/internal/client/services"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

type draftFlags struct {
	kind uint32
	tags string
	ttl  time.Duration
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint32VarP(&f.kind, "kind", "k", 0, "event kind")
	cmd.Flags().StringVar(&f.tags, "tags", "", "opaque tags string")
	cmd.Flags().DurationVar(&f.ttl, "ttl", 0, "event lifetime (0 never expires)")
}

// draft builds an EventDraft from args, reading the content from the input
// stream when no argument was given.
func (a *App) draft(f *draftFlags, args []string) (services.EventDraft, error) {
	content := strings.Join(args, " ")
	if len(args) == 0 {
		var err error
		if content, err = GetMultiline(a.in, "Content", a.errOut); err != nil {
			return services.EventDraft{}, err
		}
	}
	if f.ttl < 0 {
		return services.EventDraft{}, fmt.Errorf("%w: negative ttl", common.ErrorValidation)
	}
	return services.EventDraft{Content: content, Kind: f.kind, Tags: f.tags, TTL: f.ttl}, nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) printEvents(events []*models.Event) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tCREATED\tEXPIRES\tKIND\tCONTENT")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID, cryptox.Fingerprint(e.PublicKey), formatTime(e.CreatedAt), formatTime(e.ExpiresAt), e.Kind, preview(e.Content))
	}
	tw.Flush()
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 40 {
		return string(r[:39]) + "…"
	}
	return s
}

func (a *App) signCmd() *cobra.Command {
	var (
		f       draftFlags
		keyFile string
	)
	cmd := &cobra.Command{
		Use:   "sign [content...]",
		Short: "Sign an event locally and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			d, err := a.draft(&f, args)
			if err != nil {
				return err
			}
			if keyFile != "" {
				kp, err := cryptox.ReadKeyFile(keyFile)
				if err != nil {
					return err
				}
				e, err := a.svc.SignWith(kp, d)
				if err != nil {
					return err
				}
				return a.printJSON(e)
			}

			pw, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			e, err := a.svc.Sign(ctx, pw, d)
			if err != nil {
				return err
			}
			return a.printJSON(e)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&keyFile, "key-file", "", "sign with this JSON key file instead of the stored identity")
	return cmd
}

func (a *App) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Verify a JSON event from a file or standard input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = a.in
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var e models.Event
			if err := json.NewDecoder(r).Decode(&e); err != nil {
				return fmt.Errorf("%w: %w", common.ErrorBadRequest, err)
			}
			if err := e.Check(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ok %s\n", e.ID)
			return nil
		},
	}
}

func (a *App) publishCmd() *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "publish [content...]",
		Short: "Sign an event and publish it to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			d, err := a.draft(&f, args)
			if err != nil {
				return err
			}
			pw, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			e, err := a.svc.Publish(ctx, pw, d)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, e.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, fetch or delete events on the relay",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List live events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			events, err := a.svc.Events(ctx)
			if err != nil {
				return err
			}
			a.printEvents(events)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch and verify one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			e, err := a.svc.Event(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(e)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.svc.DeleteEvent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}
