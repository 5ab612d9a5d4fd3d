package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Register a display name or look users up",
	}

	register := &cobra.Command{
		Use:   "register [name...]",
		Short: "Register a display name for your key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			name := strings.Join(args, " ")
			if name == "" {
				var err error
				if name, err = GetSimpleText(a.in, "Display name", a.errOut); err != nil {
					return err
				}
			}
			u, err := a.svc.Register(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "registered %q for %s\n", u.Name, u.PublicKey)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			users, err := a.svc.Users(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPUBLIC KEY")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\n", u.Name, u.PublicKey)
			}
			return tw.Flush()
		},
	}

	get := &cobra.Command{
		Use:   "get <public-key>",
		Short: "Look up the name registered for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.svc.User(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, u.Name)
			return nil
		},
	}

	cmd.AddCommand(register, list, get)
	return cmd
}
