package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/sigrelay/internal/client/state"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

func (a *App) printIdentity(id *state.Identity) {
	fmt.Fprintf(a.out, "Public key:  %s\n", id.PublicKey)
	fmt.Fprintf(a.out, "Fingerprint: %s\n", cryptox.Fingerprint(id.PublicKey))
	fmt.Fprintf(a.out, "Sealed:      %t\n", id.IsSealed())
}

// writeKeyFile unlocks the stored key with pw and writes it to path.
func (a *App) writeKeyFile(ctx context.Context, pw []byte, path string) error {
	kp, err := a.svc.ExportKey(ctx, pw)
	if err != nil {
		return err
	}
	if err := cryptox.WriteKeyFile(path, kp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key file:    %s\n", path)
	return nil
}

func (a *App) keygenCmd() *cobra.Command {
	var (
		force bool
		out   string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate and store a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			pw, err := a.newPassphrase()
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			id, err := a.svc.Keygen(ctx, pw, force)
			if err != nil {
				return err
			}
			a.printIdentity(id)
			if out == "" {
				return nil
			}
			return a.writeKeyFile(ctx, pw, out)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing identity")
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the new key pair to this JSON key file")
	return cmd
}

func (a *App) exportKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-key <file>",
		Short: "Write the stored key pair to a JSON key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			pw, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			return a.writeKeyFile(ctx, pw, args[0])
		},
	}
}

func (a *App) importKeyCmd() *cobra.Command {
	var (
		force   bool
		keyFile string
	)
	cmd := &cobra.Command{
		Use:   "import-key [private-key-hex]",
		Short: "Store an existing private key (read from the terminal when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			var priv string
			switch {
			case keyFile != "" && len(args) == 1:
				return errors.New("give either a private key or --key-file, not both")
			case keyFile != "":
				kp, err := cryptox.ReadKeyFile(keyFile)
				if err != nil {
					return err
				}
				priv = kp.PrivateKey
			case len(args) == 1:
				priv = args[0]
			default:
				b, err := GetPassword(a.errOut, "Private key: ")
				if err != nil {
					return err
				}
				priv = string(b)
				common.WipeByteArray(b)
			}

			pw, err := a.newPassphrase()
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			id, err := a.svc.ImportKey(ctx, priv, pw, force)
			if err != nil {
				return err
			}
			a.printIdentity(id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing identity")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "read the key pair from a JSON key file")
	return cmd
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			id, err := a.svc.Identity(ctx)
			if err != nil {
				return err
			}
			a.printIdentity(id)

			sess, err := a.store.Session(ctx, nowFunc())
			if err != nil {
				fmt.Fprintln(a.out, "Session:     none")
				return nil
			}
			fmt.Fprintf(a.out, "Session:     %s (expires %s)\n", sess.ID, formatTime(sess.ExpiresAt.Unix()))
			return nil
		},
	}
}

func (a *App) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored identity and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes the stored private key, pass --yes to confirm")
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			removed, err := a.svc.Reset(ctx)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Fprintln(a.out, "Nothing stored.")
				return nil
			}
			fmt.Fprintf(a.out, "Removed: %s\n", strings.Join(removed, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
