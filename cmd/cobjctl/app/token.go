package app

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

// NewToken returns the "token" command group.
func NewToken(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "store or clear the encrypted API token",
	}
	cmd.AddCommand(newTokenSet(opts), newTokenClear(opts), newTokenShow(opts), newTokenList(opts))
	return cmd
}

func newTokenSet(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set [<token>|-]",
		Short: "store a pre-issued private app token (\"-\" or no argument reads stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 && args[0] != "-" {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token from stdin: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token must not be empty")
			}

			return opts.withCredentialStore(cmd.Context(), func(store driven.CredentialStore) error {
				if err := store.Set(cmd.Context(), application.TokenService, application.TokenKey, token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token stored")
				return nil
			})
		},
	}
}

func newTokenClear(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "remove the stored token; the environment token applies again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withCredentialStore(cmd.Context(), func(store driven.CredentialStore) error {
				if err := store.Delete(cmd.Context(), application.TokenService, application.TokenKey); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
				return nil
			})
		},
	}
}

func newTokenShow(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "show which token source is active, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			stored := ""
			if opts.cfg.HasSecretKey() {
				err := opts.withCredentialStore(cmd.Context(), func(store driven.CredentialStore) error {
					v, err := store.Get(cmd.Context(), application.TokenService, application.TokenKey)
					stored = v
					return err
				})
				if err != nil {
					return err
				}
			}

			switch {
			case stored != "":
				fmt.Fprintf(out, "stored: %s\n", model.MaskSecret(stored))
			case opts.cfg.Token != "":
				fmt.Fprintf(out, "environment: %s\n", model.MaskSecret(opts.cfg.Token))
			default:
				fmt.Fprintln(out, "none")
			}
			return nil
		},
	}
}

func newTokenList(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list every stored credential, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withCredentialStore(cmd.Context(), func(store driven.CredentialStore) error {
				creds, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SERVICE\tKEY\tVALUE\tUPDATED")
				for _, c := range creds {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Service, c.Key, c.Masked(), c.UpdatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}
