// Package app implements the cobjctl command tree.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	hubspotadapter "github.com/ericfisherdev/cobjpanel/internal/adapter/driven/hubspot"
	sqliteadapter "github.com/ericfisherdev/cobjpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/config"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

// Options holds state shared by all subcommands.
type Options struct {
	envFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

// New returns the root command.
func New() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "cobjctl",
		Short:         "manage the custom object panel from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.complete(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read before the environment")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(NewToken(opts))
	cmd.AddCommand(NewRecords(opts))
	return cmd
}

func (o *Options) complete(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
	return nil
}

// withCredentialStore opens the credential database for the duration of fn.
func (o *Options) withCredentialStore(ctx context.Context, fn func(driven.CredentialStore) error) error {
	if !o.cfg.HasSecretKey() {
		return driven.ErrEncryptionKeyNotSet
	}

	db, err := sqliteadapter.NewDB(ctx, o.cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	return fn(sqliteadapter.NewCredentialRepo(db, o.cfg.SecretKey))
}

// recordService builds the record adapter the same way the server does.
func (o *Options) recordService(ctx context.Context) (*application.RecordService, error) {
	token := o.cfg.Token
	if o.cfg.HasSecretKey() {
		err := o.withCredentialStore(ctx, func(store driven.CredentialStore) error {
			token = application.ResolveToken(ctx, store, o.cfg.Token, o.logger)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if token == "" {
		o.logger.Warn("no token configured; requests will be rejected by the API")
	}

	client, err := hubspotadapter.NewClient(o.cfg.APIBaseURL, token)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	return application.NewRecordService(client, o.cfg.ObjectType, o.cfg.Properties), nil
}
