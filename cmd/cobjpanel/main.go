package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	hubspotadapter "github.com/ericfisherdev/cobjpanel/internal/adapter/driven/hubspot"
	sqliteadapter "github.com/ericfisherdev/cobjpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/cobjpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/cobjpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/cobjpanel/internal/application"
	"github.com/ericfisherdev/cobjpanel/internal/config"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first; real environment wins).
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"api_base_url", cfg.APIBaseURL,
		"object_type", cfg.ObjectType,
		"properties", cfg.Properties,
	)
	if len(cfg.Properties) == 0 {
		slog.Warn("HS_PROPERTIES is empty: the table has no columns and created records get no properties")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the credential store when an encryption key is configured.
	var credentialStore driven.CredentialStore
	if cfg.HasSecretKey() {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		credentialStore = sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
		slog.Info("credential store opened", "path", cfg.DBPath)
	}

	// 4. Resolve the token: stored credentials take priority over env vars.
	token := application.ResolveToken(ctx, credentialStore, cfg.Token, slog.Default())
	if token == "" {
		slog.Warn("missing HUBSPOT_ACCESS_TOKEN: API calls will fail until a token is provided (do NOT commit it)")
	}

	// 5. Wire the record adapter.
	client, err := hubspotadapter.NewClient(cfg.APIBaseURL, token)
	if err != nil {
		return err
	}
	recordSvc := application.NewRecordService(client, cfg.ObjectType, cfg.Properties)

	// 6. Register API and GUI routes.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(recordSvc, token != "", slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(recordSvc, cfg.RichProperties, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
