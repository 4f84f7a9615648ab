package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/chanscope/pkg/config"
	"github.com/codeGROOVE-dev/chanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/chanscope/pkg/notify"
	"github.com/codeGROOVE-dev/chanscope/pkg/server"
	"github.com/codeGROOVE-dev/chanscope/pkg/settings"
	"github.com/codeGROOVE-dev/chanscope/pkg/youtube"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	yt, err := newYouTube(ctx, cfg)
	if err != nil {
		return err
	}

	store := settings.Open(cfg.DataDir,
		settings.WithDefault(settings.KeyContactURL, cfg.DefaultContact),
		settings.WithLogger(logger))
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close settings store", "error", err)
		}
	}()

	notifier := notify.New(cfg.TelegramToken, cfg.TelegramChatID,
		notify.WithAPIURL(cfg.TelegramAPIURL),
		notify.WithLogger(logger))
	if !notifier.Configured() {
		logger.Warn("telegram not configured, leads will only be logged")
	}

	srv := server.New(yt,
		server.WithNotifier(notifier),
		server.WithSettings(store),
		server.WithAdminToken(cfg.AdminToken),
		server.WithAllowedOrigins(cfg.AllowedOrigins...),
		server.WithSubmitRate(cfg.SubmitRPS, 5),
		server.WithLogger(logger))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 15*time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "data_dir", cfg.DataDir, "settings_persistent", store.Persistent())
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newYouTube(ctx context.Context, cfg *config.Config) (*youtube.Client, error) {
	fetcher := fetch.New(fetch.WithTimeout(cfg.FetchTimeout), fetch.WithLogger(logger))
	yt, err := youtube.New(ctx, youtube.WithFetcher(fetcher), youtube.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	return yt, nil
}
