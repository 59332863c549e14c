package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"qualrole/internal/config"
	"qualrole/internal/notion"
	"qualrole/internal/serverapp"
)

func main() {
	config.LoadDotEnv()

	path := os.Getenv("QUALROLE_CONFIG")
	if path == "" {
		path = "qualrole_config.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal("load config", "path", path, "err", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func newHandler(cfg *config.Config, logger *log.Logger) (http.Handler, error) {
	if cfg.Notion.DatabaseID != "" && cfg.Notion.Token == "" {
		logger.Warn("NOTION_API_KEY is not set, Notion will reject the queries")
	}
	client := notion.NewClient(cfg.Notion.Token, &http.Client{Timeout: cfg.Notion.Timeout})
	source := notion.NewFetcher(client.Database, cfg.Notion.Fetcher(), logger.WithPrefix("notion"))

	return serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Source: source,
		Logger: logger,
	})
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	handler, err := newHandler(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "build server")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "notion_configured", cfg.Notion.DatabaseID != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
