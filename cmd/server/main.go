package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"etherduel/internal/battle"
	"etherduel/internal/catalog"
	"etherduel/internal/config"
	"etherduel/internal/session"
	"etherduel/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	slog.Info("catalog loaded", "path", cfg.CatalogPath, "cards", len(cat.Cards()), "rules", cfg.RulesPath)

	srv := &web.Server{
		Engine: battle.NewEngine(cat, rules, slog.Default()),
		Store:  session.NewMemoryStore[web.Record](),
		Logger: slog.Default(),
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
