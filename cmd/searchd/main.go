// searchd is the content search service: it seeds the vector index from the
// lesson-content CSV and answers ranked similarity queries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/edspark/coach/src/config"
	"github.com/edspark/coach/src/httpapi"
	"github.com/edspark/coach/src/logging"
	"github.com/edspark/coach/src/search"
	"github.com/edspark/coach/src/search/embed"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 5001, "listen port")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "searchd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	embedder := embed.New(cfg.Search.Embed.Provider, cfg.Search.Embed.Model, cfg.Assistant.APIKey)
	svc := search.NewService(store, embedder, logger)

	items, err := search.LoadCSV(cfg.Search.CSVPath)
	if err != nil {
		return err
	}
	if err := svc.Index(ctx, items); err != nil {
		return err
	}
	count, _ := svc.Count(ctx)
	logger.Info("index ready", zap.Int("documents", count))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	server := httpapi.NewSearchServer(addr, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context, cfg *config.Config) (search.Store, error) {
	switch cfg.Search.Store.Type {
	case "qdrant":
		qs := search.NewQdrantStore(
			cfg.Search.Store.Qdrant.URL,
			cfg.Search.Store.Qdrant.Collection,
			cfg.Search.Store.Qdrant.APIKey,
		)
		if err := qs.EnsureCollection(ctx, cfg.Search.Embed.Dim); err != nil {
			return nil, err
		}
		return qs, nil
	case "postgres":
		ps, err := search.NewPostgresStore(ctx, cfg.Search.Store.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := ps.CreateSchema(ctx, cfg.Search.Embed.Dim); err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return search.NewMemoryStore(), nil
	}
}
