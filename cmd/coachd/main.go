// coachd is the chat backend: it relays turns to the assistant service,
// executes the get_content tool against the content index, and serves the
// chat HTTP API.
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

	coach "github.com/edspark/coach"
	"github.com/edspark/coach/src/assistant"
	"github.com/edspark/coach/src/config"
	"github.com/edspark/coach/src/content"
	"github.com/edspark/coach/src/httpapi"
	"github.com/edspark/coach/src/logging"
	"github.com/edspark/coach/src/search"
	"github.com/edspark/coach/src/search/embed"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "coachd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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

	// Content search: remote service or an in-process index.
	var searcher content.Searcher
	var querier httpapi.Querier
	switch cfg.Search.Mode {
	case "local":
		svc, err := buildSearchService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		searcher = svc
		querier = svc
	default:
		remote := content.NewHTTPSearcher(cfg.Search.URL)
		searcher = remote
		querier = remoteQuerier{remote}
	}
	lookup := content.NewClient(searcher, cfg.Search.Limit)

	// Assistant client and the tool the assistant may invoke.
	ac, err := assistant.New(assistant.Config{
		APIKey:       cfg.Assistant.APIKey,
		BaseURL:      cfg.Assistant.BaseURL,
		AssistantID:  cfg.Assistant.AssistantID,
		Model:        cfg.Assistant.Model,
		Instructions: cfg.Assistant.Instructions,
	})
	if err != nil {
		return err
	}

	registry := coach.NewRegistry(coach.NewContentTool(lookup))

	assistantID, err := ac.EnsureAssistant(ctx, registry.Definitions())
	if err != nil {
		return fmt.Errorf("ensure assistant: %w", err)
	}
	logger.Info("assistant ready", zap.String("assistant_id", assistantID))

	driver := coach.NewDriver(ac.API, assistantID, registry, coach.DriverOptions{
		PollInterval: cfg.Assistant.PollInterval.Std(),
		RunTimeout:   cfg.Assistant.RunTimeout.Std(),
		Logger:       logger,
	})
	svc := coach.NewService(coach.NewSessionManager(ac.API), driver)

	server := httpapi.NewServer(cfg.Addr(), svc, querier, logger)

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

func buildSearchService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*search.Service, error) {
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embedder := embed.New(cfg.Search.Embed.Provider, cfg.Search.Embed.Model, cfg.Assistant.APIKey)
	svc := search.NewService(store, embedder, logger)

	items, err := search.LoadCSV(cfg.Search.CSVPath)
	if err != nil {
		return nil, err
	}
	if err := svc.Index(ctx, items); err != nil {
		return nil, err
	}
	return svc, nil
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

// remoteQuerier adapts the HTTP searcher to the query endpoint so coachd can
// proxy direct content queries in remote mode.
type remoteQuerier struct {
	searcher *content.HTTPSearcher
}

func (q remoteQuerier) Search(ctx context.Context, query string, limit int) ([]content.ScoredItem, error) {
	return q.searcher.Search(ctx, query, limit)
}
