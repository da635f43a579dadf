package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SearchServer is the standalone search service's HTTP front: just the
// query endpoint and a health check.
type SearchServer struct {
	router *mux.Router
	server *http.Server
	inner  *Server
}

func NewSearchServer(addr string, querier Querier, logger *zap.Logger) *SearchServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	inner := &Server{
		router:  mux.NewRouter(),
		querier: querier,
		logger:  logger,
	}
	s := &SearchServer{router: inner.router, inner: inner}
	s.router.HandleFunc("/healthz", inner.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/query", inner.handleQuery).Methods(http.MethodPost, http.MethodOptions)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      withCORS(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *SearchServer) Start() error {
	s.inner.logger.Info("search server starting", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *SearchServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the wired router, mainly for tests.
func (s *SearchServer) Handler() http.Handler { return withCORS(s.router) }
