// Package httpapi exposes the chat backend and the search service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	coach "github.com/edspark/coach"
	"github.com/edspark/coach/src/content"
)

// ChatService is the orchestration facade the chat endpoints call into.
type ChatService interface {
	NewSession(ctx context.Context) (string, error)
	Send(ctx context.Context, sessionID, userText string) (string, error)
}

// Querier answers direct content queries.
type Querier interface {
	Search(ctx context.Context, query string, limit int) ([]content.ScoredItem, error)
}

// Server is the chat backend's HTTP front. It always answers: a failed turn
// maps to an error payload so the chat surface can re-enable its input
// rather than wait forever.
type Server struct {
	router  *mux.Router
	chat    ChatService
	querier Querier
	logger  *zap.Logger
	server  *http.Server
}

func NewServer(addr string, chat ChatService, querier Querier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  mux.NewRouter(),
		chat:    chat,
		querier: querier,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      withCORS(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a turn may poll through several tool rounds
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/api/sessions", s.handleCreateSession).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost, http.MethodOptions)
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the wired router, mainly for tests.
func (s *Server) Handler() http.Handler { return withCORS(s.router) }

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.chat.NewSession(r.Context())
	if err != nil {
		s.logger.Error("create session failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "error creating session")
		return
	}
	writeJSON(w, http.StatusOK, createSessionResponse{SessionID: id})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "sessionId and message are required")
		return
	}

	reply, err := s.chat.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("turn failed",
			zap.String("session", req.SessionID),
			zap.Error(err))
		writeError(w, statusForError(err), "error sending message")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: reply})
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type queryResponse struct {
	Results []content.ScoredItem `json:"results"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.querier == nil {
		writeError(w, http.StatusNotFound, "content query not available on this server")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query text is required")
		return
	}

	results, err := s.querier.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "an error occurred during the query")
		return
	}
	if results == nil {
		results = []content.ScoredItem{}
	}
	writeJSON(w, http.StatusOK, queryResponse{Results: results})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, coach.ErrRunAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, coach.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, coach.ErrLookupUnavailable),
		errors.Is(err, coach.ErrSessionCreationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
