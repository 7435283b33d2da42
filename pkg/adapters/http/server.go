package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/report"
	"github.com/aretw0/gss/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 1 << 20

	// SessionHeader carries the session id in both directions.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the fallback for browsers that do not set the header.
	SessionCookie = "gss_session"
)

// Server serves the solver over JSON.
type Server struct {
	Solver  *gss.Solver
	Streams *StreamManager

	logger       *slog.Logger
	metrics      http.Handler
	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and handler errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewHandler creates the HTTP handler for solver.
func NewHandler(solver *gss.Solver, opts ...Option) http.Handler {
	s := &Server{
		Solver:       solver,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/", s.Welcome)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/solve", s.Solve)
		r.Get("/history", s.GetHistory)
		r.Delete("/history", s.ClearHistory)
		r.Get("/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Golden Section Search API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Welcome handles GET /.
func (s *Server) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the GSS Solver API. Visit /swagger for details.",
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "gss-http",
		"version":     strings.TrimSpace(gss.Version),
		"api_version": apiVersion,
	})
}

// Solve handles POST /api/solve.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}

	in, err := s.decodeSolveRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload, err := s.Solver.Solve(r.Context(), sessionID, in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if body, err := json.Marshal(payload); err == nil && s.Solver.History() != nil {
		s.Streams.Broadcast(sessionID, Event{Type: "solved", Data: string(body)})
	}
	writeJSON(w, http.StatusOK, payload)
}

// decodeSolveRequest validates the body against the SolveRequest schema before decoding
// it, so that wrong types are reported per field instead of as a generic decode error.
func (s *Server) decodeSolveRequest(w http.ResponseWriter, r *http.Request) (gss.Input, error) {
	var in gss.Input
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, &domain.InvalidInputError{Field: "body", Reason: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return in, &domain.InvalidInputError{Field: "body", Reason: "failed to read request body"}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return in, &domain.InvalidInputError{Field: "body", Reason: "malformed JSON"}
	}

	schema, err := requestSchema("SolveRequest")
	if err != nil {
		return in, err
	}
	if err := schema.VisitJSON(raw); err != nil {
		return in, schemaError(err)
	}

	if err := json.Unmarshal(body, &in); err != nil {
		return in, &domain.InvalidInputError{Field: "body", Reason: "malformed JSON"}
	}
	return in, nil
}

// GetHistory handles GET /api/history. Entries are returned newest first.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}

	entries := []domain.HistoryEntry{}
	if m := s.Solver.History(); m != nil {
		list, err := m.List(r.Context(), sessionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		entries = list
	}
	slices.Reverse(entries)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// ClearHistory handles DELETE /api/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}

	if m := s.Solver.History(); m != nil {
		if err := m.Clear(r.Context(), sessionID); err != nil {
			s.writeError(w, err)
			return
		}
		s.Streams.Broadcast(sessionID, Event{Type: "cleared", Data: fmt.Sprintf("{%q:%q}", "session_id", sessionID)})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared successfully."})
}

// SubscribeEvents handles the GET /api/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}
	sessionID, ok := s.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE client subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
			flusher.Flush()
		}
	}
}

// session resolves the caller's session: header first, then cookie, else a fresh id.
// The id is echoed in both so that clients can pick either.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = session.NewID()
	}
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, &domain.InvalidInputError{Field: "session_id", Reason: err.Error()})
		return "", false
	}

	w.Header().Set(SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidExpression, domain.KindInvalidBounds, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindDomain, domain.KindEvaluation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	payload := gss.NewErrorPayload(err)
	status := StatusFor(payload.Kind)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]*report.ErrorPayload{"error": payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
