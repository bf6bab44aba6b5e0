// Package serve exposes the completion engine, model catalog and
// configuration over HTTP for drafting clients.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	"github.com/Paranoid-AF/ghostwrite/generate"
	"github.com/Paranoid-AF/ghostwrite/persona"
)

// StatusClientClosed is recorded for requests superseded or abandoned before
// a response was ready. No body is written.
const StatusClientClosed = 499

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Completer returns a raw continuation for text.
type Completer interface {
	Complete(ctx context.Context, text, modelID, persona string) (string, error)
}

// Catalog lists selectable models and the preferred one.
type Catalog interface {
	List(ctx context.Context) ([]ghostwrite.ModelInfo, string)
}

// sessionEntry tracks a cancellable in-flight request for a session.
type sessionEntry struct {
	requestID int
	cancel    context.CancelFunc
}

// Server handles relay requests. A newer completion request for a session
// cancels the older one.
type Server struct {
	engine     Completer
	catalog    Catalog
	config     *ghostwrite.Config
	loadConfig func() (*ghostwrite.Config, error)
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithConfigLoader sets how the config endpoint reads the current configuration.
func WithConfigLoader(load func() (*ghostwrite.Config, error)) Option {
	return func(s *Server) { s.loadConfig = load }
}

// New creates a Server. cfg supplies the default model and persona.
func New(engine Completer, catalog Catalog, cfg *ghostwrite.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = ghostwrite.DefaultConfig()
	}
	s := &Server{
		engine:     engine,
		catalog:    catalog,
		config:     cfg,
		loadConfig: ghostwrite.LoadConfig,
		logger:     slog.Default(),
		sessions:   make(map[string]sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/complete", s.handleComplete)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/personas", s.handlePersonas)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	return mux
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req ghostwrite.CompleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.logger.Warn("invalid request", "error", err)
		writeJSON(w, http.StatusBadRequest, ghostwrite.CompleteResponse{
			Error: &ghostwrite.Error{Code: ghostwrite.CodeInvalidRequest, Message: "invalid JSON body: " + err.Error()},
		})
		return
	}
	s.logger.Debug("request", "request_id", req.RequestID, "session_id", req.SessionID, "model", req.Model, "chars", utf8.RuneCountInString(req.Text))

	if req.Model == "" {
		req.Model = s.config.Editor.DefaultModel
	}
	if req.Persona == "" {
		req.Persona = s.config.Editor.DefaultPersona
	}

	// Cancel any in-flight request for this session and create a new context.
	ctx, cancel := context.WithCancel(r.Context())
	sid := req.SessionID
	reqID := req.RequestID
	if sid != "" {
		s.mu.Lock()
		if prev, ok := s.sessions[sid]; ok {
			prev.cancel()
		}
		s.sessions[sid] = sessionEntry{requestID: reqID, cancel: cancel}
		s.mu.Unlock()
	}
	defer func() {
		cancel()
		if sid != "" {
			s.mu.Lock()
			if cur, ok := s.sessions[sid]; ok && cur.requestID == reqID {
				delete(s.sessions, sid)
			}
			s.mu.Unlock()
		}
	}()

	resp := ghostwrite.CompleteResponse{RequestID: reqID}
	status := http.StatusOK
	if strings.TrimSpace(req.Text) != "" {
		completion, err := s.engine.Complete(ctx, req.Text, req.Model, req.Persona)
		// If cancelled, skip writing; the client has already moved on.
		if ctx.Err() != nil {
			s.logger.Debug("request superseded", "request_id", reqID, "session_id", sid)
			w.WriteHeader(StatusClientClosed)
			return
		}
		if err != nil {
			status, resp.Error = errorResponse(err)
		}
		resp.Completion = completion
	}

	writeJSON(w, status, resp)
}

// errorResponse maps an engine error to an HTTP status and wire error.
func errorResponse(err error) (int, *ghostwrite.Error) {
	var perr *generate.ProviderError
	switch {
	case errors.Is(err, generate.ErrNotConfigured):
		return http.StatusServiceUnavailable, &ghostwrite.Error{Code: ghostwrite.CodeNotConfigured, Message: err.Error()}
	case errors.As(err, &perr):
		return http.StatusBadGateway, &ghostwrite.Error{Code: ghostwrite.CodeProviderError, Message: err.Error()}
	}
	return http.StatusBadRequest, &ghostwrite.Error{Code: ghostwrite.CodeInvalidRequest, Message: err.Error()}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, preferred := s.catalog.List(r.Context())
	writeJSON(w, http.StatusOK, ghostwrite.ModelsResponse{Models: models, Preferred: preferred})
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	def := s.config.Editor.DefaultPersona
	if _, ok := persona.Lookup(def); !ok {
		def = persona.Default
	}
	writeJSON(w, http.StatusOK, ghostwrite.PersonasResponse{Personas: persona.Names(), Default: def})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var resp ghostwrite.ConfigResponse
	status := http.StatusOK

	switch action := r.URL.Query().Get("action"); action {
	case "", "get":
		cfg, err := s.loadConfig()
		if err != nil {
			status = http.StatusInternalServerError
			resp.Error = &ghostwrite.Error{Code: ghostwrite.CodeConfigError, Message: err.Error()}
		} else {
			resp.Config = cfg.Masked()
		}

	case "defaults":
		resp.Config = ghostwrite.DefaultConfig()

	case "validate":
		cfg, err := s.loadConfig()
		if err != nil {
			status = http.StatusInternalServerError
			resp.Error = &ghostwrite.Error{Code: ghostwrite.CodeConfigError, Message: err.Error()}
		} else {
			resp.Warnings = ghostwrite.ValidateConfig(cfg)
		}

	default:
		status = http.StatusBadRequest
		resp.Error = &ghostwrite.Error{
			Code:    ghostwrite.CodeUnknownAction,
			Message: "unknown config action: " + action,
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

// removeStaleSocket deletes a leftover socket file at path.
func removeStaleSocket(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
