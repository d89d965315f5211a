package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/transmission-rest/filter"
	"github.com/s0up4200/transmission-rest/status"
)

// DefaultPath is the path suffix of the status endpoint.
const DefaultPath = "/api/v1/transmission-rest"

const (
	filterParam    = "filter"
	badPostMessage = "Bad POST: Server does not support POST'ing data"
)

// Translator builds status documents. *status.Translator implements it.
type Translator interface {
	Translate(ctx context.Context) (status.Document, error)
	ErrorDocument(message string) status.Document
}

// Server serves the status endpoint.
type Server struct {
	translator Translator
	compiler   filter.Compiler
	path       string
	logger     zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPath sets the path suffix that serves the status document.
func WithPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// WithFilterCompiler replaces the compiler used for ?filter= expressions.
func WithFilterCompiler(compiler filter.Compiler) Option {
	return func(s *Server) {
		if compiler != nil {
			s.compiler = compiler
		}
	}
}

// NewServer creates a new status server
func NewServer(translator Translator, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		translator: translator,
		compiler:   filter.NewExprCompiler(filter.WithCache(filter.DefaultCacheSize)),
		path:       DefaultPath,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ServeHTTP dispatches on method and path.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !strings.HasSuffix(r.URL.Path, s.path) {
			s.logger.Debug().
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("Rejected request for unknown path")
			s.respondEmpty(w, http.StatusForbidden)
			return
		}
		s.handleStatus(w, r)

	case http.MethodPost:
		s.logger.Debug().
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Msg("Rejected POST request")
		s.respondJSON(w, http.StatusBadRequest, s.translator.ErrorDocument(badPostMessage))

	default:
		w.Header().Set("Allow", "GET, POST")
		s.respondEmpty(w, http.StatusMethodNotAllowed)
	}
}

// handleStatus handles GET <path>[?filter=expr]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var compiled filter.CompiledFilter
	if expression := r.URL.Query().Get(filterParam); expression != "" {
		var err error
		compiled, err = s.compiler.Compile(expression)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, s.translator.ErrorDocument(err.Error()))
			return
		}
	}

	doc, err := s.translator.Translate(r.Context())
	if err != nil {
		s.respondJSON(w, statusCode(err), doc)
		return
	}

	if compiled != nil {
		doc = doc.Filter(compiled.Evaluate)
	}

	s.respondJSON(w, http.StatusOK, doc)
}

// statusCode maps a translation failure to an HTTP status
func statusCode(err error) int {
	switch {
	case errors.Is(err, status.ErrSourceUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, status.ErrSourceTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
		s.respondEmpty(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) respondEmpty(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
}
