// Package server is the thin HTTP shell around the extraction core and the
// OCR engine. Each binary wires the collaborators it runs with; the routes
// registered follow from which collaborators are present.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/instant-receipts/extraction/internal/common"
	"github.com/instant-receipts/extraction/internal/extract"
	"github.com/instant-receipts/extraction/internal/ocr"
)

// BasicAuth holds optional credentials for the OCR endpoints. Zero value
// means auth is disabled.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) enabled() bool {
	return a.Username != "" && a.Password != ""
}

type Config struct {
	Service string // "extract", "ocr", "unified"
	Version string
	Auth    BasicAuth

	MaxUploadBytes int64 // default 20 MiB
}

// Server routes requests to the injected collaborators. Engine and Extractor
// may each be nil; only routes whose collaborators exist are registered.
type Server struct {
	cfg       Config
	engine    *ocr.Engine
	extractor extract.FieldExtractor
	logger    *slog.Logger
	router    chi.Router
}

func New(cfg Config, engine *ocr.Engine, extractor extract.FieldExtractor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		extractor: extractor,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	if s.extractor != nil && s.engine == nil {
		r.Post("/extract", s.handleExtract)
	}
	if s.engine != nil {
		r.Group(func(r chi.Router) {
			r.Use(s.requireBasicAuth)
			r.Post("/ocr", s.handleOCR)
			if s.extractor != nil {
				r.Post("/process", s.handleProcess)
			}
		})
	}

	return r
}

// requireBasicAuth rejects requests when credentials are configured and the
// Authorization header doesn't carry them. With no credentials configured it
// is a no-op, matching the deploy-time opt-in of the OCR services.
func (s *Server) requireBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Auth.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Basic ") {
			s.unauthorized(w)
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
		if err != nil {
			s.unauthorized(w)
			return
		}
		creds := strings.SplitN(string(decoded), ":", 2)
		if len(creds) != 2 || creds[0] != s.cfg.Auth.Username || creds[1] != s.cfg.Auth.Password {
			s.unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="ocr"`)
	s.respondError(w, common.ErrUnauthorized)
}

// respondError maps an error onto an HTTP status via the common sentinels.
// AppErrors keep their message; wrapped causes stay out of the response body.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	msg := err.Error()
	var app *common.AppError
	if errors.As(err, &app) {
		msg = app.Message
	}
	writeError(w, status, msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"ok":      true,
		"service": s.cfg.Service,
		"version": s.cfg.Version,
	}
	if s.engine != nil {
		body["lang"] = s.engine.Lang()
		body["auth_enabled"] = s.cfg.Auth.enabled()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	endpoints := map[string]string{
		"health": "GET /health",
	}
	if s.extractor != nil && s.engine == nil {
		endpoints["extract"] = "POST /extract"
	}
	if s.engine != nil {
		endpoints["ocr"] = "POST /ocr"
		if s.extractor != nil {
			endpoints["process"] = "POST /process"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   s.cfg.Service,
		"version":   s.cfg.Version,
		"endpoints": endpoints,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
