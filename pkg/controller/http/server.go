package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mootai/moot/pkg/service/worker"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/logging"
)

// DefaultMaxUploadBytes bounds one multipart upload request
const DefaultMaxUploadBytes int64 = 100 << 20

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	owner          OwnerResolver
	maxUploadBytes int64
	monitor        *worker.BackendMonitor
}

type Options func(*Server)

// WithOwnerResolver sets how the owner of a request is identified. Without
// it every request belongs to DefaultOwner.
func WithOwnerResolver(resolve OwnerResolver) Options {
	return func(s *Server) {
		s.owner = resolve
	}
}

func WithMaxUploadBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithBackendMonitor adds the latest backend probe to the liveness response
func WithBackendMonitor(m *worker.BackendMonitor) Options {
	return func(s *Server) {
		s.monitor = m
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		owner:          FixedOwner(DefaultOwner),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleLiveness)

	r.Route("/api/cases", func(r chi.Router) {
		r.Use(ownerMiddleware(s.owner))
		r.Post("/upload", s.handleUpload)
		r.Get("/files/{name}", s.handleDownload)
		r.Post("/contents", s.handleContents)
		r.Post("/summarize", s.handleSummarize)
	})

	r.Route("/api/debate", func(r chi.Router) {
		r.Use(ownerMiddleware(s.owner))
		r.Post("/directive", s.handleDirective)
		r.Post("/generate", s.handleGenerate)
		r.Post("/verdict", s.handleVerdict)
		r.Get("/health", s.handleBackendHealth)
		r.Post("/model/init", s.handleModelInit)
		r.Get("/model/status", s.handleModelStatus)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type livenessResponse struct {
	Status  string                  `json:"status"`
	Backend *worker.BackendSnapshot `json:"backend,omitempty"`
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeOK(w, r, "ok", "ok")
		return
	}
	writeOK(w, r, "ok", livenessResponse{Status: "ok", Backend: s.monitor.Snapshot()})
}
