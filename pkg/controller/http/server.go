package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/remedios-lab/remedios/pkg/usecase"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	verifyToken string
	appSecret   string
}

type Options func(*Server)

// WithAppSecret enables webhook payload signature verification. Without it
// the POST endpoint accepts unsigned requests, which is only acceptable in
// local development.
func WithAppSecret(secret string) Options {
	return func(s *Server) {
		s.appSecret = secret
	}
}

func New(uc *usecase.UseCases, verifyToken string, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		verifyToken: verifyToken,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})

	r.Route("/webhook", func(r chi.Router) {
		r.Get("/", s.handleVerify)
		r.With(SignatureMiddleware(s.appSecret)).Post("/", s.handleEvent)
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
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
