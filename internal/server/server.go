// Package server exposes the journal store and the coach over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/config"
	"github.com/ramanasai/reflectboard/internal/db"
)

// RecordStore is the part of db.Store the API needs.
type RecordStore interface {
	List(ctx context.Context) ([]db.Record, error)
	Search(ctx context.Context, keyword string) ([]db.Record, error)
	Get(ctx context.Context, date string) (db.Record, error)
	Upsert(ctx context.Context, rec db.Record) (db.Record, error)
	Delete(ctx context.Context, date string) error
}

type Server struct {
	cfg       config.ServerConfig
	store     RecordStore
	responder *coach.Responder
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
	limiter   *rate.Limiter
}

type Option func(*Server)

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

func New(cfg config.ServerConfig, store RecordStore, responder *coach.Responder, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.ChatRPS > 0 {
		limit = rate.Limit(cfg.ChatRPS)
	}
	burst := cfg.ChatBurst
	if burst < 1 {
		burst = 1
	}
	s := &Server{
		cfg:       cfg,
		store:     store,
		responder: responder,
		logger:    logger,
		gatherer:  prometheus.DefaultGatherer,
		limiter:   rate.NewLimiter(limit, burst),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/reflections", func(r chi.Router) {
			r.Get("/", s.listReflections)
			r.Post("/", s.saveReflection)
			r.Get("/{date}", s.getReflection)
			r.Delete("/{date}", s.deleteReflection)
		})
		r.Post("/chat", s.chat)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
