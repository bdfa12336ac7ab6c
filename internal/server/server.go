// Package server exposes the tutor operations over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/tutor"
)

const (
	serviceName     = "adaptutor"
	shutdownTimeout = 10 * time.Second
)

// Service is the set of tutor operations the API serves.
type Service interface {
	SelectQuestions(ctx context.Context, userID, concept string, n int) (questions.Selection, error)
	EvaluateAnswer(ctx context.Context, req tutor.EvaluateRequest) (*evaluator.Result, error)
	GetMastery(ctx context.Context, userID, concept string) (mastery.Record, error)
	Concepts(ctx context.Context) ([]string, error)
	UpsertLearner(ctx context.Context, id, name, email string) (*mastery.Learner, error)
	GetLearner(ctx context.Context, id string) (*mastery.Learner, error)
}

type Config struct {
	Addr string
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string
	Version     string
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	svc    Service
	log    *logger.Logger
	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds the router.
func New(cfg Config, svc Service, opts ...Option) *Server {
	s := &Server{cfg: cfg, svc: svc, log: logger.Nop()}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(s.observe())
	s.routes(r)
	s.engine = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/user", s.upsertUser)
	v1.GET("/user/:id", s.getUser)
	v1.GET("/concepts", s.concepts)
	v1.POST("/practice", s.practice)
	v1.POST("/submit_answer", s.submitAnswer)
	v1.GET("/mastery/:user/:concept", s.mastery)
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.engine)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
