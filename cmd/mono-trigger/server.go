package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gogithub "github.com/google/go-github/v68/github"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server wraps the HTTP server and its lifecycle.
type Server struct {
	container *Container
	srv       *http.Server
}

// NewServer creates a new HTTP server with routes.
func NewServer(container *Container) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", container.Config.Port),
		Handler:           newRouter(container.WebhookHandler, container.Logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Deliveries are routed inline; leave room for the pipeline calls.
		WriteTimeout: 30 * time.Second,
	}

	return &Server{
		container: container,
		srv:       srv,
	}
}

func newRouter(webhook http.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, "/webhook", webhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	return otelhttp.NewHandler(r, "mono-trigger")
}

type requestIDKey struct{}

// requestID tags each request with the GitHub delivery ID when present,
// otherwise a fresh UUID, and echoes it in X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := gogithub.DeliveryID(r)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			id, _ := r.Context().Value(requestIDKey{}).(string)
			log.Debug("request completed",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// Run starts the server and handles graceful shutdown.
func (s *Server) Run() error {
	log := s.container.Logger

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.Int("port", s.container.Config.Port))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
