// internal/server/router.go
package server

import (
	"context"
	"net/http"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is what the handlers need from the activity registry.
type Registry interface {
	List() models.ActivityCatalog
	Signup(ctx context.Context, activity, email string) (*models.SignupResult, error)
	RemoveParticipant(ctx context.Context, activity, email string) (*models.SignupResult, error)
}

// Check reports whether a dependency is usable. Used by /ready.
type Check func(ctx context.Context) error

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, route string, status int, duration time.Duration)
}

type Options struct {
	// StaticDir serves the browser UI under /static and redirects / to it.
	StaticDir string
	Recorder  RequestRecorder
}

type Handler struct {
	registry Registry
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	checks   map[string]Check
}

func NewHandler(registry Registry, log logger.Logger, checks map[string]Check) *Handler {
	return &Handler{
		registry: registry,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
		checks:   checks,
	}
}

func NewRouter(h *Handler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(tracingMiddleware)
	r.Use(loggingMiddleware(h.logger))
	r.Use(metricsMiddleware(opts.Recorder))
	r.Use(recoverMiddleware(h.errors, h.logger))

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	r.Handle("/metrics", promhttp.Handler())

	if opts.StaticDir != "" {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
		})
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.listActivities)
		r.Post("/{activity}/signup", h.signup)
		r.Delete("/{activity}/participants", h.removeParticipant)
	})

	return r
}
