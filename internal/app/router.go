package app

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dhriti/dhriti-backend/internal/auth"
	"github.com/dhriti/dhriti-backend/internal/observability"
	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResourceRoutes is implemented by every resource handler.
type ResourceRoutes interface {
	MountRoutes(r chi.Router, authed func(http.Handler) http.Handler)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	// Authenticate attaches the verified principal or rejects the request.
	Authenticate func(http.Handler) http.Handler
	AuthHandler  *auth.Handler

	// Resources maps a mount path such as "/batches" to its handler.
	Resources map[string]ResourceRoutes

	// HealthChecks are pinged concurrently by /healthz.
	HealthChecks map[string]Pinger
}

// NewRouter constructs the chi.Router with Dhriti defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Dhriti Backend running"))
	})
	r.Get("/healthz", healthHandler(logger, params.HealthChecks))

	authed := params.Authenticate
	if authed == nil {
		authed = func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				httpx.Fail(w, http.StatusUnauthorized, "Missing token")
			})
		}
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.With(authed).Get("/me", params.AuthHandler.Me)
	}

	paths := make([]string, 0, len(params.Resources))
	for path := range params.Resources {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		handler := params.Resources[path]
		r.Route(path, func(r chi.Router) {
			handler.MountRoutes(r, authed)
		})
	}

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	return r
}

func healthHandler(logger *slog.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			g.Go(func() error {
				if err := pinger.Ping(ctx); err != nil {
					logger.Warn("health check failed", slog.String("dependency", name), slog.Any("error", err))
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.OK(w, map[string]string{"status": "ok"})
	}
}
