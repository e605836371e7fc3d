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

	"github.com/dhriti/dhriti-backend/internal/announcements"
	"github.com/dhriti/dhriti-backend/internal/app"
	"github.com/dhriti/dhriti-backend/internal/auth"
	"github.com/dhriti/dhriti-backend/internal/batches"
	"github.com/dhriti/dhriti-backend/internal/chapters"
	"github.com/dhriti/dhriti-backend/internal/enrollments"
	"github.com/dhriti/dhriti-backend/internal/freebies"
	"github.com/dhriti/dhriti-backend/internal/inquiries"
	"github.com/dhriti/dhriti-backend/internal/observability"
	"github.com/dhriti/dhriti-backend/internal/platform/db"
	"github.com/dhriti/dhriti-backend/internal/platform/identity"
	"github.com/dhriti/dhriti-backend/internal/platform/storage"
	"github.com/dhriti/dhriti-backend/internal/rbac"
	"github.com/dhriti/dhriti-backend/internal/resources"
	"github.com/dhriti/dhriti-backend/internal/streams"
	"github.com/dhriti/dhriti-backend/internal/subjects"
	"github.com/dhriti/dhriti-backend/internal/timetable"
	"github.com/dhriti/dhriti-backend/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{
		MaxConns:       cfg.PGMaxConns,
		SimpleProtocol: cfg.PGSimpleProtocol,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	identityClient := identity.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.IdentityTimeout)

	objects, err := storage.New(storage.Config{
		ProjectURL: cfg.SupabaseURL,
		Endpoint:   cfg.StorageEndpoint,
		Region:     cfg.StorageRegion,
		KeyID:      cfg.StorageKeyID,
		Secret:     cfg.StorageSecret,
	})
	if err != nil {
		logger.Error("configure storage", slog.Any("error", err))
		os.Exit(1)
	}

	verifier, err := buildVerifier(ctx, cfg, identityClient)
	if err != nil {
		logger.Error("configure token verifier", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	var roles auth.RoleResolver
	if cfg.RoleSource == app.RoleSourceProfile {
		roles = auth.ProfileRoles{Repo: authRepo}
	}
	authenticator := auth.NewAuthenticator(verifier, roles, logger)
	authHandler := auth.NewHandler(logger, auth.NewService(identityClient, authRepo))

	metrics := observability.NewMetrics()
	gate := rbac.Gate{
		Logger: logger,
		OnDeny: func(level rbac.Level) { metrics.GateDenied(level.String()) },
	}

	usersService := users.NewService(users.NewRepository(dbpool), identityClient)
	resourcesService := resources.NewService(resources.NewRepository(dbpool), objects, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Metrics:      metrics,
		Authenticate: authenticator.Middleware,
		AuthHandler:  authHandler,
		Resources: map[string]app.ResourceRoutes{
			"/users":         users.NewHandler(logger, usersService, gate),
			"/streams":       streams.NewHandler(logger, streams.NewRepository(dbpool), gate),
			"/batches":       batches.NewHandler(logger, batches.NewRepository(dbpool), gate),
			"/subjects":      subjects.NewHandler(logger, subjects.NewRepository(dbpool), gate),
			"/chapters":      chapters.NewHandler(logger, chapters.NewRepository(dbpool), gate),
			"/resources":     resources.NewHandler(logger, resourcesService, gate, cfg.UploadMaxBytes),
			"/freebies":      freebies.NewHandler(logger, freebies.NewRepository(dbpool), objects, gate, cfg.UploadMaxBytes),
			"/inquiries":     inquiries.NewHandler(logger, inquiries.NewRepository(dbpool), gate),
			"/announcements": announcements.NewHandler(logger, announcements.NewRepository(dbpool), gate),
			"/timetable":     timetable.NewHandler(logger, timetable.NewRepository(dbpool), gate),
			"/enrollments":   enrollments.NewHandler(logger, enrollments.NewRepository(dbpool), gate),
		},
		HealthChecks: map[string]app.Pinger{
			"postgres": dbpool,
			"identity": identityClient,
		},
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("verifier", cfg.AuthVerifier),
			slog.String("role_source", cfg.RoleSource),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func buildVerifier(ctx context.Context, cfg *app.Config, lookup auth.UserLookup) (auth.Verifier, error) {
	switch cfg.AuthVerifier {
	case app.VerifierRemote:
		return auth.NewRemoteVerifier(lookup), nil
	case app.VerifierJWT:
		return auth.NewHS256Verifier(cfg.SupabaseJWTSecret, "")
	case app.VerifierJWKS:
		return auth.NewJWKSVerifier(ctx, cfg.JWKSURL(), cfg.TokenIssuer(), ""), nil
	default:
		return nil, fmt.Errorf("unknown verifier %q", cfg.AuthVerifier)
	}
}
