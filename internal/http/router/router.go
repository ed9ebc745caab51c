package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/straye-as/cbam-api/docs"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/http/handler"
	"github.com/straye-as/cbam-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	healthHandler      *handler.HealthHandler
	authHandler        *handler.AuthHandler
	referenceHandler   *handler.ReferenceHandler
	calculationHandler *handler.CalculationHandler
	entryHandler       *handler.EntryHandler
	submissionHandler  *handler.SubmissionHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	referenceHandler *handler.ReferenceHandler,
	calculationHandler *handler.CalculationHandler,
	entryHandler *handler.EntryHandler,
	submissionHandler *handler.SubmissionHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		healthHandler:      healthHandler,
		authHandler:        authHandler,
		referenceHandler:   referenceHandler,
		calculationHandler: calculationHandler,
		entryHandler:       entryHandler,
		submissionHandler:  submissionHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(middleware.BodyLimit(rt.cfg.Server.MaxBodyBytes))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// Health checks
	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)

		r.Get("/auth/me", rt.authHandler.Me)

		// Reference data
		r.Route("/reference", func(r chi.Router) {
			r.Get("/", rt.referenceHandler.Summary)
			r.Get("/phase-in", rt.referenceHandler.PhaseIn)
			r.Get("/categories", rt.referenceHandler.Categories)
			r.Get("/country-tiers", rt.referenceHandler.CountryTiers)
		})

		// Stateless calculations
		r.Post("/calculations", rt.calculationHandler.Calculate)
		r.Post("/calculations/preview", rt.calculationHandler.Preview)
		r.Post("/calculations/certificates", rt.calculationHandler.Certificates)
		r.Post("/defaults/resolve", rt.calculationHandler.ResolveDefault)

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", rt.entryHandler.List)
			r.Post("/", rt.entryHandler.Create)
			r.Get("/{id}", rt.entryHandler.GetByID)
			r.Put("/{id}", rt.entryHandler.Update)
			r.Delete("/{id}", rt.entryHandler.Delete)

			r.Post("/{id}/precursors", rt.entryHandler.AddPrecursor)
			r.Delete("/{id}/precursors/{precursorId}", rt.entryHandler.RemovePrecursor)

			// Review
			r.Post("/{id}/validation", rt.entryHandler.RecordValidation)
			r.With(rt.authMiddleware.RequireRole(auth.RoleVerifier)).
				Post("/{id}/verification", rt.entryHandler.RecordVerification)
			r.Post("/{id}/request-change", rt.entryHandler.RequestChange)

			// Locks
			r.Post("/{id}/locks", rt.entryHandler.AddLock)
			r.Post("/{id}/locks/{lockId}/resolve", rt.entryHandler.ResolveLock)

			// Lifecycle
			r.Post("/{id}/recalculate", rt.entryHandler.Recalculate)
			r.Get("/{id}/state", rt.entryHandler.GetState)
			r.Get("/{id}/gates", rt.entryHandler.GetGates)
			r.Get("/{id}/evaluation", rt.entryHandler.Evaluate)
			r.Post("/{id}/submit", rt.entryHandler.Submit)
		})

		// Submission log
		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", rt.submissionHandler.List)
			r.Get("/{id}", rt.submissionHandler.GetByID)
			r.Get("/{id}/archive", rt.submissionHandler.Archive)
		})

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRole(auth.RoleAdmin))
			r.Post("/reference/reload", rt.referenceHandler.Reload)
			r.Post("/recalculate", rt.entryHandler.RecalculateStale)
		})
	})

	return r
}
