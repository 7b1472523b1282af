package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/config"
	"talent-pipeline/internal/directory"
	"talent-pipeline/internal/logger"
	"talent-pipeline/internal/metrics"
)

// Provisioner sets up per-tenant notification delivery. It is nil when no
// message broker is configured.
type Provisioner interface {
	AddTenant(tenantID string) error
}

type API struct {
	Directory   *directory.Directory
	Provisioner Provisioner
	Cfg         *config.Config
	Logger      *zap.Logger
	Limiter     *RateLimiter
}

func NewAPI(dir *directory.Directory, prov Provisioner, cfg *config.Config, log *zap.Logger) *API {
	return &API{
		Directory:   dir,
		Provisioner: prov,
		Cfg:         cfg,
		Logger:      log,
		Limiter:     NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if a.Cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logger.Middleware(a.Logger))
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/health", a.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/auth/register", a.Register)
	r.Post("/auth/login", a.Login)
	r.Get("/companies/{companyID}", a.GetBranding)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(a.Limiter))

		r.Post("/companies/{companyID}/subscribers", a.Subscribe)
		r.Put("/subscribers/{id}/profile", a.CompleteProfile)
	})

	// Secured
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware)

		r.Get("/me", a.GetMe)
		r.Patch("/me", a.UpdateMe)

		r.Get("/subscribers", a.ListSubscribers)
		r.Post("/subscribers/bulk-assign", a.BulkAssign)
		r.Patch("/subscribers/{id}", a.UpdateSubscriber)
		r.Delete("/subscribers/{id}", a.DeleteSubscriber)
		r.Put("/subscribers/{id}/pools", a.AssignPools)

		r.Get("/talent-pools", a.ListTalentPools)
		r.Post("/talent-pools", a.CreateTalentPool)
		r.Get("/talent-pools/{id}", a.GetTalentPool)
		r.Patch("/talent-pools/{id}", a.UpdateTalentPool)
		r.Delete("/talent-pools/{id}", a.DeleteTalentPool)
		r.Get("/talent-pools/{id}/subscribers", a.PoolMembers)
		r.Delete("/talent-pools/{id}/subscribers/{subscriberID}", a.RemoveFromPool)
		r.Get("/talent-pools/{id}/stats", a.PoolStats)
		r.Get("/talent-pools/{id}/export.csv", a.ExportPoolCandidates)

		r.Get("/stats", a.DashboardStats)
		r.Get("/exports/subscribers.csv", a.ExportSubscribers)
		r.Get("/exports/talent-pools.csv", a.ExportTalentPools)

		r.Post("/admin/demo/seed", a.SeedDemo)
	})

	return r
}

// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
