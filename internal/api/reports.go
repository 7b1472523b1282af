package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/export"
	"talent-pipeline/internal/stats"
)

// @Summary Dashboard statistics
// @Tags Reports
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} stats.DashboardStats
// @Router /stats [get]
func (a *API) DashboardStats(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r)
	subs, err := a.Directory.ListSubscribers(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	pools, err := a.Directory.ListTalentPools(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats.Dashboard(subs, pools, a.Directory.Today()))
}

// @Summary Talent pool statistics
// @Tags Reports
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} stats.PoolStats
// @Router /talent-pools/{id}/stats [get]
func (a *API) PoolStats(w http.ResponseWriter, r *http.Request) {
	members, err := a.Directory.PoolMembers(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats.Pool(members, a.Directory.Today()))
}

// @Summary Export subscribers as CSV
// @Tags Reports
// @Security ApiKeyAuth
// @Produce text/csv
// @Success 200 {string} string
// @Router /exports/subscribers.csv [get]
func (a *API) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r)
	tenant, err := a.Directory.GetTenant(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	subs, err := a.Directory.ListSubscribers(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondCSV(w, export.Filename(tenant.CompanyName, "subscribers"), export.Subscribers(subs))
}

// @Summary Export the talent pool summary as CSV
// @Tags Reports
// @Security ApiKeyAuth
// @Produce text/csv
// @Success 200 {string} string
// @Router /exports/talent-pools.csv [get]
func (a *API) ExportTalentPools(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r)
	tenant, err := a.Directory.GetTenant(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	pools, err := a.Directory.ListTalentPools(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	subs, err := a.Directory.ListSubscribers(r.Context(), tenantID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondCSV(w, export.Filename(tenant.CompanyName, "talent_pools"), export.PoolSummary(pools, subs))
}

// @Summary Export a talent pool's candidates as CSV
// @Tags Reports
// @Security ApiKeyAuth
// @Produce text/csv
// @Param id path string true "Pool ID"
// @Success 200 {string} string
// @Router /talent-pools/{id}/export.csv [get]
func (a *API) ExportPoolCandidates(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r)
	poolID := chi.URLParam(r, "id")
	pool, err := a.Directory.GetTalentPool(r.Context(), tenantID, poolID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	members, err := a.Directory.PoolMembers(r.Context(), tenantID, poolID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondCSV(w, export.Filename(pool.Title, "candidates"), export.PoolCandidates(members))
}
