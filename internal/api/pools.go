package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/model"
)

// @Summary List talent pools visible to the tenant
// @Tags Talent pools
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} model.TalentPool
// @Router /talent-pools [get]
func (a *API) ListTalentPools(w http.ResponseWriter, r *http.Request) {
	pools, err := a.Directory.ListTalentPools(r.Context(), auth.GetTenantID(r))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pools)
}

// @Summary Create a talent pool
// @Tags Talent pools
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body model.TalentPoolInput true "Pool"
// @Success 201 {object} model.TalentPool
// @Failure 400 {object} errorResponse
// @Router /talent-pools [post]
func (a *API) CreateTalentPool(w http.ResponseWriter, r *http.Request) {
	var in model.TalentPoolInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.CompanyID = auth.GetTenantID(r)

	pool, err := a.Directory.CreateTalentPool(r.Context(), in)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, pool)
}

// @Summary Get a talent pool
// @Tags Talent pools
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} model.TalentPool
// @Failure 404 {object} errorResponse
// @Router /talent-pools/{id} [get]
func (a *API) GetTalentPool(w http.ResponseWriter, r *http.Request) {
	pool, err := a.Directory.GetTalentPool(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pool)
}

// @Summary Edit a talent pool
// @Tags Talent pools
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Pool ID"
// @Param body body model.TalentPoolPatch true "Patch"
// @Success 200 {object} model.TalentPool
// @Failure 400 {object} errorResponse
// @Router /talent-pools/{id} [patch]
func (a *API) UpdateTalentPool(w http.ResponseWriter, r *http.Request) {
	var patch model.TalentPoolPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	pool, err := a.Directory.UpdateTalentPool(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pool)
}

// @Summary Delete a talent pool and detach its members
// @Tags Talent pools
// @Security ApiKeyAuth
// @Param id path string true "Pool ID"
// @Success 204
// @Router /talent-pools/{id} [delete]
func (a *API) DeleteTalentPool(w http.ResponseWriter, r *http.Request) {
	if err := a.Directory.DeleteTalentPool(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id")); err != nil {
		a.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Members of a talent pool
// @Tags Talent pools
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {array} model.Subscriber
// @Router /talent-pools/{id}/subscribers [get]
func (a *API) PoolMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.Directory.PoolMembers(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// @Summary Remove a subscriber from a talent pool
// @Tags Talent pools
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Pool ID"
// @Param subscriberID path string true "Subscriber ID"
// @Success 200 {object} model.Subscriber
// @Router /talent-pools/{id}/subscribers/{subscriberID} [delete]
func (a *API) RemoveFromPool(w http.ResponseWriter, r *http.Request) {
	sub, err := a.Directory.RemoveFromPool(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"), chi.URLParam(r, "subscriberID"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}
