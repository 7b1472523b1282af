package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/directory"
	"talent-pipeline/internal/model"
)

type poolAssignment struct {
	PoolIDs []string `json:"poolIds"`
}

type bulkAssignResponse struct {
	Updated []model.Subscriber `json:"updated"`
}

// @Summary List subscribers visible to the tenant
// @Tags Subscribers
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} model.Subscriber
// @Router /subscribers [get]
func (a *API) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := a.Directory.ListSubscribers(r.Context(), auth.GetTenantID(r))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

// @Summary Edit a subscriber
// @Tags Subscribers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Subscriber ID"
// @Param body body model.SubscriberPatch true "Patch"
// @Success 200 {object} model.Subscriber
// @Failure 404 {object} errorResponse
// @Router /subscribers/{id} [patch]
func (a *API) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	var patch model.SubscriberPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	sub, err := a.Directory.UpdateSubscriber(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// @Summary Delete a subscriber
// @Tags Subscribers
// @Security ApiKeyAuth
// @Param id path string true "Subscriber ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /subscribers/{id} [delete]
func (a *API) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := a.Directory.DeleteSubscriber(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id")); err != nil {
		a.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Replace a subscriber's talent pools
// @Tags Subscribers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Subscriber ID"
// @Param body body poolAssignment true "Pool ids"
// @Success 200 {object} model.Subscriber
// @Router /subscribers/{id}/pools [put]
func (a *API) AssignPools(w http.ResponseWriter, r *http.Request) {
	var body poolAssignment
	if !decodeJSON(w, r, &body) {
		return
	}

	sub, err := a.Directory.AssignPools(r.Context(), auth.GetTenantID(r), chi.URLParam(r, "id"), body.PoolIDs)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// @Summary Assign many subscribers to talent pools
// @Description A replace that would drop existing memberships is refused
// @Description with 409 and a conflict list unless confirm is set.
// @Tags Subscribers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body directory.BulkAssignRequest true "Assignment"
// @Success 200 {object} bulkAssignResponse
// @Failure 409 {object} errorResponse
// @Router /subscribers/bulk-assign [post]
func (a *API) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req directory.BulkAssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := a.Directory.BulkAssign(r.Context(), auth.GetTenantID(r), req)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bulkAssignResponse{Updated: updated})
}
