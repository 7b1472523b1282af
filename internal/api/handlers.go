package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/model"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Tenant model.Tenant `json:"tenant"`
	Token  string       `json:"token"`
}

// @Summary Register a company account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.Registration true "Registration"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /auth/register [post]
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}

	tenant, err := a.Directory.CreateTenant(r.Context(), reg)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	if a.Provisioner != nil {
		if err := a.Provisioner.AddTenant(tenant.ID); err != nil {
			a.Logger.Warn("failed to provision tenant queue", zap.String("tenant_id", tenant.ID), zap.Error(err))
		}
	}

	a.respondSession(w, r, http.StatusCreated, tenant)
}

// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} errorResponse
// @Router /auth/login [post]
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	tenant, err := a.Directory.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondSession(w, r, http.StatusOK, tenant)
}

func (a *API) respondSession(w http.ResponseWriter, r *http.Request, status int, tenant model.Tenant) {
	token, err := auth.GenerateToken(tenant.ID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, status, sessionResponse{Tenant: tenant, Token: token})
}

// @Summary Public branding of a company's subscription page
// @Tags Public
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} model.Branding
// @Failure 404 {object} errorResponse
// @Router /companies/{companyID} [get]
func (a *API) GetBranding(w http.ResponseWriter, r *http.Request) {
	tenant, err := a.Directory.GetTenant(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tenant.Branding())
}

// @Summary Subscribe to a company's talent pipeline
// @Tags Public
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param body body model.SubscriberInput true "Subscriber"
// @Success 201 {object} model.Subscriber
// @Failure 400 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Router /companies/{companyID}/subscribers [post]
func (a *API) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in model.SubscriberInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.CompanyID = chi.URLParam(r, "companyID")
	// Candidates never pick pools; recruiters assign them.
	in.TalentPoolIDs = nil

	if !hasNonBlank(in.Departments) {
		respondMessage(w, http.StatusBadRequest, "departments must contain at least one department")
		return
	}

	sub, err := a.Directory.CreateSubscriber(r.Context(), in)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

// @Summary Complete the optional profile step
// @Tags Public
// @Accept json
// @Produce json
// @Param id path string true "Subscriber ID"
// @Param body body model.Profile true "Profile"
// @Success 200 {object} model.Subscriber
// @Failure 404 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Router /subscribers/{id}/profile [put]
func (a *API) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if !decodeJSON(w, r, &p) {
		return
	}

	sub, err := a.Directory.EnrichSubscriber(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// @Summary Current tenant
// @Tags Tenant
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} model.Tenant
// @Router /me [get]
func (a *API) GetMe(w http.ResponseWriter, r *http.Request) {
	tenant, err := a.Directory.GetTenant(r.Context(), auth.GetTenantID(r))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

// @Summary Update tenant settings
// @Tags Tenant
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body model.TenantPatch true "Patch"
// @Success 200 {object} model.Tenant
// @Failure 403 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /me [patch]
func (a *API) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch model.TenantPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	tenant, err := a.Directory.UpdateTenant(r.Context(), auth.GetTenantID(r), patch)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

// @Summary Seed the demo tenant's sample data
// @Tags Admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /admin/demo/seed [post]
func (a *API) SeedDemo(w http.ResponseWriter, r *http.Request) {
	seeded, err := a.Directory.SeedDemo(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"seeded": seeded})
}

func hasNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
