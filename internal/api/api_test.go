package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/config"
	"talent-pipeline/internal/directory"
	"talent-pipeline/internal/membership"
	"talent-pipeline/internal/model"
	"talent-pipeline/internal/stats"
	"talent-pipeline/internal/storage"
)

type recordingProvisioner struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingProvisioner) AddTenant(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return nil
}

type testServer struct {
	handler http.Handler
	prov    *recordingProvisioner
}

func newTestServer(t *testing.T, rps float64, burst int, opts ...func(*config.Config)) *testServer {
	t.Helper()
	auth.SetSecret("api-test-secret-0123456789")
	t.Cleanup(func() { auth.SetSecret("") })

	var mu sync.Mutex
	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	dir := directory.New(storage.NewMemory(), directory.Options{
		Logger:       zap.NewNop(),
		Clock:        clock,
		PasswordCost: bcrypt.MinCost,
	})
	cfg := config.Default()
	cfg.RateLimit.RPS = rps
	cfg.RateLimit.Burst = burst
	for _, opt := range opts {
		opt(cfg)
	}

	prov := &recordingProvisioner{}
	a := NewAPI(dir, prov, cfg, zap.NewNop())
	return &testServer{handler: a.Router(), prov: prov}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithHeaders(t, method, path, token, body, nil)
}

func (s *testServer) doWithHeaders(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) register(t *testing.T, email, company string) sessionResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "", model.Registration{
		Email: email, Password: "s3cret-pass", CompanyName: company,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sessionResponse](t, rec)
}

func (s *testServer) demoSession(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", credentials{Email: "demo@company.com", Password: "demo123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[sessionResponse](t, rec).Token

	rec = s.do(t, http.MethodPost, "/admin/demo/seed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 100, 100)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, 100, 100)

	session := s.register(t, "hr@acme.io", "Acme")
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, []string{session.Tenant.ID}, s.prov.ids)

	rec := s.do(t, http.MethodPost, "/auth/login", "", credentials{Email: "hr@acme.io", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[sessionResponse](t, rec)
	assert.Equal(t, session.Tenant.ID, login.Tenant.ID)

	rec = s.do(t, http.MethodGet, "/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decode[model.Tenant](t, rec).CompanyName)

	rec = s.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t, 100, 100)
	s.register(t, "hr@acme.io", "Acme")

	rec := s.do(t, http.MethodPost, "/auth/register", "", model.Registration{Email: "hr@acme.io", Password: "x", CompanyName: "Dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", model.Registration{Email: "new@acme.io", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", "", credentials{Email: "hr@acme.io", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMe(t *testing.T) {
	s := newTestServer(t, 100, 100)
	session := s.register(t, "hr@acme.io", "Acme")

	rec := s.do(t, http.MethodPatch, "/me", session.Token, map[string]string{"brandColor": "#111111"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#111111", decode[model.Tenant](t, rec).BrandColor)

	demo := s.demoSession(t)
	rec = s.do(t, http.MethodPatch, "/me", demo, map[string]string{"brandColor": "#111111"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicSignupFlow(t *testing.T) {
	s := newTestServer(t, 100, 100)
	session := s.register(t, "hr@acme.io", "Acme")
	id := session.Tenant.ID

	rec := s.do(t, http.MethodGet, "/companies/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	branding := decode[model.Branding](t, rec)
	assert.Equal(t, "Acme", branding.CompanyName)
	assert.NotContains(t, rec.Body.String(), "hr@acme.io")

	rec = s.do(t, http.MethodPost, "/companies/"+id+"/subscribers", "", model.SubscriberInput{Email: "cand@example.com", Departments: []string{" "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/companies/"+id+"/subscribers", "", model.SubscriberInput{Email: "cand@example.com", Departments: []string{"Engineering"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	sub := decode[model.Subscriber](t, rec)
	assert.Equal(t, id, sub.CompanyID)

	rec = s.do(t, http.MethodPut, "/subscribers/"+sub.ID+"/profile", "", map[string]string{"jobTitle": "SRE"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SRE", decode[model.Subscriber](t, rec).JobTitle)

	rec = s.do(t, http.MethodGet, "/subscribers", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode[[]model.Subscriber](t, rec)
	require.Len(t, subs, 1)
	assert.Equal(t, "SRE", subs[0].JobTitle)

	rec = s.do(t, http.MethodPost, "/companies/nobody/subscribers", "", model.SubscriberInput{Email: "x@example.com", Departments: []string{"Eng"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignupRateLimited(t *testing.T) {
	s := newTestServer(t, 0.001, 2)
	body := model.SubscriberInput{Email: "cand@example.com", Departments: []string{"Engineering"}}

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/companies/"+directory.DemoTenantID+"/subscribers", "", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/companies/"+directory.DemoTenantID+"/subscribers", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Recruiter routes are not limited.
	session := s.register(t, "hr@acme.io", "Acme")
	rec = s.do(t, http.MethodGet, "/subscribers", session.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupLimitIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, 0.001, 1)
	body := model.SubscriberInput{Email: "cand@example.com", Departments: []string{"Engineering"}}
	path := "/companies/" + directory.DemoTenantID + "/subscribers"

	rec := s.doWithHeaders(t, http.MethodPost, path, "", body, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.doWithHeaders(t, http.MethodPost, path, "", body, map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSignupLimitUsesForwardedForBehindProxy(t *testing.T) {
	s := newTestServer(t, 0.001, 1, func(cfg *config.Config) { cfg.Server.TrustProxy = true })
	body := model.SubscriberInput{Email: "cand@example.com", Departments: []string{"Engineering"}}
	path := "/companies/" + directory.DemoTenantID + "/subscribers"

	rec := s.doWithHeaders(t, http.MethodPost, path, "", body, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.doWithHeaders(t, http.MethodPost, path, "", body, map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.doWithHeaders(t, http.MethodPost, path, "", body, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSignupIgnoresSuppliedPools(t *testing.T) {
	s := newTestServer(t, 100, 100)
	acme := s.register(t, "hr@acme.io", "Acme")
	globex := s.register(t, "hr@globex.io", "Globex")

	rec := s.do(t, http.MethodPost, "/talent-pools", globex.Token, model.TalentPoolInput{Title: "Secret", Departments: []string{"Eng"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	foreign := decode[model.TalentPool](t, rec)

	rec = s.do(t, http.MethodPost, "/companies/"+acme.Tenant.ID+"/subscribers", "", model.SubscriberInput{
		Email:         "cand@example.com",
		Departments:   []string{"Engineering"},
		TalentPoolIDs: []string{foreign.ID, "nonexistent"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sub := decode[model.Subscriber](t, rec)
	assert.Equal(t, acme.Tenant.ID, sub.CompanyID)
	assert.Empty(t, sub.TalentPoolIDs)

	rec = s.do(t, http.MethodGet, "/talent-pools/"+foreign.ID+"/subscribers", globex.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Subscriber](t, rec))
}

func TestTalentPoolLifecycle(t *testing.T) {
	s := newTestServer(t, 100, 100)
	session := s.register(t, "hr@acme.io", "Acme")
	token := session.Token

	rec := s.do(t, http.MethodPost, "/talent-pools", token, model.TalentPoolInput{Title: "Empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/talent-pools", token, model.TalentPoolInput{Title: "Platform", Departments: []string{"Engineering"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	pool := decode[model.TalentPool](t, rec)
	assert.Equal(t, session.Tenant.ID, pool.CompanyID)

	rec = s.do(t, http.MethodPost, "/companies/"+session.Tenant.ID+"/subscribers", "", model.SubscriberInput{Email: "c@example.com", Departments: []string{"Engineering"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	sub := decode[model.Subscriber](t, rec)

	rec = s.do(t, http.MethodPut, "/subscribers/"+sub.ID+"/pools", token, poolAssignment{PoolIDs: []string{pool.ID}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/talent-pools/"+pool.ID+"/subscribers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Subscriber](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/talent-pools/"+pool.ID+"/subscribers/"+sub.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[model.Subscriber](t, rec).TalentPoolIDs)

	rec = s.do(t, http.MethodPatch, "/talent-pools/"+pool.ID, token, map[string]string{"description": "Infra"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Infra", decode[model.TalentPool](t, rec).Description)

	rec = s.do(t, http.MethodDelete, "/talent-pools/"+pool.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/talent-pools/"+pool.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/subscribers/"+sub.ID, token, map[string]string{"jobTitle": "Lead"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/subscribers/"+sub.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBulkAssignConflict(t *testing.T) {
	s := newTestServer(t, 100, 100)
	demo := s.demoSession(t)

	// Subscriber 1 (sarah) is in pool 1; replacing with pool 3 would drop it.
	req := directory.BulkAssignRequest{SubscriberIDs: []string{"1", "2"}, PoolIDs: []string{"3"}, Mode: membership.ModeReplace}
	rec := s.do(t, http.MethodPost, "/subscribers/bulk-assign", demo, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Len(t, body.Conflicts, 1)
	assert.Equal(t, "sarah@example.com", body.Conflicts[0].Email)
	assert.Equal(t, []string{"Senior Engineers"}, body.Conflicts[0].ExistingPools)

	req.Confirm = true
	rec = s.do(t, http.MethodPost, "/subscribers/bulk-assign", demo, req)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[bulkAssignResponse](t, rec).Updated
	require.Len(t, updated, 2)
	for _, sub := range updated {
		assert.Equal(t, []string{"3"}, sub.TalentPoolIDs)
	}
}

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t, 100, 100)
	demo := s.demoSession(t)

	rec := s.do(t, http.MethodGet, "/stats", demo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[stats.DashboardStats](t, rec)
	assert.Equal(t, 5, dash.Total)
	assert.Equal(t, 5, dash.Recent)
	assert.Equal(t, 3, dash.WithLinkedIn)
	assert.Equal(t, stats.Bucket{Name: "Engineering", Count: 3}, dash.TopDepartment)
	assert.Equal(t, 3, dash.PoolCount)

	rec = s.do(t, http.MethodGet, "/talent-pools/1/stats", demo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ps := decode[stats.PoolStats](t, rec)
	assert.Equal(t, 2, ps.Total)
	assert.Equal(t, 2, ps.WithMotivation)
	assert.Equal(t, stats.Bucket{Name: "San Francisco, CA", Count: 1}, ps.TopLocation)
}

func TestExports(t *testing.T) {
	s := newTestServer(t, 100, 100)
	demo := s.demoSession(t)

	rec := s.do(t, http.MethodGet, "/exports/subscribers.csv", demo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Tech_Innovations_Inc._subscribers.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Email,Departments,LinkedIn URL,Signup Date", lines[0])
	assert.Equal(t, "sarah@example.com,Engineering; Product,https://linkedin.com/in/sarah-dev,2024-01-15", lines[1])

	rec = s.do(t, http.MethodGet, "/exports/talent-pools.csv", demo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Senior Engineers,2,Engineering,2024-01-10")

	rec = s.do(t, http.MethodGet, "/talent-pools/1/export.csv", demo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Senior_Engineers_candidates.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Len(t, strings.Split(rec.Body.String(), "\n"), 3)

	rec = s.do(t, http.MethodGet, "/talent-pools/missing/export.csv", demo, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantIsolation(t *testing.T) {
	s := newTestServer(t, 100, 100)
	acme := s.register(t, "hr@acme.io", "Acme")
	globex := s.register(t, "hr@globex.io", "Globex")

	rec := s.do(t, http.MethodPost, "/talent-pools", acme.Token, model.TalentPoolInput{Title: "Secret", Departments: []string{"Eng"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	pool := decode[model.TalentPool](t, rec)

	rec = s.do(t, http.MethodGet, "/talent-pools/"+pool.ID, globex.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/talent-pools", globex.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.TalentPool](t, rec))
}
