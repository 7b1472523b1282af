package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"talent-pipeline/internal/model"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// tenantRecord is the persisted form of a tenant. The hash never leaves
// this package.
type tenantRecord struct {
	model.Tenant
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (d *Directory) demoTenant() model.Tenant {
	return newDemoTenant(d.demo)
}

func (d *Directory) isDemoEmail(email string) bool {
	return d.demo.Email != "" && strings.EqualFold(email, d.demo.Email)
}

// CreateTenant registers a company account, filling omitted optional fields
// from the configured defaults.
func (d *Directory) CreateTenant(ctx context.Context, reg model.Registration) (_ model.Tenant, err error) {
	defer func() { d.observe("create_tenant", err) }()

	email := strings.TrimSpace(reg.Email)
	company := d.clean(reg.CompanyName)
	switch {
	case email == "":
		return model.Tenant{}, invalid("email", "is required")
	case company == "":
		return model.Tenant{}, invalid("companyName", "is required")
	case reg.Password == "":
		return model.Tenant{}, invalid("password", "is required")
	case len(reg.Password) > maxPasswordBytes:
		return model.Tenant{}, invalid("password", "must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), d.cost)
	if err != nil {
		return model.Tenant{}, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureEmailFree(ctx, email, ""); err != nil {
		return model.Tenant{}, err
	}

	t := model.Tenant{
		ID:             uuid.NewString(),
		Email:          email,
		CompanyName:    company,
		LogoURL:        strings.TrimSpace(reg.LogoURL),
		BrandColor:     strings.TrimSpace(reg.BrandColor),
		Departments:    cleanList(reg.Departments),
		IntroText:      d.clean(reg.IntroText),
		CareersPageURL: strings.TrimSpace(reg.CareersPageURL),
		EmailSettings:  reg.EmailSettings,
		CreatedAt:      d.now().UTC(),
	}
	d.defaults.fill(&t)

	if err := d.put(ctx, tenantKey(t.ID), tenantRecord{Tenant: t, PasswordHash: string(hash)}); err != nil {
		return model.Tenant{}, err
	}

	d.logger.Info("tenant registered", zap.String("tenant_id", t.ID))
	return t, nil
}

// Authenticate checks a login. The demo pair never touches the store.
func (d *Directory) Authenticate(ctx context.Context, email, secret string) (_ model.Tenant, err error) {
	defer func() { d.observe("authenticate", err) }()

	email = strings.TrimSpace(email)
	if d.isDemoEmail(email) {
		if secret == d.demo.Secret {
			return d.demoTenant(), nil
		}
		return model.Tenant{}, ErrInvalidCredentials
	}

	rec, err := d.tenantByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return model.Tenant{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Tenant{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(secret)); err != nil {
		return model.Tenant{}, ErrInvalidCredentials
	}
	return rec.Tenant, nil
}

func (d *Directory) GetTenant(ctx context.Context, id string) (_ model.Tenant, err error) {
	defer func() { d.observe("get_tenant", err) }()
	return d.tenant(ctx, id)
}

func (d *Directory) tenant(ctx context.Context, id string) (model.Tenant, error) {
	if id == DemoTenantID {
		return d.demoTenant(), nil
	}
	rec, err := d.loadTenant(ctx, id)
	if err != nil {
		return model.Tenant{}, err
	}
	return rec.Tenant, nil
}

// UpdateTenant merges the non-nil patch fields into the tenant.
func (d *Directory) UpdateTenant(ctx context.Context, id string, patch model.TenantPatch) (_ model.Tenant, err error) {
	defer func() { d.observe("update_tenant", err) }()

	if id == DemoTenantID {
		return model.Tenant{}, ErrReadOnlyTenant
	}

	patch.Email = trimPtr(patch.Email)
	patch.CompanyName = d.cleanPtr(patch.CompanyName)
	patch.IntroText = d.cleanPtr(patch.IntroText)
	patch.Departments = cleanListPtr(patch.Departments)

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.loadTenant(ctx, id)
	if err != nil {
		return model.Tenant{}, err
	}

	if patch.Email != nil && !strings.EqualFold(*patch.Email, rec.Email) {
		if err := d.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return model.Tenant{}, err
		}
	}

	rec.Apply(patch)
	switch {
	case rec.Email == "":
		return model.Tenant{}, invalid("email", "is required")
	case rec.CompanyName == "":
		return model.Tenant{}, invalid("companyName", "is required")
	}

	if err := d.put(ctx, tenantKey(id), rec); err != nil {
		return model.Tenant{}, err
	}
	return rec.Tenant, nil
}

// ListTenants returns every persisted tenant in registration order. The demo
// tenant is not included.
func (d *Directory) ListTenants(ctx context.Context) (_ []model.Tenant, err error) {
	defer func() { d.observe("list_tenants", err) }()

	recs, err := scanRecords[tenantRecord](ctx, d.store, usersPrefix)
	if err != nil {
		return nil, err
	}
	tenants := make([]model.Tenant, 0, len(recs))
	for _, r := range recs {
		tenants = append(tenants, r.Tenant)
	}
	slices.SortStableFunc(tenants, func(a, b model.Tenant) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return tenants, nil
}

func (d *Directory) loadTenant(ctx context.Context, id string) (tenantRecord, error) {
	rec, err := getRecord[tenantRecord](ctx, d.store, tenantKey(id))
	if errors.Is(err, ErrNotFound) {
		return rec, notFound("tenant", id)
	}
	return rec, err
}

func (d *Directory) tenantByEmail(ctx context.Context, email string) (tenantRecord, error) {
	recs, err := scanRecords[tenantRecord](ctx, d.store, usersPrefix)
	if err != nil {
		return tenantRecord{}, err
	}
	for _, r := range recs {
		if strings.EqualFold(r.Email, email) {
			return r, nil
		}
	}
	return tenantRecord{}, ErrNotFound
}

// ensureEmailFree fails with ErrDuplicateTenant if a tenant other than
// selfID, or the demo login, already uses email.
func (d *Directory) ensureEmailFree(ctx context.Context, email, selfID string) error {
	if d.isDemoEmail(email) {
		return ErrDuplicateTenant
	}
	existing, err := d.tenantByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return ErrDuplicateTenant
	}
}
