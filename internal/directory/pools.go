package directory

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-pipeline/internal/membership"
	"talent-pipeline/internal/model"
	"talent-pipeline/internal/storage"
)

// ListTalentPools returns the tenant's pools together with the demo
// tenant's, in creation order.
func (d *Directory) ListTalentPools(ctx context.Context, tenantID string) (_ []model.TalentPool, err error) {
	defer func() { d.observe("list_talent_pools", err) }()
	return d.listPools(ctx, tenantID)
}

func (d *Directory) listPools(ctx context.Context, tenantID string) ([]model.TalentPool, error) {
	all, err := scanRecords[model.TalentPool](ctx, d.store, poolsPrefix)
	if err != nil {
		return nil, err
	}
	pools := make([]model.TalentPool, 0, len(all))
	for _, p := range all {
		if visible(tenantID, p.CompanyID) {
			pools = append(pools, p)
		}
	}
	slices.SortStableFunc(pools, func(a, b model.TalentPool) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return pools, nil
}

func (d *Directory) GetTalentPool(ctx context.Context, tenantID, id string) (_ model.TalentPool, err error) {
	defer func() { d.observe("get_talent_pool", err) }()
	return d.visiblePool(ctx, tenantID, id)
}

// CreateTalentPool requires a title and at least one department.
func (d *Directory) CreateTalentPool(ctx context.Context, in model.TalentPoolInput) (_ model.TalentPool, err error) {
	defer func() { d.observe("create_talent_pool", err) }()

	title := d.clean(in.Title)
	departments := cleanList(in.Departments)
	companyID := strings.TrimSpace(in.CompanyID)
	if err := validatePool(title, departments); err != nil {
		return model.TalentPool{}, err
	}
	if companyID == "" {
		return model.TalentPool{}, invalid("companyId", "is required")
	}
	if _, err := d.tenant(ctx, companyID); err != nil {
		return model.TalentPool{}, err
	}

	now := d.now()
	p := model.TalentPool{
		ID:          uuid.NewString(),
		Title:       title,
		Departments: departments,
		CompanyID:   companyID,
		CreatedDate: model.DateOf(now),
		Description: d.clean(in.Description),
		CreatedAt:   now.UTC(),
	}
	d.mu.Lock()
	err = d.put(ctx, poolKey(p.ID), p)
	d.mu.Unlock()
	if err != nil {
		return model.TalentPool{}, err
	}

	d.logger.Info("talent pool created",
		zap.String("tenant_id", p.CompanyID),
		zap.String("pool_id", p.ID))
	return p, nil
}

func (d *Directory) UpdateTalentPool(ctx context.Context, tenantID, id string, patch model.TalentPoolPatch) (_ model.TalentPool, err error) {
	defer func() { d.observe("update_talent_pool", err) }()

	patch.Title = d.cleanPtr(patch.Title)
	patch.Departments = cleanListPtr(patch.Departments)
	patch.Description = d.cleanPtr(patch.Description)

	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.visiblePool(ctx, tenantID, id)
	if err != nil {
		return model.TalentPool{}, err
	}
	p.Apply(patch)
	if err := validatePool(p.Title, p.Departments); err != nil {
		return model.TalentPool{}, err
	}
	if err := d.put(ctx, poolKey(p.ID), p); err != nil {
		return model.TalentPool{}, err
	}
	return p, nil
}

// DeleteTalentPool removes the pool and strips its id from every subscriber
// in a single batch, so no subscriber is left pointing at it.
func (d *Directory) DeleteTalentPool(ctx context.Context, tenantID, id string) (err error) {
	defer func() { d.observe("delete_talent_pool", err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.visiblePool(ctx, tenantID, id)
	if err != nil {
		return err
	}
	subs, err := scanRecords[model.Subscriber](ctx, d.store, subscribersPrefix)
	if err != nil {
		return err
	}

	changed := membership.Cascade(subs, p.ID)
	ops := []storage.Op{storage.DeleteOp(poolKey(p.ID))}
	for _, s := range changed {
		op, err := setOp(subscriberKey(s.ID), s)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	if err := d.store.Apply(ctx, ops); err != nil {
		return err
	}

	d.logger.Info("talent pool deleted",
		zap.String("tenant_id", tenantID),
		zap.String("pool_id", p.ID),
		zap.Int("detached_subscribers", len(changed)))
	return nil
}

// PoolMembers returns the visible subscribers that belong to the pool.
func (d *Directory) PoolMembers(ctx context.Context, tenantID, poolID string) (_ []model.Subscriber, err error) {
	defer func() { d.observe("pool_members", err) }()

	if _, err := d.visiblePool(ctx, tenantID, poolID); err != nil {
		return nil, err
	}
	subs, err := d.listSubscribers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	members := make([]model.Subscriber, 0, len(subs))
	for _, s := range subs {
		if s.InPool(poolID) {
			members = append(members, s)
		}
	}
	return members, nil
}

func validatePool(title string, departments []string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title", "is required")
	}
	if len(departments) == 0 {
		return invalid("departments", "must contain at least one department")
	}
	return nil
}

func (d *Directory) visiblePool(ctx context.Context, tenantID, id string) (model.TalentPool, error) {
	p, err := getRecord[model.TalentPool](ctx, d.store, poolKey(id))
	if errors.Is(err, ErrNotFound) {
		return p, notFound("talent pool", id)
	}
	if err != nil {
		return p, err
	}
	if !visible(tenantID, p.CompanyID) {
		return model.TalentPool{}, notFound("talent pool", id)
	}
	return p, nil
}
