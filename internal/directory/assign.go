package directory

import (
	"context"

	"go.uber.org/zap"

	"talent-pipeline/internal/membership"
	"talent-pipeline/internal/metrics"
	"talent-pipeline/internal/model"
	"talent-pipeline/internal/storage"
)

// AssignPools replaces a subscriber's membership set. Pool ids are not
// checked against the tenant; callers pass ids they got from ListTalentPools.
func (d *Directory) AssignPools(ctx context.Context, tenantID, subscriberID string, poolIDs []string) (_ model.Subscriber, err error) {
	defer func() { d.observe("assign_pools", err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.visibleSubscriber(ctx, tenantID, subscriberID)
	if err != nil {
		return model.Subscriber{}, err
	}
	s = membership.Assign(s, poolIDs)
	if err := d.put(ctx, subscriberKey(s.ID), s); err != nil {
		return model.Subscriber{}, err
	}
	return s, nil
}

// RemoveFromPool takes one subscriber out of one pool. Removing a
// non-member is a no-op.
func (d *Directory) RemoveFromPool(ctx context.Context, tenantID, poolID, subscriberID string) (_ model.Subscriber, err error) {
	defer func() { d.observe("remove_from_pool", err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.visiblePool(ctx, tenantID, poolID); err != nil {
		return model.Subscriber{}, err
	}
	s, err := d.visibleSubscriber(ctx, tenantID, subscriberID)
	if err != nil {
		return model.Subscriber{}, err
	}
	s, removed := membership.Remove(s, poolID)
	if !removed {
		return s, nil
	}
	if err := d.put(ctx, subscriberKey(s.ID), s); err != nil {
		return model.Subscriber{}, err
	}
	return s, nil
}

type BulkAssignRequest struct {
	SubscriberIDs []string        `json:"subscriberIds"`
	PoolIDs       []string        `json:"poolIds"`
	Mode          membership.Mode `json:"mode"`
	// Confirm applies a replace even when it drops existing memberships.
	Confirm bool `json:"confirm"`
}

// BulkAssign applies one membership change to many subscribers at once. A
// replace that would drop memberships fails with a *ConflictError unless
// confirmed; nothing is written in that case.
func (d *Directory) BulkAssign(ctx context.Context, tenantID string, req BulkAssignRequest) (_ []model.Subscriber, err error) {
	defer func() { d.observe("bulk_assign", err) }()

	subscriberIDs := membership.Normalize(req.SubscriberIDs)
	poolIDs := membership.Normalize(req.PoolIDs)
	switch {
	case len(subscriberIDs) == 0:
		return nil, invalid("subscriberIds", "must not be empty")
	case len(poolIDs) == 0:
		return nil, invalid("poolIds", "must not be empty")
	case !req.Mode.Valid():
		return nil, invalid("mode", "must be add or replace")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pools, err := d.listPools(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(pools))
	for _, p := range pools {
		titles[p.ID] = p.Title
	}
	for _, id := range poolIDs {
		if _, ok := titles[id]; !ok {
			return nil, notFound("talent pool", id)
		}
	}

	subs := make([]model.Subscriber, 0, len(subscriberIDs))
	for _, id := range subscriberIDs {
		s, err := d.visibleSubscriber(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}

	plan, err := membership.PlanBulk(subs, poolIDs, req.Mode, req.Confirm, titles)
	if err != nil {
		return nil, invalid("mode", err.Error())
	}
	if len(plan.Conflicts) > 0 {
		metrics.BulkAssignConflicts.Inc()
		return nil, &ConflictError{Conflicts: plan.Conflicts}
	}

	ops := make([]storage.Op, 0, len(plan.Updated))
	for _, s := range plan.Updated {
		op, err := setOp(subscriberKey(s.ID), s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := d.store.Apply(ctx, ops); err != nil {
		return nil, err
	}

	d.logger.Info("bulk assignment applied",
		zap.String("tenant_id", tenantID),
		zap.String("mode", string(req.Mode)),
		zap.Int("subscribers", len(plan.Updated)))
	return plan.Updated, nil
}
