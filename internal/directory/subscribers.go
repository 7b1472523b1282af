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
)

// ListSubscribers returns the tenant's subscribers together with the demo
// tenant's, in creation order.
func (d *Directory) ListSubscribers(ctx context.Context, tenantID string) (_ []model.Subscriber, err error) {
	defer func() { d.observe("list_subscribers", err) }()
	return d.listSubscribers(ctx, tenantID)
}

func (d *Directory) listSubscribers(ctx context.Context, tenantID string) ([]model.Subscriber, error) {
	all, err := scanRecords[model.Subscriber](ctx, d.store, subscribersPrefix)
	if err != nil {
		return nil, err
	}
	subs := make([]model.Subscriber, 0, len(all))
	for _, s := range all {
		if visible(tenantID, s.CompanyID) {
			subs = append(subs, s)
		}
	}
	slices.SortStableFunc(subs, func(a, b model.Subscriber) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return subs, nil
}

// CreateSubscriber stores a new candidate record dated today. Duplicate
// emails are accepted as separate records. Every pool id must name a pool
// the company can see, else ErrNotFound.
func (d *Directory) CreateSubscriber(ctx context.Context, in model.SubscriberInput) (_ model.Subscriber, err error) {
	defer func() { d.observe("create_subscriber", err) }()

	email := strings.TrimSpace(in.Email)
	companyID := strings.TrimSpace(in.CompanyID)
	switch {
	case email == "":
		return model.Subscriber{}, invalid("email", "is required")
	case companyID == "":
		return model.Subscriber{}, invalid("companyId", "is required")
	}
	if _, err := d.tenant(ctx, companyID); err != nil {
		return model.Subscriber{}, err
	}

	now := d.now()
	s := model.Subscriber{
		ID:                uuid.NewString(),
		Email:             email,
		Departments:       cleanList(in.Departments),
		LinkedInURL:       strings.TrimSpace(in.LinkedInURL),
		CompanyID:         companyID,
		SignupDate:        model.DateOf(now),
		Motivation:        d.clean(in.Motivation),
		CurrentLocation:   d.clean(in.CurrentLocation),
		PreferredLocation: d.clean(in.PreferredLocation),
		JobTitle:          d.clean(in.JobTitle),
		TalentPoolIDs:     membership.Normalize(in.TalentPoolIDs),
		CreatedAt:         now.UTC(),
	}

	// Pool checks and the write share the lock with DeleteTalentPool.
	d.mu.Lock()
	err = d.insertSubscriber(ctx, s)
	d.mu.Unlock()
	if err != nil {
		return model.Subscriber{}, err
	}

	d.logger.Info("subscriber created",
		zap.String("tenant_id", s.CompanyID),
		zap.String("subscriber_id", s.ID))
	d.publish(ctx, model.EventSubscriberCreated, s)
	return s, nil
}

func (d *Directory) insertSubscriber(ctx context.Context, s model.Subscriber) error {
	for _, id := range s.TalentPoolIDs {
		if _, err := d.visiblePool(ctx, s.CompanyID, id); err != nil {
			return err
		}
	}
	return d.put(ctx, subscriberKey(s.ID), s)
}

// UpdateSubscriber merges a recruiter's edit into a subscriber the tenant can see.
func (d *Directory) UpdateSubscriber(ctx context.Context, tenantID, id string, patch model.SubscriberPatch) (_ model.Subscriber, err error) {
	defer func() { d.observe("update_subscriber", err) }()

	patch.Email = trimPtr(patch.Email)
	patch.Departments = cleanListPtr(patch.Departments)
	patch.LinkedInURL = trimPtr(patch.LinkedInURL)
	patch.Motivation = d.cleanPtr(patch.Motivation)
	patch.CurrentLocation = d.cleanPtr(patch.CurrentLocation)
	patch.PreferredLocation = d.cleanPtr(patch.PreferredLocation)
	patch.JobTitle = d.cleanPtr(patch.JobTitle)
	if patch.TalentPoolIDs != nil {
		ids := membership.Normalize(*patch.TalentPoolIDs)
		patch.TalentPoolIDs = &ids
	}
	if patch.Email != nil && *patch.Email == "" {
		return model.Subscriber{}, invalid("email", "is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.visibleSubscriber(ctx, tenantID, id)
	if err != nil {
		return model.Subscriber{}, err
	}
	s.Apply(patch)
	if err := d.put(ctx, subscriberKey(s.ID), s); err != nil {
		return model.Subscriber{}, err
	}
	return s, nil
}

// DeleteSubscriber removes the record for good.
func (d *Directory) DeleteSubscriber(ctx context.Context, tenantID, id string) (err error) {
	defer func() { d.observe("delete_subscriber", err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.visibleSubscriber(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := d.store.Delete(ctx, subscriberKey(s.ID)); err != nil {
		return err
	}

	d.logger.Info("subscriber deleted",
		zap.String("tenant_id", tenantID),
		zap.String("subscriber_id", id))
	return nil
}

// EnrichSubscriber applies the candidate's optional profile step.
func (d *Directory) EnrichSubscriber(ctx context.Context, id string, p model.Profile) (_ model.Subscriber, err error) {
	defer func() { d.observe("enrich_subscriber", err) }()

	p.LinkedInURL = trimPtr(p.LinkedInURL)
	p.Motivation = d.cleanPtr(p.Motivation)
	p.CurrentLocation = d.cleanPtr(p.CurrentLocation)
	p.PreferredLocation = d.cleanPtr(p.PreferredLocation)
	p.JobTitle = d.cleanPtr(p.JobTitle)

	d.mu.Lock()
	s, err := d.loadSubscriber(ctx, id)
	if err == nil {
		s.Enrich(p)
		err = d.put(ctx, subscriberKey(s.ID), s)
	}
	d.mu.Unlock()
	if err != nil {
		return model.Subscriber{}, err
	}

	d.publish(ctx, model.EventSubscriberEnriched, s)
	return s, nil
}

func (d *Directory) loadSubscriber(ctx context.Context, id string) (model.Subscriber, error) {
	s, err := getRecord[model.Subscriber](ctx, d.store, subscriberKey(id))
	if errors.Is(err, ErrNotFound) {
		return s, notFound("subscriber", id)
	}
	return s, err
}

func (d *Directory) visibleSubscriber(ctx context.Context, tenantID, id string) (model.Subscriber, error) {
	s, err := d.loadSubscriber(ctx, id)
	if err != nil {
		return s, err
	}
	if !visible(tenantID, s.CompanyID) {
		return model.Subscriber{}, notFound("subscriber", id)
	}
	return s, nil
}
