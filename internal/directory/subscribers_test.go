package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-pipeline/internal/model"
)

func TestCreateSubscriberThenList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenant := f.register(t, "hr@acme.io", "Acme")

	s := f.subscribe(t, tenant.ID, "cand@example.com")
	assert.Equal(t, model.Date("2024-01-15"), s.SignupDate)
	assert.Equal(t, []string{}, s.TalentPoolIDs)

	subs, err := f.dir.ListSubscribers(ctx, tenant.ID)
	require.NoError(t, err)

	count := 0
	for _, got := range subs {
		if got.ID == s.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCreateSubscriberAcceptsDuplicateEmails(t *testing.T) {
	f := newFixture(t)
	tenant := f.register(t, "hr@acme.io", "Acme")

	a := f.subscribe(t, tenant.ID, "cand@example.com")
	b := f.subscribe(t, tenant.ID, "cand@example.com")
	assert.NotEqual(t, a.ID, b.ID)

	subs, err := f.dir.ListSubscribers(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, a.ID, subs[0].ID)
	assert.Equal(t, b.ID, subs[1].ID)
}

func TestCreateSubscriberValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenant := f.register(t, "hr@acme.io", "Acme")
	before := f.snapshot(t)

	_, err := f.dir.CreateSubscriber(ctx, model.SubscriberInput{CompanyID: tenant.ID})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.dir.CreateSubscriber(ctx, model.SubscriberInput{Email: "a@b.c"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.dir.CreateSubscriber(ctx, model.SubscriberInput{Email: "a@b.c", CompanyID: "nobody"})
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, f.snapshot(t))
	assert.Empty(t, f.pub.Events())
}

func TestCreateSubscriberRequiresVisiblePools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.dir.SeedDemo(ctx)
	require.NoError(t, err)

	acme := f.register(t, "hr@acme.io", "Acme")
	globex := f.register(t, "hr@globex.io", "Globex")
	own := f.pool(t, acme.ID, "Backend")
	foreign := f.pool(t, globex.ID, "Secret")
	before := f.snapshot(t)

	for name, ids := range map[string][]string{
		"other tenant's pool": {own.ID, foreign.ID},
		"unknown pool":        {"nonexistent"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.dir.CreateSubscriber(ctx, model.SubscriberInput{
				Email:         "cand@example.com",
				CompanyID:     acme.ID,
				TalentPoolIDs: ids,
			})
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
	assert.Equal(t, before, f.snapshot(t))
	assert.Empty(t, f.pub.Events())

	s, err := f.dir.CreateSubscriber(ctx, model.SubscriberInput{
		Email:         "cand@example.com",
		CompanyID:     acme.ID,
		TalentPoolIDs: []string{own.ID, "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{own.ID, "1"}, s.TalentPoolIDs)
}

func TestCreateSubscriberPublishesEvent(t *testing.T) {
	f := newFixture(t)
	tenant := f.register(t, "hr@acme.io", "Acme")

	s := f.subscribe(t, tenant.ID, "cand@example.com")

	events := f.pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventSubscriberCreated, events[0].Type)
	assert.Equal(t, tenant.ID, events[0].TenantID)
	assert.Equal(t, s.ID, events[0].SubscriberID)
	assert.Equal(t, "cand@example.com", events[0].Email)
}

func TestCreateSubscriberSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	tenant := f.register(t, "hr@acme.io", "Acme")

	s := f.subscribe(t, tenant.ID, "cand@example.com")

	subs, err := f.dir.ListSubscribers(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, s.ID, subs[0].ID)
}

func TestListSubscribersIncludesDemoTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.dir.SeedDemo(ctx)
	require.NoError(t, err)

	acme := f.register(t, "hr@acme.io", "Acme")
	globex := f.register(t, "hr@globex.io", "Globex")
	own := f.subscribe(t, acme.ID, "mine@example.com")
	f.subscribe(t, globex.ID, "theirs@example.com")

	subs, err := f.dir.ListSubscribers(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, subs, 6)
	assert.Equal(t, "1", subs[0].ID)
	assert.Equal(t, own.ID, subs[5].ID)
	for _, s := range subs {
		assert.Contains(t, []string{acme.ID, DemoTenantID}, s.CompanyID)
	}

	demo, err := f.dir.ListSubscribers(ctx, DemoTenantID)
	require.NoError(t, err)
	assert.Len(t, demo, 5)
}

func TestUpdateSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.register(t, "hr@acme.io", "Acme")
	globex := f.register(t, "hr@globex.io", "Globex")
	s := f.subscribe(t, acme.ID, "cand@example.com")

	title := "Staff Engineer"
	depts := []string{"Platform", " "}
	updated, err := f.dir.UpdateSubscriber(ctx, acme.ID, s.ID, model.SubscriberPatch{JobTitle: &title, Departments: &depts})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", updated.JobTitle)
	assert.Equal(t, []string{"Platform"}, updated.Departments)
	assert.Equal(t, s.Email, updated.Email)
	assert.Equal(t, s.SignupDate, updated.SignupDate)

	_, err = f.dir.UpdateSubscriber(ctx, globex.ID, s.ID, model.SubscriberPatch{JobTitle: &title})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.dir.UpdateSubscriber(ctx, acme.ID, "missing", model.SubscriberPatch{})
	require.ErrorIs(t, err, ErrNotFound)

	empty := ""
	_, err = f.dir.UpdateSubscriber(ctx, acme.ID, s.ID, model.SubscriberPatch{Email: &empty})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.register(t, "hr@acme.io", "Acme")
	s := f.subscribe(t, acme.ID, "cand@example.com")

	require.NoError(t, f.dir.DeleteSubscriber(ctx, acme.ID, s.ID))

	subs, err := f.dir.ListSubscribers(ctx, acme.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	require.ErrorIs(t, f.dir.DeleteSubscriber(ctx, acme.ID, s.ID), ErrNotFound)
}

func TestEnrichSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.register(t, "hr@acme.io", "Acme")
	s := f.subscribe(t, acme.ID, "cand@example.com")

	motivation := "I love <em>distributed</em> systems"
	location := "Lisbon"
	enriched, err := f.dir.EnrichSubscriber(ctx, s.ID, model.Profile{Motivation: &motivation, CurrentLocation: &location})
	require.NoError(t, err)
	assert.Equal(t, "I love distributed systems", enriched.Motivation)
	assert.Equal(t, "Lisbon", enriched.CurrentLocation)
	assert.Equal(t, s.Departments, enriched.Departments)

	events := f.pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, model.EventSubscriberEnriched, events[1].Type)

	_, err = f.dir.EnrichSubscriber(ctx, "missing", model.Profile{})
	require.ErrorIs(t, err, ErrNotFound)
}
