// Package directory stores tenants, their subscribers and their talent pools
// on top of a storage.Store. Every record lives under its own key.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"talent-pipeline/internal/metrics"
	"talent-pipeline/internal/model"
	"talent-pipeline/internal/storage"
)

const (
	usersPrefix       = "users:"
	subscribersPrefix = "subscribers:"
	poolsPrefix       = "talent_pools:"
	seedFlagKey       = "demo_initialized"
)

func tenantKey(id string) string     { return usersPrefix + id }
func subscriberKey(id string) string { return subscribersPrefix + id }
func poolKey(id string) string       { return poolsPrefix + id }

// Publisher hands directory events to whoever delivers notifications.
type Publisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) error { return nil }

type Options struct {
	Defaults  TenantDefaults
	Demo      DemoAccount
	Publisher Publisher
	Logger    *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// PasswordCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	PasswordCost int
}

type Directory struct {
	store     storage.Store
	defaults  TenantDefaults
	demo      DemoAccount
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
	cost      int
	policy    *bluemonday.Policy

	// mu serializes read-modify-write sequences against the store.
	mu sync.Mutex
}

func New(store storage.Store, opts Options) *Directory {
	d := &Directory{
		store:     store,
		defaults:  opts.Defaults.withFallback(),
		demo:      opts.Demo,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Clock,
		cost:      opts.PasswordCost,
		policy:    bluemonday.StrictPolicy(),
	}
	if d.demo == (DemoAccount{}) {
		d.demo = DefaultDemoAccount()
	}
	if d.publisher == nil {
		d.publisher = NopPublisher{}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.cost == 0 {
		d.cost = bcrypt.DefaultCost
	}
	return d
}

// Today is the current calendar date by the directory's clock.
func (d *Directory) Today() model.Date {
	return model.DateOf(d.now())
}

// observe counts an operation outcome. Unexpected errors are also logged.
func (d *Directory) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrValidation):
		result = "invalid"
	case errors.Is(err, ErrDuplicateTenant):
		result = "duplicate"
	case errors.Is(err, ErrInvalidCredentials):
		result = "unauthorized"
	case errors.Is(err, ErrConflictDetected):
		result = "conflict"
	case errors.Is(err, ErrReadOnlyTenant):
		result = "read_only"
	default:
		result = "error"
		d.logger.Error("directory operation failed", zap.String("op", op), zap.Error(err))
	}
	metrics.DirectoryOps.WithLabelValues(op, result).Inc()
}

func (d *Directory) publish(ctx context.Context, typ model.EventType, s model.Subscriber) {
	ev := model.Event{
		ID:           uuid.NewString(),
		Type:         typ,
		TenantID:     s.CompanyID,
		SubscriberID: s.ID,
		Email:        s.Email,
		OccurredAt:   d.now().UTC(),
	}
	if err := d.publisher.Publish(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(string(typ), "error").Inc()
		d.logger.Warn("failed to publish event",
			zap.String("type", string(typ)),
			zap.String("tenant_id", s.CompanyID),
			zap.String("subscriber_id", s.ID),
			zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(string(typ), "ok").Inc()
}

// clean strips markup from free text and trims it.
func (d *Directory) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(d.policy.Sanitize(s)))
}

func (d *Directory) cleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := d.clean(*p)
	return &v
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// cleanList trims labels and drops blanks and duplicates. Never nil.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func cleanListPtr(p *[]string) *[]string {
	if p == nil {
		return nil
	}
	v := cleanList(*p)
	return &v
}

func visible(tenantID, owner string) bool {
	return owner == tenantID || owner == DemoTenantID
}

func getRecord[T any](ctx context.Context, s storage.Store, key string) (T, error) {
	var rec T
	raw, err := s.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, nil
}

func scanRecords[T any](ctx context.Context, s storage.Store, prefix string) ([]T, error) {
	entries, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	recs := make([]T, 0, len(entries))
	for _, e := range entries {
		var rec T
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func setOp(key string, v any) (storage.Op, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return storage.Op{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return storage.SetOp(key, raw), nil
}

func (d *Directory) put(ctx context.Context, key string, v any) error {
	op, err := setOp(key, v)
	if err != nil {
		return err
	}
	return d.store.Set(ctx, op.Key, op.Value)
}

func byCreation(aAt, bAt time.Time, aID, bID string) int {
	if c := aAt.Compare(bAt); c != 0 {
		return c
	}
	return strings.Compare(aID, bID)
}
