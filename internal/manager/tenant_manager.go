// internal/manager/tenant_manager.go
package manager

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"talent-pipeline/internal/consumer"
	"talent-pipeline/internal/messaging"
	"talent-pipeline/internal/worker"
)

type tenantRuntime struct {
	consumer *consumer.Consumer
	pool     *worker.Pool
}

// TenantManager keeps one queue consumer and one worker pool running per
// tenant.
type TenantManager struct {
	rabbit   *messaging.RabbitClient
	notifier worker.Notifier
	workers  int
	logger   *zap.Logger

	mu      sync.RWMutex
	tenants map[string]*tenantRuntime
}

func NewTenantManager(rabbit *messaging.RabbitClient, notifier worker.Notifier, workers int, logger *zap.Logger) *TenantManager {
	return &TenantManager{
		rabbit:   rabbit,
		notifier: notifier,
		workers:  workers,
		logger:   logger,
		tenants:  make(map[string]*tenantRuntime),
	}
}

// AddTenant declares the tenant's queues and starts its consumer. Adding a
// running tenant is a no-op.
func (tm *TenantManager) AddTenant(tenantID string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, exists := tm.tenants[tenantID]; exists {
		return nil
	}

	if err := tm.rabbit.DeclareQueue(tenantID); err != nil {
		return err
	}

	pool := worker.NewPool(tenantID, tm.workers, tm.notifier, tm.logger)
	pool.Start()

	c, err := consumer.Start(tm.rabbit.GetConnection(), tenantID, tm.workers*2, pool.Submit, tm.logger)
	if err != nil {
		pool.Stop()
		return fmt.Errorf("start consumer: %w", err)
	}
	tm.tenants[tenantID] = &tenantRuntime{consumer: c, pool: pool}

	tm.logger.Info("tenant added and consumer started", zap.String("tenant_id", tenantID))
	return nil
}

// RemoveTenant stops the consumer and its workers and deletes the queue.
func (tm *TenantManager) RemoveTenant(tenantID string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	rt, exists := tm.tenants[tenantID]
	if !exists {
		return nil
	}
	rt.stop()
	delete(tm.tenants, tenantID)

	if err := tm.rabbit.DeleteQueue(tenantID); err != nil {
		tm.logger.Warn("failed to delete queue", zap.String("tenant_id", tenantID), zap.Error(err))
	}

	tm.logger.Info("tenant removed and consumer stopped", zap.String("tenant_id", tenantID))
	return nil
}

// ShutdownAll stops every consumer. Queues are left in place.
func (tm *TenantManager) ShutdownAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for id, rt := range tm.tenants {
		rt.stop()
		tm.logger.Info("stopped tenant", zap.String("tenant_id", id))
	}
	tm.tenants = make(map[string]*tenantRuntime)
}

// ListTenantIDs returns the running tenants in sorted order.
func (tm *TenantManager) ListTenantIDs() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	ids := make([]string, 0, len(tm.tenants))
	for id := range tm.tenants {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UpdateQueueDepths refreshes the queue depth gauge of every running tenant.
func (tm *TenantManager) UpdateQueueDepths() {
	for _, id := range tm.ListTenantIDs() {
		tm.rabbit.UpdateQueueDepth(id)
	}
}

// stop halts the consumer before the pool so nothing is submitted to a
// closed pool.
func (rt *tenantRuntime) stop() {
	rt.consumer.Stop()
	rt.pool.Stop()
}
