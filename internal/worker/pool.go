package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"talent-pipeline/internal/messaging"
	"talent-pipeline/internal/metrics"
	"talent-pipeline/internal/model"
)

// Notifier delivers one directory event to the outside world, e.g. by email.
type Notifier interface {
	Notify(ctx context.Context, ev model.Event) error
}

// LogNotifier only records the hand-off. It stands in for a mail service.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev model.Event) error {
	n.Logger.Info("notification handed off",
		zap.String("type", string(ev.Type)),
		zap.String("tenant_id", ev.TenantID),
		zap.String("subscriber_id", ev.SubscriberID))
	return nil
}

// Pool runs a fixed number of goroutines that process one tenant's
// deliveries. Each delivery is acked on success and rejected without
// requeue, which routes it to the tenant's DLQ, on failure.
type Pool struct {
	tenantID string
	size     int
	notifier Notifier
	logger   *zap.Logger

	jobs     chan amqp.Delivery
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(tenantID string, size int, notifier Notifier, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		tenantID: tenantID,
		size:     size,
		notifier: notifier,
		logger:   logger.With(zap.String("tenant_id", tenantID)),
		jobs:     make(chan amqp.Delivery),
	}
}

func (p *Pool) Start() {
	p.logger.Info("starting worker pool", zap.Int("workers", p.size))
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Submit blocks until a worker takes the delivery. It must not be called
// after Stop.
func (p *Pool) Submit(d amqp.Delivery) {
	p.jobs <- d
}

// Stop lets in-flight deliveries finish and waits for every worker to exit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *Pool) run() {
	defer p.wg.Done()
	active := metrics.WorkerActive.WithLabelValues(p.tenantID)
	active.Inc()
	defer active.Dec()

	for d := range p.jobs {
		p.process(d)
	}
}

func (p *Pool) process(d amqp.Delivery) {
	if err := p.handle(d); err != nil {
		p.logger.Warn("failed to process message", zap.Error(err))
		metrics.WorkerFailed.WithLabelValues(p.tenantID).Inc()
		_ = d.Reject(false)
		return
	}
	_ = d.Ack(false)
	metrics.WorkerProcessed.WithLabelValues(p.tenantID).Inc()
}

func (p *Pool) handle(d amqp.Delivery) error {
	ev, err := messaging.Decode(d.Body)
	if err != nil {
		return err
	}
	if ev.TenantID != p.tenantID {
		return fmt.Errorf("event for tenant %s on queue of %s", ev.TenantID, p.tenantID)
	}
	return p.notifier.Notify(context.Background(), ev)
}
