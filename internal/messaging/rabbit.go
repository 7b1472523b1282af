// internal/messaging/rabbit.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"talent-pipeline/internal/metrics"
	"talent-pipeline/internal/model"
)

func QueueName(tenantID string) string { return fmt.Sprintf("tenant_%s_queue", tenantID) }
func DLQName(tenantID string) string   { return fmt.Sprintf("tenant_%s_dlq", tenantID) }

// RabbitClient owns one connection and one publishing channel. The channel
// is guarded by mu since amqp channels are not safe for concurrent use.
type RabbitClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	URL     string
	logger  *zap.Logger

	mu sync.Mutex
}

func NewRabbitClient(url string, logger *zap.Logger) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &RabbitClient{
		conn:    conn,
		channel: ch,
		URL:     url,
		logger:  logger,
	}, nil
}

func (r *RabbitClient) GetConnection() *amqp.Connection {
	return r.conn
}

// DeclareQueue creates a tenant's durable queue and the dead-letter queue
// its rejected messages are routed to.
func (r *RabbitClient) DeclareQueue(tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dlq := DLQName(tenantID)
	if _, err := r.channel.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlq,
	}
	if _, err := r.channel.QueueDeclare(QueueName(tenantID), true, false, false, false, args); err != nil {
		return fmt.Errorf("declare main queue: %w", err)
	}

	r.logger.Info("queues declared", zap.String("tenant_id", tenantID))
	return nil
}

// DeleteQueue removes the tenant's main queue. The DLQ is kept for inspection.
func (r *RabbitClient) DeleteQueue(tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.channel.QueueDelete(QueueName(tenantID), false, false, false); err != nil {
		return fmt.Errorf("delete queue %s: %w", QueueName(tenantID), err)
	}
	return nil
}

// Encode turns a directory event into a persistent AMQP message.
func Encode(ev model.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}

// Decode is the inverse of Encode.
func Decode(body []byte) (model.Event, error) {
	var ev model.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" || ev.TenantID == "" {
		return ev, fmt.Errorf("decode event: missing type or tenant")
	}
	return ev, nil
}

// Publish sends the event to its tenant's queue.
func (r *RabbitClient) Publish(ctx context.Context, ev model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Encode(ev)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	queue := QueueName(ev.TenantID)
	if err := r.channel.Publish("", queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}
	return nil
}

func (r *RabbitClient) UpdateQueueDepth(tenantID string) {
	r.mu.Lock()
	q, err := r.channel.QueueInspect(QueueName(tenantID))
	r.mu.Unlock()
	if err != nil {
		r.logger.Warn("failed to inspect queue", zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}

	metrics.QueueDepth.WithLabelValues(tenantID).Set(float64(q.Messages))
}

// Close cleans up connection and channel
func (r *RabbitClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
