// internal/consumer/consumer.go
package consumer

import (
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"talent-pipeline/internal/messaging"
)

type Handler func(delivery amqp.Delivery)

// Consumer holds control channels and metadata for a running tenant consumer
type Consumer struct {
	TenantID    string
	QueueName   string
	ConsumerTag string

	channel  *amqp.Channel
	handler  Handler
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Start opens a channel on conn and hands every delivery of the tenant's
// queue to handler until Stop is called. prefetch caps unacked deliveries.
func Start(conn *amqp.Connection, tenantID string, prefetch int, handler Handler, logger *zap.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("tenant %s: failed to open channel: %w", tenantID, err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("tenant %s: failed to set prefetch: %w", tenantID, err)
		}
	}

	c := newConsumer(tenantID, ch, handler, logger)
	msgs, err := ch.Consume(c.QueueName, c.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("tenant %s: failed to start consuming: %w", tenantID, err)
	}

	go c.consumeLoop(msgs)

	c.logger.Info("consumer started", zap.String("queue", c.QueueName))
	return c, nil
}

func newConsumer(tenantID string, ch *amqp.Channel, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{
		TenantID:    tenantID,
		QueueName:   messaging.QueueName(tenantID),
		ConsumerTag: "consumer-" + tenantID,
		channel:     ch,
		handler:     handler,
		logger:      logger.With(zap.String("tenant_id", tenantID)),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// consumeLoop processes messages until stopCh is closed
func (c *Consumer) consumeLoop(msgs <-chan amqp.Delivery) {
	defer close(c.doneCh)

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return
			}
			c.handler(msg)

		case <-c.stopCh:
			return
		}
	}
}

// Stop signals the consumer to stop, waits for the loop to exit and closes
// the channel. Deliveries not yet handed off are requeued by the broker.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.doneCh
		if c.channel != nil {
			_ = c.channel.Cancel(c.ConsumerTag, false)
			_ = c.channel.Close()
		}
		c.logger.Info("consumer stopped")
	})
}

// Done is closed once the consume loop has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.doneCh
}
