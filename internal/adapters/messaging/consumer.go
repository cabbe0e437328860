package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

const (
	consumerPrefetch   = 20
	initialBackoff     = time.Second
	maxBackoff         = 30 * time.Second
	redeliveryInterval = 2 * time.Second
)

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, evt domain.Event) error

// Consumer reads events from a durable queue and hands them to a handler.
// It reconnects with exponential backoff until its context is cancelled.
type Consumer struct {
	url       string
	queueName string
	handler   EventHandler
	logger    *zap.Logger
	dial      func(url string) (*amqp.Connection, error)
	connected atomic.Bool
}

func NewConsumer(amqpURL, queueName string, handler EventHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		url:       amqpURL,
		queueName: queueName,
		handler:   handler,
		logger:    logger,
		dial:      amqp.Dial,
	}
}

// Connected reports whether a consume loop is currently attached.
func (c *Consumer) Connected() bool { return c.connected.Load() }

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := c.dial(c.url)
		if err != nil {
			c.logger.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialBackoff

		err = c.consume(ctx, conn)
		c.connected.Store(false)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, redeliveryInterval) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.logger.Warn("set QoS failed", zap.Error(err))
	}
	if err := declareQueue(ch, c.queueName); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.connected.Store(true)
	c.logger.Info("consuming", zap.String("queue", c.queueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

// deliver acks on success. Poison messages are dropped, anything else is
// requeued once; a redelivered message that fails again is dropped.
func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	requeue, err := c.Process(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}
	requeue = requeue && !d.Redelivered
	c.logger.Error("event handling failed",
		zap.String("message_id", d.MessageId),
		zap.String("type", d.Type),
		zap.Bool("requeue", requeue),
		zap.Error(err))
	_ = d.Nack(false, requeue)
}

// Process decodes body and runs the handler. The bool reports whether a
// failure is worth retrying.
func (c *Consumer) Process(ctx context.Context, body []byte) (bool, error) {
	var evt domain.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return false, fmt.Errorf("unmarshal: %w", err)
	}
	if err := c.handler(ctx, evt); err != nil {
		return domain.KindOf(err) != domain.KindValidation, err
	}
	return true, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
