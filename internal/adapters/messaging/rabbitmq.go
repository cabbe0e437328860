package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

// RabbitMQBroker implements ports.EventPublisher on a single durable queue.
type RabbitMQBroker struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	cb        *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

func NewRabbitMQBroker(amqpURL, queueName string, logger *zap.Logger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareQueue(ch, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQBroker{
		conn:      conn,
		ch:        ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker("RabbitMQ-Publisher", logger),
		logger:    logger,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

// Publish sends evt as a persistent JSON message. The AMQP type and message
// id carry the event type and outbox id so consumers can dedupe.
func (rmq *RabbitMQBroker) Publish(ctx context.Context, evt domain.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		rmq.mu.Lock()
		defer rmq.mu.Unlock()
		if rmq.ch == nil || rmq.ch.IsClosed() {
			return nil, errors.New("rabbitmq channel is closed")
		}
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // default exchange
			rmq.queueName, // routing key == queue name
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.ID,
				Type:         string(evt.Type),
				Timestamp:    evt.CreatedAt,
				Body:         body,
			},
		)
	})
	if err != nil {
		return domain.Unavailable("event broker is unavailable", err)
	}
	return nil
}

// Healthy reports whether the connection is still open.
func (rmq *RabbitMQBroker) Healthy(ctx context.Context) error {
	rmq.mu.Lock()
	defer rmq.mu.Unlock()
	if rmq.conn == nil || rmq.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (rmq *RabbitMQBroker) Close() error {
	rmq.mu.Lock()
	defer rmq.mu.Unlock()
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
