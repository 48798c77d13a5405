package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/instashare/instashare/internal/logging"
)

// AMQPQueue implements Queue over RabbitMQ. Queues are declared durable and
// messages are published persistent, so chained steps survive broker and
// worker restarts.
type AMQPQueue struct {
	conn   *amqp.Connection
	logger logging.Logger

	mu     sync.Mutex
	pubCh  *amqp.Channel
	queues map[string]bool
}

// DialAMQP connects to the broker at url.
func DialAMQP(url string, logger logging.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	return &AMQPQueue{
		conn:   conn,
		logger: logger.With("module", "amqp"),
		pubCh:  ch,
		queues: map[string]bool{},
	}, nil
}

// Close shuts the connection down.
func (q *AMQPQueue) Close() error {
	return q.conn.Close()
}

func (q *AMQPQueue) declare(ch *amqp.Channel, queueName string) error {
	q.mu.Lock()
	declared := q.queues[queueName]
	q.mu.Unlock()
	if declared {
		return nil
	}

	_, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	q.mu.Lock()
	q.queues[queueName] = true
	q.mu.Unlock()
	return nil
}

func (q *AMQPQueue) Publish(ctx context.Context, queueName string, v any) error {
	body, err := Encode(v)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.queues[queueName] {
		if _, err := q.pubCh.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queueName, err)
		}
		q.queues[queueName] = true
	}

	err = q.pubCh.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}
	return nil
}

// Consume opens a dedicated channel for the queue and feeds deliveries to h
// until ctx is cancelled. Each delivery is acked after the handler returns
// nil; a handler error rejects the delivery without requeueing, since
// handlers own their retry policy.
func (q *AMQPQueue) Consume(ctx context.Context, queueName string, h Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := q.declare(ch, queueName); err != nil {
		return err
	}

	// one unacked message at a time keeps per-file step ordering
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queueName, err)
	}

	q.logger.Info(ctx, "Consuming queue", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consume %s: channel closed", queueName)
			}

			if err := h(ctx, d.Body); err != nil {
				q.logger.Error(ctx, "Message handler failed", "queue", queueName, "error", err)
				if nackErr := d.Nack(false, false); nackErr != nil {
					q.logger.Error(ctx, "Nack failed", "queue", queueName, "error", nackErr)
				}
				continue
			}

			if err := d.Ack(false); err != nil {
				q.logger.Error(ctx, "Ack failed", "queue", queueName, "error", err)
			}
		}
	}
}
