package queue

import (
	"context"
	"sync"
)

// MemQueue is a channel-backed Queue used in tests and single-process runs.
type MemQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte

	// PublishErr, when set, is returned by every Publish.
	PublishErr error
}

const memQueueDepth = 64

func NewMemQueue() *MemQueue {
	return &MemQueue{queues: map[string]chan []byte{}}
}

func (m *MemQueue) queue(queueName string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.queues[queueName]
	if !ok {
		ch = make(chan []byte, memQueueDepth)
		m.queues[queueName] = ch
	}
	return ch
}

func (m *MemQueue) Publish(ctx context.Context, queueName string, v any) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}

	body, err := Encode(v)
	if err != nil {
		return err
	}

	select {
	case m.queue(queueName) <- body:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MemQueue) Consume(ctx context.Context, queueName string, h Handler) error {
	ch := m.queue(queueName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-ch:
			// errors are the handler's own concern here; the message is
			// dropped either way, matching the AMQP no-requeue policy
			_ = h(ctx, body)
		}
	}
}

// Len reports how many messages wait on the named queue.
func (m *MemQueue) Len(queueName string) int {
	return len(m.queue(queueName))
}

// Next pops the next message from the named queue without blocking.
// The second return is false when the queue is empty.
func (m *MemQueue) Next(queueName string) ([]byte, bool) {
	select {
	case body := <-m.queue(queueName):
		return body, true
	default:
		return nil, false
	}
}
