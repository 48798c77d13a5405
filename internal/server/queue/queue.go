// Package queue defines the durable work-queue boundary of the ingestion
// pipeline: the message schemas exchanged with workers and the external
// zipper service, and the publish/consume contracts implemented by AMQP in
// production and by an in-memory queue in tests.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/instashare/instashare/internal/server/models"
)

// StoreJob instructs a worker to move spooled bytes into object storage.
type StoreJob struct {
	FileID      string `json:"file_id"`
	ContentHash string `json:"file_md5"`
	FileName    string `json:"file_name"`
	LocalPath   string `json:"local_path"`
}

// ZipRequest asks the external zipper service to compress a stored file.
type ZipRequest struct {
	FileID      string `json:"file_id"`
	ContentHash string `json:"file_md5"`
	FileName    string `json:"file_name"`
}

// StatusUpdate is the zipper's verdict on a compression request.
// NewStatus is ZIPPED or FAILED; Size, when present, is the compressed size.
type StatusUpdate struct {
	FileID      string            `json:"file_id"`
	ContentHash string            `json:"file_md5"`
	FileName    string            `json:"file_name"`
	NewStatus   models.FileStatus `json:"file_status"`
	Size        *int64            `json:"file_size,omitempty"`
}

// Handler processes one delivered message body. Returning an error rejects
// the delivery.
type Handler func(ctx context.Context, body []byte) error

// Publisher enqueues a message onto a named durable queue.
type Publisher interface {
	Publish(ctx context.Context, queueName string, v any) error
}

// Consumer delivers messages from a named queue to the handler until the
// context is cancelled. Delivery is at-least-once; handlers must be
// idempotent.
type Consumer interface {
	Consume(ctx context.Context, queueName string, h Handler) error
}

// Queue combines both directions of the boundary.
type Queue interface {
	Publisher
	Consumer
}

// Encode marshals a message body as JSON.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return body, nil
}

// Decode unmarshals a JSON message body into v.
func Decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
