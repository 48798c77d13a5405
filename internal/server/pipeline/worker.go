package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/config"
	"github.com/instashare/instashare/internal/server/queue"
)

// Worker binds the pipeline's handlers to their queues: store jobs produced
// at upload time and status verdicts produced by the external zipper.
type Worker struct {
	pipeline *Pipeline
	consumer queue.Consumer
	logger   logging.Logger

	storeQueue  string
	statusQueue string
}

func NewWorker(p *Pipeline, c queue.Consumer, cfg *config.Config, logger logging.Logger) *Worker {
	return &Worker{
		pipeline:    p,
		consumer:    c,
		logger:      logger.With("module", "worker"),
		storeQueue:  cfg.StoreQueue,
		statusQueue: cfg.StatusQueue,
	}
}

// Run consumes both queues until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	consume := func(queueName string, h queue.Handler) {
		defer wg.Done()
		if err := w.consumer.Consume(ctx, queueName, h); err != nil {
			errCh <- err
		}
	}

	wg.Add(2)
	go consume(w.storeQueue, w.handleStoreMessage)
	go consume(w.statusQueue, w.handleStatusMessage)
	wg.Wait()

	select {
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return nil
	}
}

func (w *Worker) handleStoreMessage(ctx context.Context, body []byte) error {
	var job queue.StoreJob
	if err := queue.Decode(body, &job); err != nil {
		w.logger.Error(ctx, "Malformed store job", "error", err)
		return err
	}
	return w.pipeline.HandleStore(ctx, job)
}

func (w *Worker) handleStatusMessage(ctx context.Context, body []byte) error {
	var upd queue.StatusUpdate
	if err := queue.Decode(body, &upd); err != nil {
		w.logger.Error(ctx, "Malformed status update", "error", err)
		return err
	}
	return w.pipeline.HandleZipResult(ctx, upd)
}
