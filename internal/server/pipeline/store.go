package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/filex"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/models"
	"github.com/instashare/instashare/internal/server/queue"
)

// HandleStore moves spooled bytes into durable blob storage and, on
// success, marks the record STORED and dispatches the compression request.
// Storage errors are retried a bounded number of times with a fixed
// escalating backoff; once the budget is spent the failure procedure runs
// and the message is considered handled.
func (p *Pipeline) HandleStore(ctx context.Context, job queue.StoreJob) error {
	logCtx := []any{
		"file_id", job.FileID,
		"file_md5", job.ContentHash,
		"file_name", job.FileName,
	}

	// a misconfigured attempt budget must never underflow into unbounded retries
	attempts := p.storeAttempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	b := delayBackoff(p.storeBackoff)
	err := retry.Do(ctx, retry.WithMaxRetries(uint64(attempts-1), b), func(ctx context.Context) error {
		attempt++
		if err := p.storeOnce(ctx, job); err != nil {
			if errors.Is(err, common.ErrorTransientStorage) {
				storeRetries.Inc()
				p.logger.Warn(ctx, "Store attempt failed",
					append(logCtx, "attempt", attempt, "error", err)...)
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		p.logger.Error(ctx, "Store step exhausted its attempts",
			append(logCtx, "attempts", attempt, "error", err)...)
		outcomes.WithLabelValues(outcomeFailed).Inc()
		p.Fail(ctx, job.FileID)
		if rmErr := filex.Remove(job.LocalPath); rmErr != nil {
			p.logger.Warn(ctx, "Spool cleanup after store failure failed",
				append(logCtx, "path", job.LocalPath, "error", rmErr)...)
		}
		return nil
	}

	if err := filex.Remove(job.LocalPath); err != nil {
		p.logger.Warn(ctx, "Spool cleanup after store failed",
			append(logCtx, "path", job.LocalPath, "error", err)...)
	}

	if _, err := p.repo.UpdateStatus(ctx, job.FileID, models.StatusStored, nil); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// record deleted while the bytes were in flight; the orphaned
			// blob gets reclaimed when its last sharer goes away
			p.logger.Warn(ctx, "Record gone before store completion", logCtx...)
			return nil
		}
		return fmt.Errorf("mark stored: %w", err)
	}
	outcomes.WithLabelValues(outcomeStored).Inc()

	req := queue.ZipRequest{
		FileID:      job.FileID,
		ContentHash: job.ContentHash,
		FileName:    job.FileName,
	}
	if err := p.pub.Publish(ctx, p.zipperQueue, req); err != nil {
		return fmt.Errorf("dispatch compression: %w", err)
	}

	p.logger.Info(ctx, "File stored, compression dispatched", logCtx...)
	return nil
}

// storeOnce performs a single store attempt under the per-attempt timeout.
// A missing spool file is permanent; everything else about the blob store
// is assumed transient.
func (p *Pipeline) storeOnce(ctx context.Context, job queue.StoreJob) error {
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	f, err := filex.Open(job.LocalPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// redelivered job whose bytes already landed
			if ok, exErr := p.blobs.Exists(ctx, blob.NamespacePlain, job.ContentHash); exErr == nil && ok {
				return nil
			}
			return fmt.Errorf("%w: spool file missing: %w", common.ErrorPermanentPipelineFailure, err)
		}
		return fmt.Errorf("%w: open spool file: %w", common.ErrorTransientStorage, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat spool file: %w", common.ErrorTransientStorage, err)
	}

	if err := p.blobs.Put(ctx, blob.NamespacePlain, job.ContentHash, f, fi.Size()); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorTransientStorage, err)
	}
	return nil
}

// delayBackoff steps through the given delays, staying on the last one if
// the retry budget outlives the list. An empty list means retry immediately.
func delayBackoff(delays []time.Duration) retry.Backoff {
	i := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if len(delays) == 0 {
			return 0, false
		}
		d := delays[i]
		if i < len(delays)-1 {
			i++
		}
		return d, false
	})
}
