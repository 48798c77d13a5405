package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/server/models"
	"github.com/instashare/instashare/internal/server/notify"
	"github.com/instashare/instashare/internal/server/queue"
)

// HandleZipResult applies the zipper's verdict. ZIPPED finalizes the record
// with the compressed size and notifies the owner; FAILED runs the failure
// procedure. Redeliveries of an already applied verdict are harmless.
func (p *Pipeline) HandleZipResult(ctx context.Context, upd queue.StatusUpdate) error {
	logCtx := []any{
		"file_id", upd.FileID,
		"file_md5", upd.ContentHash,
		"file_name", upd.FileName,
		"file_status", upd.NewStatus,
	}

	switch upd.NewStatus {
	case models.StatusZipped:
	case models.StatusFailed:
		p.Fail(ctx, upd.FileID)
		return nil
	default:
		p.logger.Error(ctx, "Unexpected status in zipper verdict", logCtx...)
		return fmt.Errorf("unexpected zipper status %q", upd.NewStatus)
	}

	f, err := p.repo.UpdateStatus(ctx, upd.FileID, models.StatusZipped, upd.Size)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.logger.Warn(ctx, "Record gone before zip verdict arrived", logCtx...)
			return nil
		}
		p.logger.Error(ctx, "Applying zip verdict failed", append(logCtx, "error", err)...)
		return fmt.Errorf("mark zipped: %w", err)
	}
	outcomes.WithLabelValues(outcomeZipped).Inc()

	// a redelivered verdict notifies again; duplicates are tolerable
	p.notifyOwner(ctx, f, notify.OutcomeSuccess)
	p.logger.Info(ctx, "File compressed and available for download", logCtx...)
	return nil
}
