package pipeline

import (
	"context"
	"errors"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/notify"
)

// Fail is the terminal failure procedure: notify the owner, reclaim both
// blob namespaces, drop the record. Every step runs regardless of earlier
// steps failing; errors end up in the log with full context.
func (p *Pipeline) Fail(ctx context.Context, fileID string) {
	f, err := p.repo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.logger.Warn(ctx, "Failure procedure for unknown record", "file_id", fileID)
			return
		}
		p.logger.Error(ctx, "Failure procedure could not load record",
			"file_id", fileID, "error", err)
		return
	}

	logCtx := []any{
		"file_id", f.ID,
		"file_md5", f.ContentHash,
		"file_name", f.Name,
	}

	p.notifyOwner(ctx, f, notify.OutcomeFailed)

	for _, ns := range []blob.Namespace{blob.NamespacePlain, blob.NamespaceZipped} {
		if err := p.blobs.Delete(ctx, ns, f.ContentHash); err != nil {
			p.logger.Error(ctx, "Blob cleanup during failure procedure failed",
				append(logCtx, "namespace", ns, "error", err)...)
		}
	}

	if err := p.repo.Delete(ctx, f.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		p.logger.Error(ctx, "Record deletion during failure procedure failed",
			append(logCtx, "error", err)...)
		return
	}

	p.logger.Info(ctx, "File discarded after pipeline failure", logCtx...)
}
