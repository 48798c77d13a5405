// Package pipeline implements the asynchronous file ingestion chain:
// admit and deduplicate on upload, store bytes into the plain namespace,
// dispatch compression to the external zipper and apply its verdict. The
// pipeline is the only writer of a file's status; steps for one file run
// strictly in order, carried by durable queues.
package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/filex"
	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/config"
	"github.com/instashare/instashare/internal/server/files"
	"github.com/instashare/instashare/internal/server/models"
	"github.com/instashare/instashare/internal/server/notify"
	"github.com/instashare/instashare/internal/server/queue"
	"github.com/instashare/instashare/internal/server/users"
)

// Pipeline orchestrates every status transition of a file record.
type Pipeline struct {
	repo     files.Repository
	users    users.Repository
	blobs    blob.Store
	pub      queue.Publisher
	notifier notify.Sender
	logger   logging.Logger

	spoolDir         string
	storeQueue       string
	zipperQueue      string
	storeTimeout     time.Duration
	storeAttempts    int
	storeBackoff     []time.Duration
	rejectDuplicates bool
}

// defaultStoreBackoff is the wait before retrying a failed store attempt.
var defaultStoreBackoff = []time.Duration{3 * time.Second, 10 * time.Second, 20 * time.Second}

func New(
	repo files.Repository,
	userRepo users.Repository,
	blobs blob.Store,
	pub queue.Publisher,
	notifier notify.Sender,
	cfg *config.Config,
	logger logging.Logger,
) *Pipeline {
	return &Pipeline{
		repo:             repo,
		users:            userRepo,
		blobs:            blobs,
		pub:              pub,
		notifier:         notifier,
		logger:           logger.With("module", "pipeline"),
		spoolDir:         cfg.SpoolDir,
		storeQueue:       cfg.StoreQueue,
		zipperQueue:      cfg.ZipperQueue,
		storeTimeout:     cfg.StoreTimeout,
		storeAttempts:    cfg.StoreAttempts,
		storeBackoff:     defaultStoreBackoff,
		rejectDuplicates: cfg.RejectDuplicates,
	}
}

// AdmitInput is an upload request after transport-level decoding. Size and
// content hash are derived from Reader, never trusted from the client.
type AdmitInput struct {
	Name    string
	OwnerID *string
	Reader  io.Reader
}

// Admit validates the upload, deduplicates it by content hash and persists
// the metadata record. For fresh content (or content only known from a
// failed record) the bytes are retained in the spool and the store step is
// enqueued; content already owned by a non-failed record rides on the
// existing artifact and the new record simply snapshots its status.
func (p *Pipeline) Admit(ctx context.Context, in AdmitInput) (*models.File, error) {
	if verr := files.ValidateName(in.Name); verr != nil {
		return nil, verr
	}

	hash, size, spoolPath, err := p.spool(in.Reader)
	if err != nil {
		return nil, fmt.Errorf("retain upload: %w", err)
	}

	record := &models.File{
		ID:          uuid.NewString(),
		Name:        in.Name,
		ContentHash: hash,
		Status:      models.StatusLoaded,
		Size:        &size,
		OwnerID:     in.OwnerID,
	}

	runChain := true

	existing, err := p.repo.GetByHash(ctx, hash)
	switch {
	case err == nil:
		if p.rejectDuplicates {
			_ = filex.Remove(spoolPath)
			return nil, common.FieldError("md5", "Duplicated file not allowed: similar file detected")
		}
		// snapshot the prior record's status; the two records evolve
		// independently from here on
		record.Status = existing.Status
		if existing.Status != models.StatusFailed {
			runChain = false
		} else {
			record.Status = models.StatusLoaded
		}
	case errors.Is(err, common.ErrorNotFound):
		// fresh content
	default:
		_ = filex.Remove(spoolPath)
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	created, err := p.repo.Create(ctx, record)
	if err != nil {
		_ = filex.Remove(spoolPath)
		return nil, err
	}

	if !runChain {
		if err := filex.Remove(spoolPath); err != nil {
			p.logger.Warn(ctx, "Spool cleanup after dedup failed", "path", spoolPath, "error", err)
		}
		return created, nil
	}

	job := queue.StoreJob{
		FileID:      created.ID,
		ContentHash: hash,
		FileName:    created.Name,
		LocalPath:   spoolPath,
	}
	if err := p.pub.Publish(ctx, p.storeQueue, job); err != nil {
		// the chain never started; roll the admission back
		if delErr := p.repo.Delete(ctx, created.ID); delErr != nil {
			p.logger.Error(ctx, "Rollback after enqueue failure failed",
				"file_id", created.ID, "error", delErr)
		}
		_ = filex.Remove(spoolPath)
		return nil, fmt.Errorf("enqueue store step: %w", err)
	}

	return created, nil
}

// spool streams the upload into the spool directory under a name unique to
// this admission, computing the content hash and size on the way. Identical
// bytes admitted concurrently must NOT share a spool file: the dedup
// short-circuit discards its own copy, and that removal may never touch the
// path carried by a sibling's pending store job.
func (p *Pipeline) spool(r io.Reader) (hash string, size int64, path string, err error) {
	name := "upload-" + uuid.NewString()

	h := md5.New()
	path, err = filex.Spool(p.spoolDir, name, io.TeeReader(r, h))
	if err != nil {
		return "", 0, "", err
	}

	fi, err := os.Stat(path)
	if err != nil {
		_ = filex.Remove(path)
		return "", 0, "", fmt.Errorf("stat spool file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), fi.Size(), path, nil
}

// notifyOwner sends a terminal-outcome notification. It never fails the
// caller: every error ends in the log with full context.
func (p *Pipeline) notifyOwner(ctx context.Context, f *models.File, outcome notify.Outcome) {
	logCtx := []any{
		"file_id", f.ID,
		"file_md5", f.ContentHash,
		"file_name", f.Name,
		"outcome", outcome,
	}

	if f.OwnerID == nil {
		p.logger.Warn(ctx, "File has no owner, skipping notification", logCtx...)
		return
	}

	owner, err := p.users.GetByID(ctx, *f.OwnerID)
	if err != nil {
		p.logger.Error(ctx, "Owner lookup for notification failed",
			append(logCtx, "user_id", *f.OwnerID, "error", err)...)
		return
	}

	if err := p.notifier.NotifyOutcome(ctx, owner, f.Name, outcome); err != nil {
		p.logger.Error(ctx, "User notification about file's archive/compression process failed",
			append(logCtx, "user_id", owner.ID, "error", err)...)
	}
}
