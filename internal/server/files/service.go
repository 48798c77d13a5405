package files

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/logging"
	"github.com/instashare/instashare/internal/server/blob"
	"github.com/instashare/instashare/internal/server/models"
)

// Service exposes the user-facing file operations. Everything that advances
// a file's status lives in the pipeline package; this service only reads
// records, renames, deletes and gates downloads.
type Service struct {
	repo   Repository
	blobs  blob.Store
	logger logging.Logger
}

func NewService(repo Repository, blobs blob.Store, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger.With("module", "files"),
	}
}

func (s *Service) Get(ctx context.Context, id string) (*models.File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, p ListParams) ([]models.File, int, error) {
	return s.repo.List(ctx, p)
}

// Rename changes the only user-modifiable attribute. The new name must pass
// the same validation as uploads and stay unique across surviving records.
func (s *Service) Rename(ctx context.Context, id, name string) (*models.File, error) {
	if verr := ValidateName(name); verr != nil {
		return nil, verr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Name == name {
		return current, nil
	}

	return s.repo.UpdateName(ctx, id, name)
}

// Delete removes the record and, when no surviving record still references
// the same content hash, cleans both blob namespaces. Blob errors are logged
// and swallowed: the record removal is what the user asked for.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.repo.GetByHash(ctx, f.ContentHash); err == nil {
		// another record still rides on this artifact
		return nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "Dedup check after delete failed, skipping blob cleanup",
			"file_id", id, "file_md5", f.ContentHash, "error", err)
		return nil
	}

	for _, ns := range []blob.Namespace{blob.NamespacePlain, blob.NamespaceZipped} {
		if err := s.blobs.Delete(ctx, ns, f.ContentHash); err != nil {
			s.logger.Error(ctx, "Blob cleanup failed",
				"file_id", id, "file_md5", f.ContentHash, "namespace", ns, "error", err)
		}
	}
	return nil
}

// Download streams the compressed artifact. Only ZIPPED files are
// downloadable; a ZIPPED record whose artifact is gone is a server-side
// inconsistency, not a client error.
func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, string, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if f.Status != models.StatusZipped {
		return nil, "", common.ErrorNotDownloadable
	}

	rc, err := s.blobs.Get(ctx, blob.NamespaceZipped, f.ContentHash)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.logger.Error(ctx, "Zipped artifact missing for downloadable file",
				"file_id", f.ID, "file_md5", f.ContentHash, "file_name", f.Name)
			return nil, "", common.ErrorArtifactMissing
		}
		return nil, "", fmt.Errorf("fetch artifact: %w", err)
	}

	return rc, f.Name + ".zip", nil
}
