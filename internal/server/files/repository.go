// Package files owns the metadata store and the user-facing operations for
// uploaded files: listing, rename, delete and download gating. The ingestion
// pipeline is the only writer of a file's status.
package files

import (
	"context"
	"regexp"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/server/models"
)

// SortOrder is one sorting criterion for List.
type SortOrder struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// ListParams carries the generic filter/sort/pagination contract of the
// listing endpoint. Current is a 1-based page number; a zero PageSize
// disables paging.
type ListParams struct {
	Statuses []models.FileStatus
	Keyword  string
	Sort     []SortOrder
	Current  int
	PageSize int
}

// Repository is the persistence contract for file records.
type Repository interface {
	// Create inserts a new record. A duplicate name yields a ValidationError.
	Create(ctx context.Context, f *models.File) (*models.File, error)

	// GetByID returns the record or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.File, error)

	// GetByHash returns the first record with the given content hash, or
	// common.ErrorNotFound. Used for dedup.
	GetByHash(ctx context.Context, hash string) (*models.File, error)

	// List returns matching records and the total match count.
	List(ctx context.Context, p ListParams) ([]models.File, int, error)

	// UpdateStatus moves the record along the status state machine,
	// optionally amending size. Same-status updates are no-ops. An edge the
	// state machine does not allow is an error.
	UpdateStatus(ctx context.Context, id string, status models.FileStatus, size *int64) (*models.File, error)

	// UpdateName renames the record. A duplicate name yields a
	// ValidationError.
	UpdateName(ctx context.Context, id, name string) (*models.File, error)

	// Delete removes the record permanently.
	Delete(ctx context.Context, id string) error
}

// nameRe allows letters (including accented Latin), digits, spaces, dots and
// underscores.
var nameRe = regexp.MustCompile(`^[0-9a-zA-ZáéíóúÁÉÍÓÚñÑ._\s]+$`)

const maxNameLength = 255

// ValidateName checks the user-visible file name against the allowed
// character class and length bound. Uniqueness is enforced by the store.
func ValidateName(name string) *common.ValidationError {
	e := common.NewValidationError()
	switch {
	case name == "":
		e.Add("name", "filename is required")
	case len(name) > maxNameLength:
		e.Add("name", "filename must not exceed 255 characters")
	case !nameRe.MatchString(name):
		e.Add("name", "filename contains invalid characters")
	}
	if e.HasErrors() {
		return e
	}
	return nil
}
