package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/dbx"
	"github.com/instashare/instashare/internal/server/models"
)

// PostgresRepository implements Repository over *sql.DB. Simple reads and
// writes go straight to the pool; UpdateStatus opens a transaction so the
// state-machine check and the write see the same row.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, name, md5, status, size, user_id, created_at, updated_at`

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanFile(row interface{ Scan(...any) error }) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.Name, &f.ContentHash, &f.Status, &f.Size, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (id, name, md5, status, size, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns

	created, err := scanFile(r.db.QueryRowContext(ctx, query,
		f.ID, f.Name, f.ContentHash, f.Status, f.Size, f.OwnerID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.FieldError("name", "filename already taken")
		}
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE md5=$1 ORDER BY created_at LIMIT 1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file by hash: %w", err)
	}
	return f, nil
}

// sortColumns whitelists the columns List accepts as sorting criteria.
var sortColumns = map[string]string{
	"name":       "name",
	"size":       "size",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func buildListFilter(p ListParams) (string, []any) {
	var conds []string
	var args []any

	if len(p.Statuses) > 0 {
		ph := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			args = append(args, s)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ", ")+")")
	}

	if p.Keyword != "" {
		args = append(args, "%"+p.Keyword+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildOrderBy(sort []SortOrder) string {
	var parts []string
	for _, s := range sort {
		col, ok := sortColumns[s.Column]
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return " ORDER BY created_at DESC"
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (r *PostgresRepository) List(ctx context.Context, p ListParams) ([]models.File, int, error) {
	where, args := buildListFilter(p)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	query := `SELECT ` + fileColumns + ` FROM files` + where + buildOrderBy(p.Sort)
	if p.PageSize > 0 {
		current := p.Current
		if current < 1 {
			current = 1
		}
		args = append(args, p.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (current-1)*p.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.FileStatus, size *int64) (*models.File, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	var updated *models.File
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// lock the row so the transition check and the write are atomic
		// against concurrent redeliveries
		current, err := scanFile(tx.QueryRowContext(ctx,
			`SELECT `+fileColumns+` FROM files WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("failed to select file: %w", err)
		}

		if !current.Status.CanTransition(status) {
			return fmt.Errorf("invalid status transition %s -> %s for file %s", current.Status, status, id)
		}

		// already there; nothing to write unless size is being amended
		if current.Status == status && size == nil {
			updated = current
			return nil
		}

		query := `
			UPDATE files
			SET status=$2, size=COALESCE($3, size), updated_at=now()
			WHERE id=$1
			RETURNING ` + fileColumns

		updated, err = scanFile(tx.QueryRowContext(ctx, query, id, status, size))
		if err != nil {
			return fmt.Errorf("failed to update file status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id, name string) (*models.File, error) {
	query := `
		UPDATE files
		SET name=$2, updated_at=now()
		WHERE id=$1
		RETURNING ` + fileColumns

	updated, err := scanFile(r.db.QueryRowContext(ctx, query, id, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.FieldError("name", "filename already taken")
		}
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}
