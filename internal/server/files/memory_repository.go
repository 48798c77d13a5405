package files

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/server/models"
)

// MemRepository is an in-memory Repository used in tests and local runs.
type MemRepository struct {
	mu    sync.Mutex
	byID  map[string]*models.File
	order []string

	// Err, when set, is returned by every method. Tests use it to inject
	// database failures.
	Err error
}

func NewMemRepository() *MemRepository {
	return &MemRepository{byID: map[string]*models.File{}}
}

func (r *MemRepository) clone(f *models.File) *models.File {
	c := *f
	if f.Size != nil {
		size := *f.Size
		c.Size = &size
	}
	if f.OwnerID != nil {
		owner := *f.OwnerID
		c.OwnerID = &owner
	}
	return &c
}

func (r *MemRepository) Create(ctx context.Context, f *models.File) (*models.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Name == f.Name {
			return nil, common.FieldError("name", "filename already taken")
		}
	}

	c := r.clone(f)
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return r.clone(c), nil
}

func (r *MemRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.clone(f), nil
}

func (r *MemRepository) GetByHash(ctx context.Context, hash string) (*models.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if f, ok := r.byID[id]; ok && f.ContentHash == hash {
			return r.clone(f), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemRepository) List(ctx context.Context, p ListParams) ([]models.File, int, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.File
	for _, id := range r.order {
		f, ok := r.byID[id]
		if !ok {
			continue
		}
		if len(p.Statuses) > 0 {
			found := false
			for _, s := range p.Statuses {
				if f.Status == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if p.Keyword != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(p.Keyword)) {
			continue
		}
		matched = append(matched, *r.clone(f))
	}

	for _, s := range p.Sort {
		if s.Column == "name" {
			desc := s.Desc
			sort.SliceStable(matched, func(i, j int) bool {
				if desc {
					return matched[i].Name > matched[j].Name
				}
				return matched[i].Name < matched[j].Name
			})
		}
	}

	total := len(matched)
	if p.PageSize > 0 {
		current := p.Current
		if current < 1 {
			current = 1
		}
		from := (current - 1) * p.PageSize
		if from > total {
			from = total
		}
		to := from + p.PageSize
		if to > total {
			to = total
		}
		matched = matched[from:to]
	}
	return matched, total, nil
}

func (r *MemRepository) UpdateStatus(ctx context.Context, id string, status models.FileStatus, size *int64) (*models.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if !f.Status.CanTransition(status) {
		return nil, fmt.Errorf("invalid status transition %s -> %s for file %s", f.Status, status, id)
	}

	f.Status = status
	if size != nil {
		s := *size
		f.Size = &s
	}
	f.UpdatedAt = time.Now().UTC()
	return r.clone(f), nil
}

func (r *MemRepository) UpdateName(ctx context.Context, id, name string) (*models.File, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for otherID, other := range r.byID {
		if otherID != id && other.Name == name {
			return nil, common.FieldError("name", "filename already taken")
		}
	}

	f.Name = name
	f.UpdatedAt = time.Now().UTC()
	return r.clone(f), nil
}

func (r *MemRepository) Delete(ctx context.Context, id string) error {
	if r.Err != nil {
		return r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
