package users

import (
	"context"
	"sync"

	"github.com/instashare/instashare/internal/common"
	"github.com/instashare/instashare/internal/server/models"
)

// MemRepository is an in-memory Repository used in tests.
type MemRepository struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func NewMemRepository() *MemRepository {
	return &MemRepository{byID: map[string]models.User{}}
}

// Add registers a user for lookup.
func (r *MemRepository) Add(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
}

func (r *MemRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
