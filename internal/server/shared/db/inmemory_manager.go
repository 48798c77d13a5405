package db

import (
	"context"
	"database/sql"

	"github.com/instashare/instashare/internal/server/files"
	"github.com/instashare/instashare/internal/server/users"
)

type InMemoryRepositoryManager struct {
	files files.Repository
	users users.Repository
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Files() files.Repository {
	return m.files
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		files: files.NewMemRepository(),
		users: users.NewMemRepository(),
	}
}
