package db

import (
	"context"
	"database/sql"

	"github.com/instashare/instashare/internal/server/files"
	"github.com/instashare/instashare/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Files() files.Repository
	Users() users.Repository
}
