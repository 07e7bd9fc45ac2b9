package store

import (
	"context"
	"errors"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so transactional code cannot accidentally open a
// transaction within a transaction.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin is used by login, renewal and registration.
	GetUserByLogin(ctx context.Context, login string) (domain.User, error)

	// CreateUser inserts a new user. The id is provided by the caller via ULID.
	// A login collision yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserRoles replaces the role set and bumps updated_at.
	UpdateUserRoles(ctx context.Context, userID string, roles []domain.Role) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
