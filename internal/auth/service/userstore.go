package service

import (
	"context"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
)

//go:generate mockgen -destination=mocks/mock_userstore.go -package=mocks . UserStore

// UserStore is everything the auth flows need from credential storage.
type UserStore interface {
	// FindByLogin returns the user and true, or false when no such login
	// exists. The error is reserved for infrastructure failures.
	FindByLogin(ctx context.Context, login string) (domain.User, bool, error)

	// Save persists a new user whose PasswordHash is already encoded and
	// returns it with ID and timestamps assigned. A login collision yields
	// store.ErrAlreadyExists.
	Save(ctx context.Context, u domain.User) (domain.User, error)

	EncodePassword(raw string) (string, error)

	// VerifyPassword compares in constant time. Any error, including an
	// unparseable hash, counts as a mismatch.
	VerifyPassword(raw, encoded string) bool
}
