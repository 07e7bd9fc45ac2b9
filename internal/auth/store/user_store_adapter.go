package store

import (
	"context"
	"errors"
	"time"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/pkg/cryptox"
	"github.com/alex2808pl/url-shortener/pkg/idx"
)

// UserStoreAdapter exposes a Store and a password hasher through the narrow
// credential interface the auth service consumes.
type UserStoreAdapter struct {
	store  Store
	hasher *cryptox.PasswordHasher
	now    func() time.Time
}

// NewUserStoreAdapter binds a store to the hasher used for every password.
func NewUserStoreAdapter(s Store, hasher *cryptox.PasswordHasher) *UserStoreAdapter {
	return &UserStoreAdapter{store: s, hasher: hasher, now: time.Now}
}

// FindByLogin returns (user, true, nil) on a hit and (zero, false, nil) when
// the login is unknown.
func (a *UserStoreAdapter) FindByLogin(ctx context.Context, login string) (domain.User, bool, error) {
	u, err := a.store.Users().GetUserByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// Save assigns an ID and timestamps and inserts u. A taken login fails with
// ErrAlreadyExists from the unique index.
func (a *UserStoreAdapter) Save(ctx context.Context, u domain.User) (domain.User, error) {
	now := a.now().UTC()
	u.ID = idx.NewAt(now).String()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := a.store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (a *UserStoreAdapter) EncodePassword(raw string) (string, error) {
	return a.hasher.Hash(raw)
}

func (a *UserStoreAdapter) VerifyPassword(raw, encoded string) bool {
	return a.hasher.Verify(raw, encoded) == nil
}
