package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/store"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

// UserService serves profile lookups and role administration.
type UserService struct {
	Store store.Store
}

// GetProfile fetches a user by login, without the password hash.
func (s *UserService) GetProfile(ctx context.Context, login string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storeFailure("get profile", err)
	}
	return u.Profile(), nil
}

// SetRoles replaces the roles of the user identified by login. Tokens
// already issued keep their old roles until they are renewed.
func (s *UserService) SetRoles(ctx context.Context, login string, roles []domain.Role) (domain.User, error) {
	roles, err := domain.NormalizeRoles(roles)
	if err != nil {
		return domain.User{}, err
	}
	if len(roles) == 0 {
		return domain.User{}, ErrNoRoles
	}

	var updated domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByLogin(ctx, login)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateUserRoles(ctx, u.ID, roles); err != nil {
			return err
		}
		updated, err = tx.Users().GetUserByID(ctx, u.ID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storeFailure("set roles", err)
	}

	slogx.FromContext(ctx).Info("user roles updated",
		slog.String("user_id", updated.ID),
		slog.Any("roles", domain.RoleStrings(updated.Roles)),
	)
	return updated.Profile(), nil
}
