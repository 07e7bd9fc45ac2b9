package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/store"
	"github.com/alex2808pl/url-shortener/pkg/cryptox"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

// SeedUser describes the account created at startup so a fresh deployment
// has someone to log in as.
type SeedUser struct {
	Login     string
	Password  string
	FirstName string
	Roles     []domain.Role
}

// SeedService creates the seed user through the normal registration path.
type SeedService struct {
	Auth *AuthService

	// Store, when set, lets a disabled seed warn about an empty user table.
	Store store.Store
}

// EnsureUser registers u unless its login already exists. When u has no
// password one is generated and returned so it can be shown once. An empty
// login disables seeding.
func (s *SeedService) EnsureUser(ctx context.Context, u SeedUser) (created bool, password string, err error) {
	l := slogx.FromContext(ctx)

	if u.Login == "" {
		if s.Store != nil {
			empty, err := s.Store.Users().IsEmpty(ctx)
			if err != nil {
				return false, "", storeFailure("seed", err)
			}
			if empty {
				l.Warn("no users exist and no seed user is configured; only registration can create one")
			}
		}
		return false, "", nil
	}

	password = u.Password
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return false, "", err
		}
	}

	_, err = s.Auth.Register(ctx, domain.Registration{
		Login:     u.Login,
		Password:  password,
		FirstName: u.FirstName,
		Roles:     u.Roles,
	})
	if errors.Is(err, ErrDuplicateUser) {
		l.Info("seed user already present", slog.String("login", u.Login))
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}

	if u.Password != "" {
		password = ""
	}
	return true, password, nil
}
