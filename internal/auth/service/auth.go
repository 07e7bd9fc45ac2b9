package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/store"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

// dummyPassword is hashed once and verified against on unknown logins so the
// response time does not reveal whether the login exists.
const dummyPassword = "timing-equaliser-not-a-real-password"

// AuthService drives login, token renewal and registration. It keeps no
// state between calls apart from the lazily built dummy hash.
type AuthService struct {
	Users     UserStore
	Issuer    *TokenIssuer
	Validator *TokenValidator

	dummyOnce sync.Once
	dummyHash string
}

// Login checks the credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, login, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, found, err := s.Users.FindByLogin(ctx, login)
	if err != nil {
		l.Error("login lookup failed", slog.Any("error", err))
		return domain.TokenPair{}, storeFailure("login", err)
	}

	if !found {
		s.Users.VerifyPassword(password, s.dummy(ctx))
		l.Info("login rejected", slog.String("reason", "unknown login"))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if !s.Users.VerifyPassword(password, u.PasswordHash) {
		l.Info("login rejected", slog.String("reason", "password mismatch"), slog.String("user_id", u.ID))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.Issuer.IssuePair(u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("user_id", u.ID))
	return pair, nil
}

// Refresh validates a refresh token and returns a new access token only. The
// user is re-read so role changes since the refresh token was issued take
// effect immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	u, err := s.userFromRefresh(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.Issuer.IssueAccessOnly(u)
}

// ReissueBoth validates a refresh token exactly like Refresh but rotates
// both tokens.
func (s *AuthService) ReissueBoth(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	u, err := s.userFromRefresh(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.Issuer.IssuePair(u)
}

func (s *AuthService) userFromRefresh(ctx context.Context, refreshToken string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Validator.CheckRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh token rejected", slog.Any("reason", err))
		return domain.User{}, &AuthFailedError{Reason: err}
	}

	u, found, err := s.Users.FindByLogin(ctx, claims.Subject)
	if err != nil {
		l.Error("refresh lookup failed", slog.Any("error", err))
		return domain.User{}, storeFailure("refresh", err)
	}
	if !found {
		l.Warn("refresh token rejected", slog.Any("reason", ErrUnknownSubject))
		return domain.User{}, &AuthFailedError{Reason: ErrUnknownSubject}
	}

	return u, nil
}

// Register creates a user from reg and returns its profile. Roles default to
// USER when none are given.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	l := slogx.FromContext(ctx)

	login := strings.TrimSpace(reg.Login)
	if login == "" {
		return domain.User{}, fmt.Errorf("%w: login is required", ErrInvalidRegistration)
	}
	if reg.Password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrInvalidRegistration)
	}

	roles := reg.Roles
	if len(roles) == 0 {
		roles = domain.DefaultRoles
	}
	roles, err := domain.NormalizeRoles(roles)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRegistration, err)
	}

	_, found, err := s.Users.FindByLogin(ctx, login)
	if err != nil {
		l.Error("registration lookup failed", slog.Any("error", err))
		return domain.User{}, storeFailure("register", err)
	}
	if found {
		return domain.User{}, &DuplicateUserError{Login: login}
	}

	hash, err := s.Users.EncodePassword(reg.Password)
	if err != nil {
		return domain.User{}, storeFailure("register", err)
	}

	saved, err := s.Users.Save(ctx, domain.User{
		Login:        login,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Roles:        roles,
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		// Lost a race with a concurrent registration.
		return domain.User{}, &DuplicateUserError{Login: login}
	case err != nil:
		l.Error("failed to save user", slog.Any("error", err))
		return domain.User{}, storeFailure("register", err)
	}

	l.Info("user registered", slog.String("user_id", saved.ID), slog.Any("roles", domain.RoleStrings(saved.Roles)))
	return saved.Profile(), nil
}

func (s *AuthService) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := s.Users.EncodePassword(dummyPassword)
		if err != nil {
			slogx.FromContext(ctx).Warn("failed to build dummy hash", slog.Any("error", err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
