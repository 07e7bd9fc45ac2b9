package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/service"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestSeedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seed := &service.SeedService{Auth: f.auth, Store: f.store}

	var logs bytes.Buffer
	logCtx := slogx.WithContext(ctx, slog.New(slog.NewTextHandler(&logs, nil)))

	t.Run("disabled without login", func(t *testing.T) {
		created, pw, err := seed.EnsureUser(logCtx, service.SeedUser{})
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, pw)
		require.Contains(t, logs.String(), "no users exist", "empty store is reported")
	})

	t.Run("configured password is not echoed", func(t *testing.T) {
		created, pw, err := seed.EnsureUser(ctx, service.SeedUser{Login: "user", Password: "1234"})
		require.NoError(t, err)
		require.True(t, created)
		require.Empty(t, pw)

		_, err = f.auth.Login(ctx, "user", "1234")
		require.NoError(t, err)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		created, _, err := seed.EnsureUser(ctx, service.SeedUser{Login: "user", Password: "other"})
		require.NoError(t, err)
		require.False(t, created)

		_, err = f.auth.Login(ctx, "user", "1234")
		require.NoError(t, err, "existing password untouched")
	})

	t.Run("generated password with roles", func(t *testing.T) {
		created, pw, err := seed.EnsureUser(ctx, service.SeedUser{Login: "root", Roles: []domain.Role{domain.RoleAdmin}})
		require.NoError(t, err)
		require.True(t, created)
		require.NotEmpty(t, pw)

		_, err = f.auth.Login(ctx, "root", pw)
		require.NoError(t, err)

		profile, err := f.users.GetProfile(ctx, "root")
		require.NoError(t, err)
		require.Equal(t, []domain.Role{domain.RoleAdmin}, profile.Roles)
	})

	t.Run("disabled seed is quiet once users exist", func(t *testing.T) {
		logs.Reset()
		created, _, err := seed.EnsureUser(logCtx, service.SeedUser{})
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, logs.String())
	})
}
