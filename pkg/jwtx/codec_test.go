package jwtx_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	accessKey  = jwtx.Key(bytes.Repeat([]byte{'a'}, 32))
	refreshKey = jwtx.Key(bytes.Repeat([]byte{'r'}, 32))
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignVerifyRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	codec, err := jwtx.NewCodec("HS256", jwtx.WithClock(fixedClock(now)))
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("alice", "Alice", []string{"ADMIN", "USER"}, now)
	token, err := codec.Sign(accessKey, claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	got, err := codec.Verify(accessKey, token)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Subject)
	require.Equal(t, []string{"ADMIN", "USER"}, got.Roles)
	require.Equal(t, "Alice", got.FirstName)
	require.True(t, now.Add(jwtx.AccessTokenTTL).Equal(got.Expiry()))
	require.NotEmpty(t, got.ID)
}

func TestVerifyCrossKeyRejected(t *testing.T) {
	codec, err := jwtx.NewCodec("")
	require.NoError(t, err)

	now := time.Now()
	token, err := codec.Sign(refreshKey, jwtx.NewRefreshClaims("alice", now))
	require.NoError(t, err)

	_, err = codec.Verify(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	_, err = codec.Verify(refreshKey, token)
	require.NoError(t, err)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	codec, err := jwtx.NewCodec("HS256", jwtx.WithClock(fixedClock(now)))
	require.NoError(t, err)

	mint := func(exp time.Time) string {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(exp),
		}}
		tok, err := codec.Sign(accessKey, c)
		require.NoError(t, err)
		return tok
	}

	t.Run("one second past", func(t *testing.T) {
		_, err := codec.Verify(accessKey, mint(now.Add(-time.Second)))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("one second ahead", func(t *testing.T) {
		_, err := codec.Verify(accessKey, mint(now.Add(time.Second)))
		require.NoError(t, err)
	})
}

func TestVerifyExpiredWithBadSignature(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	codec, err := jwtx.NewCodec("HS256", jwtx.WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, err := codec.Sign(refreshKey, jwtx.NewAccessClaims("alice", "", nil, now.Add(-time.Hour)))
	require.NoError(t, err)

	_, err = codec.Verify(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	require.NotErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyMalformed(t *testing.T) {
	codec, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	for _, in := range []string{"", "abc", "a.b", "a.b.c", "!!!.???.###"} {
		_, err := codec.Verify(accessKey, in)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", in)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()

	hs512, err := jwtx.NewCodec("HS512")
	require.NoError(t, err)
	longKey := jwtx.Key(bytes.Repeat([]byte{'k'}, 64))

	token, err := hs512.Sign(longKey, jwtx.NewRefreshClaims("alice", now))
	require.NoError(t, err)

	hs256, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	// golang-jwt reports a disallowed method as a signature failure.
	_, err = hs256.Verify(longKey, token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	// alg "none" is never accepted.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewRefreshClaims("alice", now)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = hs256.Verify(accessKey, unsigned)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRequiresSubject(t *testing.T) {
	now := time.Now()
	codec, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	// Bypass Sign's own checks to simulate a foreign token.
	c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(accessKey))
	require.NoError(t, err)

	_, err = codec.Verify(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyRequiresExpiration(t *testing.T) {
	codec, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(accessKey))
	require.NoError(t, err)

	_, err = codec.Verify(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	_, err = codec.Extract(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestExtractIgnoresExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	codec, err := jwtx.NewCodec("HS256", jwtx.WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, err := codec.Sign(accessKey, jwtx.NewAccessClaims("alice", "", []string{"USER"}, now.Add(-24*time.Hour)))
	require.NoError(t, err)

	_, err = codec.Verify(accessKey, token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	claims, err := codec.Extract(accessKey, token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)

	_, err = codec.Extract(refreshKey, token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestSignValidation(t *testing.T) {
	codec, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	_, err = codec.Sign(accessKey, jwtx.Claims{})
	require.Error(t, err)

	_, err = codec.Sign(jwtx.Key("short"), jwtx.NewRefreshClaims("alice", time.Now()))
	require.ErrorIs(t, err, jwtx.ErrKeyTooShort)
}

func TestNewCodecRejectsUnknownAlg(t *testing.T) {
	for _, alg := range []string{"RS256", "none", "hs256"} {
		_, err := jwtx.NewCodec(alg)
		require.ErrorIs(t, err, jwtx.ErrUnsupportedAlg, alg)
	}
}

func TestTokensDifferWithinSameSecond(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	codec, err := jwtx.NewCodec("HS256")
	require.NoError(t, err)

	a, err := codec.Sign(refreshKey, jwtx.NewRefreshClaims("alice", now))
	require.NoError(t, err)
	b, err := codec.Sign(refreshKey, jwtx.NewRefreshClaims("alice", now))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
