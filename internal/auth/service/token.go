package service

import (
	"fmt"
	"time"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/pkg/jwtx"
)

// TokenIssuer mints access and refresh tokens for a user. It holds only
// immutable configuration and is safe for concurrent use.
type TokenIssuer struct {
	Codec *jwtx.Codec
	Keys  jwtx.Keys

	// Now defaults to time.Now.
	Now func() time.Time
}

func (i *TokenIssuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// IssueAccessToken signs a 15 minute access token carrying the user's roles
// and first name with the access key.
func (i *TokenIssuer) IssueAccessToken(u domain.User) (string, error) {
	tok, _, err := i.issueAccess(u, i.now())
	return tok, err
}

// IssueRefreshToken signs a 30 day refresh token with the refresh key. It
// carries no roles.
func (i *TokenIssuer) IssueRefreshToken(u domain.User) (string, error) {
	return i.issueRefresh(u, i.now())
}

// IssuePair mints both tokens against a single clock reading.
func (i *TokenIssuer) IssuePair(u domain.User) (domain.TokenPair, error) {
	now := i.now()

	access, exp, err := i.issueAccess(u, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.issueRefresh(u, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		TokenType:       domain.TokenTypeBearer,
		AccessExpiresAt: exp,
	}, nil
}

// IssueAccessOnly is IssuePair without the refresh token.
func (i *TokenIssuer) IssueAccessOnly(u domain.User) (domain.TokenPair, error) {
	access, exp, err := i.issueAccess(u, i.now())
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:     access,
		TokenType:       domain.TokenTypeBearer,
		AccessExpiresAt: exp,
	}, nil
}

func (i *TokenIssuer) issueAccess(u domain.User, now time.Time) (string, time.Time, error) {
	roles, err := domain.NormalizeRoles(u.Roles)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}

	claims := jwtx.NewAccessClaims(u.Login, u.FirstName, domain.RoleStrings(roles), now)
	tok, err := i.Codec.Sign(i.Keys.Access, claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}
	return tok, claims.Expiry(), nil
}

func (i *TokenIssuer) issueRefresh(u domain.User, now time.Time) (string, error) {
	tok, err := i.Codec.Sign(i.Keys.Refresh, jwtx.NewRefreshClaims(u.Login, now))
	if err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}
	return tok, nil
}

// TokenValidator checks tokens against the key belonging to their class, so
// a refresh token never passes as an access token or the other way round.
type TokenValidator struct {
	Codec *jwtx.Codec
	Keys  jwtx.Keys
}

// Algorithm names the signing algorithm tokens are checked against.
func (v *TokenValidator) Algorithm() string {
	if v.Codec == nil {
		return ""
	}
	return v.Codec.Alg()
}

// CheckAccess fully verifies an access token. Role claims must decode to
// the known set or the token is treated as malformed.
func (v *TokenValidator) CheckAccess(token string) (jwtx.Claims, error) {
	c, err := v.Codec.Verify(v.Keys.Access, token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	return checkRoleClaims(c)
}

// CheckRefresh fully verifies a refresh token.
func (v *TokenValidator) CheckRefresh(token string) (jwtx.Claims, error) {
	return v.Codec.Verify(v.Keys.Refresh, token)
}

// ExtractAccessClaims returns the claims of an authentic access token even
// when it has expired.
func (v *TokenValidator) ExtractAccessClaims(token string) (jwtx.Claims, error) {
	c, err := v.Codec.Extract(v.Keys.Access, token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	return checkRoleClaims(c)
}

// ExtractRefreshClaims returns the claims of an authentic refresh token even
// when it has expired.
func (v *TokenValidator) ExtractRefreshClaims(token string) (jwtx.Claims, error) {
	return v.Codec.Extract(v.Keys.Refresh, token)
}

func checkRoleClaims(c jwtx.Claims) (jwtx.Claims, error) {
	if _, err := domain.ParseRoles(c.Roles); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", jwtx.ErrMalformed, err)
	}
	return c, nil
}
