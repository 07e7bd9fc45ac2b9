package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification outcomes. Every failed Verify or Extract wraps exactly one of
// these.
var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// ErrUnsupportedAlg is returned by NewCodec for anything but HS256/384/512.
var ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")

// Codec signs and verifies compact HMAC-signed JWTs. It holds no key
// material; the key is chosen per call so a single Codec serves both token
// classes. A Codec is immutable and safe for concurrent use.
type Codec struct {
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// CodecOption customises a Codec at construction.
type CodecOption func(*Codec)

// WithClock replaces time.Now as the time source used by Verify.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec for the given HMAC algorithm name. An empty name
// selects HS256.
func NewCodec(alg string, opts ...CodecOption) (*Codec, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}

	c := &Codec{method: method, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Alg returns the JWS algorithm name, e.g. "HS256".
func (c *Codec) Alg() string { return c.method.Alg() }

// Sign encodes claims into a signed token. Subject and expiration are
// mandatory.
func (c *Codec) Sign(key Key, claims Claims) (string, error) {
	if err := key.check(c.Alg()); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("jwtx: sign: empty subject")
	}
	if claims.ExpiresAt == nil {
		return "", errors.New("jwtx: sign: missing expiration")
	}

	t := jwt.NewWithClaims(c.method, claims)
	return t.SignedString(key.bytes())
}

// Verify checks the signature against key and the expiration against the
// current time. The clock is read once, before parsing.
func (c *Codec) Verify(key Key, token string) (Claims, error) {
	now := c.now()
	return c.parse(key, token,
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
}

// Extract checks the signature against key but skips every time-based check,
// so an expired but authentic token still yields its claims. It never returns
// ErrExpired.
func (c *Codec) Extract(key Key, token string) (Claims, error) {
	return c.parse(key, token, jwt.WithoutClaimsValidation())
}

func (c *Codec) parse(key Key, token string, opts ...jwt.ParserOption) (Claims, error) {
	if err := key.check(c.Alg()); err != nil {
		return Claims{}, err
	}

	opts = append(opts, jwt.WithValidMethods([]string{c.Alg()}))
	parser := jwt.NewParser(opts...)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return key.bytes(), nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing sub", ErrMalformed)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", ErrMalformed)
	}

	return claims, nil
}

// classify maps golang-jwt errors onto the three outcomes. The parser checks
// the signature before any claim, so an expired token with a bad signature
// is reported as ErrInvalidSig.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	switch alg {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}
