package jwtx

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKeyMissing    = errors.New("jwtx: signing key missing")
	ErrKeyEncoding   = errors.New("jwtx: signing key is not valid base64")
	ErrKeyTooShort   = errors.New("jwtx: signing key too short for algorithm")
	ErrKeysIdentical = errors.New("jwtx: access and refresh keys must differ")
)

// Key is a raw HMAC secret.
type Key []byte

// Keys holds the two secrets, one per token class. They are decoded once at
// startup and never change for the life of the process.
type Keys struct {
	Access  Key
	Refresh Key
}

// MinKeyLen returns the minimum secret length in bytes for an HMAC algorithm,
// equal to the hash output size.
func MinKeyLen(alg string) int {
	switch alg {
	case "HS384":
		return 48
	case "HS512":
		return 64
	default:
		return 32
	}
}

// DecodeKey decodes a base64 secret (standard or URL alphabet, padded or not)
// and checks its length against alg.
func DecodeKey(encoded, alg string) (Key, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrKeyMissing
	}

	raw, err := decodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyEncoding, err)
	}

	k := Key(raw)
	if err := k.check(alg); err != nil {
		return nil, err
	}
	return k, nil
}

// LoadKeys decodes both secrets and refuses to continue if either is missing,
// too short, or if the two are equal.
func LoadKeys(accessB64, refreshB64, alg string) (Keys, error) {
	access, err := DecodeKey(accessB64, alg)
	if err != nil {
		return Keys{}, fmt.Errorf("access key: %w", err)
	}

	refresh, err := DecodeKey(refreshB64, alg)
	if err != nil {
		return Keys{}, fmt.Errorf("refresh key: %w", err)
	}

	if bytes.Equal(access, refresh) {
		return Keys{}, ErrKeysIdentical
	}

	return Keys{Access: access, Refresh: refresh}, nil
}

func (k Key) check(alg string) error {
	if len(k) == 0 {
		return ErrKeyMissing
	}
	if need := MinKeyLen(alg); len(k) < need {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrKeyTooShort, alg, need, len(k))
	}
	return nil
}

// bytes hands golang-jwt the plain []byte it expects from a keyfunc.
func (k Key) bytes() []byte { return []byte(k) }

func decodeBase64(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
