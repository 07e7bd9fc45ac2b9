package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Role is a tag from the closed set of roles a user may hold.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleUser   Role = "USER"
)

// DefaultRoles is assigned when a registration names no roles.
var DefaultRoles = []Role{RoleUser}

// ErrUnknownRole reports a role tag outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

const roleSeparator = ","

// ParseRole parses a single tag. Matching is exact: case and surrounding
// whitespace both count.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleEditor, RoleUser:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// ParseRoles parses every tag in ss and returns the normalised set.
func ParseRoles(ss []string) ([]Role, error) {
	roles := make([]Role, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NormalizeRoles(roles)
}

// NormalizeRoles validates, de-duplicates and sorts roles.
func NormalizeRoles(roles []Role) ([]Role, error) {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if _, err := ParseRole(string(r)); err != nil {
			return nil, err
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out, nil
}

// EncodeRoles renders roles in their comma-joined storage form. Output is
// sorted so two equal sets always encode identically.
func EncodeRoles(roles []Role) (string, error) {
	norm, err := NormalizeRoles(roles)
	if err != nil {
		return "", err
	}
	return strings.Join(RoleStrings(norm), roleSeparator), nil
}

// DecodeRoles parses the storage form back into a role set. Whitespace
// around segments is tolerated. An empty string decodes to an empty set; an
// empty segment or unknown tag is an error.
func DecodeRoles(s string) ([]Role, error) {
	if strings.TrimSpace(s) == "" {
		return []Role{}, nil
	}

	parts := strings.Split(s, roleSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrUnknownRole, s)
		}
	}
	return ParseRoles(parts)
}

// RoleStrings converts roles to plain strings for token claims.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// HasRole reports whether want is among roles.
func HasRole(roles []Role, want Role) bool {
	return slices.Contains(roles, want)
}
