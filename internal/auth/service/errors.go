package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown login and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthFailed is matched by every *AuthFailedError.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrDuplicateUser is matched by every *DuplicateUserError.
	ErrDuplicateUser = errors.New("user already exists")

	ErrInvalidRegistration = errors.New("invalid registration")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoRoles             = errors.New("at least one role is required")

	// ErrUnknownSubject is the AuthFailedError reason when a well-signed
	// refresh token names a login that no longer exists.
	ErrUnknownSubject = errors.New("token subject no longer exists")

	// ErrStoreFailure marks infrastructure errors from the user store. It is
	// never used for credential or token problems.
	ErrStoreFailure = errors.New("user store failure")
)

// AuthFailedError is returned by refresh and reissue when the presented token
// is rejected. Reason is one of the jwtx verification errors or
// ErrUnknownSubject.
type AuthFailedError struct {
	Reason error
}

func (e *AuthFailedError) Error() string {
	if e.Reason == nil {
		return ErrAuthFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrAuthFailed, e.Reason)
}

func (e *AuthFailedError) Is(target error) bool { return target == ErrAuthFailed }
func (e *AuthFailedError) Unwrap() error        { return e.Reason }

// DuplicateUserError names the login that is already taken.
type DuplicateUserError struct {
	Login string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user with login %q already exists", e.Login)
}

func (e *DuplicateUserError) Is(target error) bool { return target == ErrDuplicateUser }

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
