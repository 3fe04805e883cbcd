// errors.go - Sentinel errors shared by stores, sessions and handlers.
// Match them with errors.Is; callers wrap with %w.

package models

import "errors"

var (
	// ErrDuplicateIdentity means the username or email is already registered.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrInvalidCredentials covers both an unknown user and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorageLocked is returned once every write attempt hit a held lock.
	ErrStorageLocked = errors.New("storage transiently locked")

	// ErrUnauthenticated means no valid session backs the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrNotFound = errors.New("not found")
)
