package domain

import (
	"context"
	"errors"
)

// ErrUsernameTaken is returned by UserRepository.Create when the username
// violates the store's unique constraint.
var ErrUsernameTaken = errors.New("username already exists")

// User represents a user record. The credential never leaves this package in
// readable form; see Credential.
type User struct {
	ID         int
	Username   string
	Credential Credential
	ImageURL   *string
	Bio        *string
}

// NewUser carries the fields required to insert a user.
type NewUser struct {
	Username   string
	Credential Credential
	ImageURL   *string
	Bio        *string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL directly.
type UserRepository interface {
	// Create inserts a new user inside a single transaction and returns the stored record.
	// Returns ErrUsernameTaken when the username is already in use; nothing is persisted then.
	Create(ctx context.Context, user NewUser) (*User, error)

	// GetByID returns the user with the given ID.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int) (*User, error)

	// GetByUsername returns the user matching the given username (case-sensitive).
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
