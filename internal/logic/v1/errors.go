// Package v1 provides authentication and recipe business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for the failures handlers translate
// into HTTP responses. Business methods wrap them with context using
// fmt.Errorf("%w"); handlers match them with errors.Is.
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials), errors.Is(err, logicv1.ErrUserNotFound):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "401: Unauthorized"})
//	default:
//	    c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "422: Unprocessable Entity"})
//	}
//
// Validation failures are returned as *domain.ValidationError and carry their own message list.
package v1

import "errors"

// Sentinel errors for auth and recipe operations.
var (
	// ErrInvalidCredentials indicates the password does not match.
	// HTTP Status: 401 Unauthorized (same body as ErrUserNotFound)
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist (or no longer exists).
	// HTTP Status: 401 Unauthorized (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound indicates the request carries no authenticated user.
	// HTTP Status: 401 Unauthorized
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserExists indicates the username is already taken.
	// HTTP Status: 422 Unprocessable Entity
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidInput indicates required signup fields are missing.
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidInput = errors.New("invalid input")
)
