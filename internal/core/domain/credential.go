package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const redacted = "[REDACTED]"

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext.
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrCredentialExposed is returned by every encoder that would put a credential on the wire.
	ErrCredentialExposed = errors.New("credentials may not be serialized")
)

// Credential is a salted bcrypt hash of a user's password.
//
// There is no accessor for the hash. The only way to produce one is
// NewCredential, the only way to use one is Verify, and the only way it
// leaves the process is through driver.Valuer when a repository persists it.
type Credential struct {
	hash []byte
}

// NewCredential hashes plaintext with the given bcrypt cost.
func NewCredential(plaintext string, cost int) (Credential, error) {
	if plaintext == "" {
		return Credential{}, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash password: %w", err)
	}
	return Credential{hash: hash}, nil
}

// Verify reports whether plaintext matches the credential. A zero or malformed
// credential never matches.
func (c Credential) Verify(plaintext string) bool {
	if len(c.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(c.hash, []byte(plaintext)) == nil
}

// IsZero reports whether the credential holds no hash.
func (c Credential) IsZero() bool {
	return len(c.hash) == 0
}

func (c Credential) String() string   { return redacted }
func (c Credential) GoString() string { return redacted }

func (c Credential) MarshalJSON() ([]byte, error) { return nil, ErrCredentialExposed }
func (c Credential) MarshalText() ([]byte, error) { return nil, ErrCredentialExposed }

// Value implements driver.Valuer.
func (c Credential) Value() (driver.Value, error) {
	if len(c.hash) == 0 {
		return nil, nil
	}
	return string(c.hash), nil
}

// Scan implements sql.Scanner.
func (c *Credential) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		c.hash = nil
	case string:
		c.hash = []byte(v)
	case []byte:
		c.hash = append([]byte(nil), v...)
	default:
		return fmt.Errorf("scan credential: unsupported type %T", src)
	}
	return nil
}
