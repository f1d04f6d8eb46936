package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	database "github.com/duynhne/recipe-service/internal/core"
	"github.com/duynhne/recipe-service/internal/core/domain"
)

var _ domain.UserRepository = (*SQLUserRepository)(nil)

// SQLUserRepository implements domain.UserRepository on database/sql.
// Queries use $n placeholders, understood by both pgx and SQLite.
type SQLUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLUserRepository.
func NewUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Create inserts a new user and returns the stored record.
func (r *SQLUserRepository) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	query := `INSERT INTO users (username, password_hash, image_url, bio) VALUES ($1, $2, $3, $4) RETURNING id`

	created := &domain.User{
		Username:   user.Username,
		Credential: user.Credential,
		ImageURL:   user.ImageURL,
		Bio:        user.Bio,
	}

	hash, err := user.Credential.Value()
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}

	err = database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		return tx.QueryRowContext(ctx, query, user.Username, hash, user.ImageURL, user.Bio).Scan(&created.ID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user %q: %w", user.Username, domain.ErrUsernameTaken)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return created, nil
}

// GetByID returns the user with the given ID.
// Returns (nil, nil) when no user is found.
func (r *SQLUserRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT id, username, password_hash, image_url, bio FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByUsername returns the user matching the given username.
// Returns (nil, nil) when no user is found.
func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, image_url, bio FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *SQLUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Credential, &user.ImageURL, &user.Bio,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}
