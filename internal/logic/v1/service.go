package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/recipe-service/internal/core/domain"
	"github.com/duynhne/recipe-service/middleware"
)

// AuthService implements signup, login and session resolution.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users   domain.UserRepository
	recipes domain.RecipeRepository
	cost    int

	dummyOnce sync.Once
	dummy     domain.Credential
}

// NewAuthService creates a new AuthService. cost is the bcrypt cost for new credentials.
func NewAuthService(users domain.UserRepository, recipes domain.RecipeRepository, cost int) *AuthService {
	return &AuthService{
		users:   users,
		recipes: recipes,
		cost:    cost,
	}
}

// Signup hashes the password and persists a new user.
func (s *AuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserProfile, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.signup", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	if req.Username == "" {
		span.SetAttributes(attribute.Bool("signup.success", false))
		return nil, fmt.Errorf("username is required: %w", ErrInvalidInput)
	}

	cred, err := domain.NewCredential(req.Password, s.cost)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrEmptyPassword) {
			return nil, fmt.Errorf("create credential: %w", ErrInvalidInput)
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}

	user, err := s.users.Create(ctx, domain.NewUser{
		Username:   req.Username,
		Credential: cred,
		ImageURL:   req.ImageURL,
		Bio:        req.Bio,
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("signup.success", false))
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUserExists)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Bool("signup.success", true),
	)
	span.AddEvent("user.registered")

	return &domain.UserProfile{User: *user, Recipes: []domain.Recipe{}}, nil
}

// Login verifies the username/password pair. Unknown users and wrong
// passwords both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.UserProfile, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Username, err)
	}
	if user == nil {
		s.dummyCredential().Verify(req.Password)
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrUserNotFound)
	}

	if !user.Credential.Verify(req.Password) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return profile, nil
}

// CurrentUser re-resolves the session's user from the store; a session may outlive its user.
func (s *AuthService) CurrentUser(ctx context.Context, userID int) (*domain.UserProfile, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.current_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if userID == 0 {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, fmt.Errorf("lookup user %d: %w", userID, ErrUserNotFound)
	}

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)

	return s.profile(ctx, user)
}

func (s *AuthService) profile(ctx context.Context, user *domain.User) (*domain.UserProfile, error) {
	recipes, err := s.recipes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipes of user %d: %w", user.ID, err)
	}
	return &domain.UserProfile{User: *user, Recipes: recipes}, nil
}

// dummyCredential is compared against when the user does not exist, so that
// the response time does not reveal which usernames are registered.
func (s *AuthService) dummyCredential() domain.Credential {
	s.dummyOnce.Do(func() {
		s.dummy, _ = domain.NewCredential("recipe-service-dummy-password", s.cost)
	})
	return s.dummy
}
