package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/recipe-service/internal/core/domain"
	pkgzerolog "github.com/duynhne/recipe-service/internal/logger/zerolog"
	logicv1 "github.com/duynhne/recipe-service/internal/logic/v1"
	"github.com/duynhne/recipe-service/middleware"
)

// Endpoint identifiers used by the session gate.
const (
	EndpointSignup       = "signup"
	EndpointCheckSession = "check_session"
	EndpointLogin        = "login"
	EndpointLogout       = "logout"
	EndpointRecipes      = "recipes"
)

// OpenEndpoints are reachable without a session.
var OpenEndpoints = []string{EndpointSignup, EndpointLogin, EndpointCheckSession}

var errEmptyBody = errors.New("empty request body")

// Handler groups HTTP handlers for the recipe API v1.
// Dependencies are injected via the constructor.
type Handler struct {
	auth    *logicv1.AuthService
	recipes *logicv1.RecipeService
}

// NewHandler creates a new Handler.
func NewHandler(auth *logicv1.AuthService, recipes *logicv1.RecipeService) *Handler {
	return &Handler{auth: auth, recipes: recipes}
}

type route struct {
	endpoint string
	method   string
	path     string
	handle   gin.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		{EndpointSignup, http.MethodPost, "/signup", h.Signup},
		{EndpointCheckSession, http.MethodGet, "/check_session", h.CheckSession},
		{EndpointLogin, http.MethodPost, "/login", h.Login},
		{EndpointLogout, http.MethodDelete, "/logout", h.Logout},
		{EndpointRecipes, http.MethodGet, "/recipes", h.ListRecipes},
		{EndpointRecipes, http.MethodPost, "/recipes", h.CreateRecipe},
	}
}

// RegisterRoutes installs error translation and the session gate on rg and
// registers all v1 routes. rg must already carry the sessions middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	routes := h.routes()

	endpoints := make(map[string]string, len(routes))
	for _, rt := range routes {
		endpoints[path.Join(rg.BasePath(), rt.path)] = rt.endpoint
	}

	rg.Use(ErrorTranslator(), middleware.SessionGate(endpoints, OpenEndpoints...))

	for _, rt := range routes {
		rg.Handle(rt.method, rt.path, rt.handle)
	}
}

// Signup handles POST /signup.
func (h *Handler) Signup(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var body signupBody
	if err := bindBody(c, &body); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid signup request")
		middleware.RecordAuthEvent("signup", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No details user provided"})
		return
	}

	req, ok := body.request()
	if !ok {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Msg("Signup rejected: profile fields must be strings")
		middleware.RecordAuthEvent("signup", "failure")
		unprocessable(c)
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	profile, err := h.auth.Signup(ctx, req)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			logger.Info().Str("username", req.Username).Msg("Signup rejected: username taken")
			middleware.RecordAuthEvent("signup", "conflict")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "422: Username already exists"})
		default:
			logger.Error().Err(err).Str("username", req.Username).Msg("Signup failed")
			middleware.RecordAuthEvent("signup", "failure")
			unprocessable(c)
		}
		return
	}

	if err := middleware.SetSessionUser(c, profile.User.ID); err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		return
	}

	middleware.RecordAuthEvent("signup", "success")
	logger.Info().Int("user_id", profile.User.ID).Msg("Signup successful")
	c.JSON(http.StatusCreated, newUserResponse(profile))
}

// CheckSession handles GET /check_session.
func (h *Handler) CheckSession(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	profile, err := h.auth.CurrentUser(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		switch {
		case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{})
		default:
			span.RecordError(err)
			logger.Error().Err(err).Msg("Session check failed")
			unprocessable(c)
		}
		return
	}

	c.JSON(http.StatusOK, newUserResponse(profile))
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var body loginBody
	if err := bindBody(c, &body); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn().Err(err).Msg("Invalid login request")
		middleware.RecordAuthEvent("login", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No details user provided"})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	profile, err := h.auth.Login(ctx, body.request())
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials), errors.Is(err, logicv1.ErrUserNotFound):
			// Same body for both: don't reveal whether the user exists.
			logger.Info().Msg("Login rejected")
			middleware.RecordAuthEvent("login", "failure")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "401: Unauthorized"})
		default:
			logger.Error().Err(err).Msg("Login failed")
			middleware.RecordAuthEvent("login", "error")
			unprocessable(c)
		}
		return
	}

	if err := middleware.SetSessionUser(c, profile.User.ID); err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		return
	}

	middleware.RecordAuthEvent("login", "success")
	logger.Info().Int("user_id", profile.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, newUserResponse(profile))
}

// Logout handles DELETE /logout.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()

	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No session found."})
		return
	}

	if err := middleware.ClearSessionUser(c); err != nil {
		span.RecordError(err)
		_ = c.Error(err)
		return
	}

	middleware.RecordAuthEvent("logout", "success")
	pkgzerolog.FromContext(ctx).Info().Int("user_id", caller.UserID).Msg("Logout successful")
	c.Status(http.StatusNoContent)
}

// signupBody and loginBody decode untyped so that a wrongly typed field fails
// signup or login instead of reading as a missing body.
type signupBody struct {
	Username any `json:"username"`
	Password any `json:"password"`
	ImageURL any `json:"image_url"`
	Bio      any `json:"bio"`
}

// request coerces credentials to strings. Profile fields must be strings or
// null; ok is false otherwise.
func (b signupBody) request() (req domain.SignupRequest, ok bool) {
	req = domain.SignupRequest{
		Username: asString(b.Username),
		Password: asString(b.Password),
	}
	if req.ImageURL, ok = optionalString(b.ImageURL); !ok {
		return domain.SignupRequest{}, false
	}
	if req.Bio, ok = optionalString(b.Bio); !ok {
		return domain.SignupRequest{}, false
	}
	return req, true
}

type loginBody struct {
	Username any `json:"username"`
	Password any `json:"password"`
}

func (b loginBody) request() domain.LoginRequest {
	return domain.LoginRequest{
		Username: asString(b.Username),
		Password: asString(b.Password),
	}
}

// asString returns v if it is a string and "" otherwise.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

func optionalString(v any) (*string, bool) {
	switch s := v.(type) {
	case nil:
		return nil, true
	case string:
		return &s, true
	default:
		return nil, false
	}
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
}

// bindBody decodes a non-empty JSON object into dst. Numbers are kept as json.Number.
func bindBody(c *gin.Context, dst any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

func unprocessable(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "422: Unprocessable Entity"})
}
