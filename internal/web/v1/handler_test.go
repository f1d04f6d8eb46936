package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/recipe-service/config"
	database "github.com/duynhne/recipe-service/internal/core"
	"github.com/duynhne/recipe-service/internal/core/domain"
	"github.com/duynhne/recipe-service/internal/core/repository"
	logicv1 "github.com/duynhne/recipe-service/internal/logic/v1"
)

var validInstructions = strings.Repeat("Stir slowly. ", 5)

type testApp struct {
	srv *httptest.Server
	db  *database.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(context.Background(), config.Database{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repository.NewUserRepository(db.DB)
	recipes := repository.NewRecipeRepository(db.DB)
	h := NewHandler(
		logicv1.NewAuthService(users, recipes, bcrypt.MinCost),
		logicv1.NewRecipeService(users, recipes),
	)

	store := cookie.NewStore([]byte("test-secret"))
	store.Options(sessions.Options{Path: "/", HttpOnly: true})

	r := gin.New()
	r.Use(gin.CustomRecovery(RecoveryHandler))
	r.Use(sessions.Sessions("test_session", store))
	h.RegisterRoutes(r.Group(""))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, db: db}
}

// client returns an HTTP client with its own cookie jar, i.e. its own session.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) do(t *testing.T, c *http.Client, method, path, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func (a *testApp) signup(t *testing.T, c *http.Client, username string) int {
	t.Helper()
	status, body := a.do(t, c, http.MethodPost, "/signup", `{"username":"`+username+`","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, status, body)

	var user UserResponse
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	return user.ID
}

func (a *testApp) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestSignup_StartsSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	status, body := app.do(t, c, http.MethodPost, "/signup", `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, status)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "alice", got["username"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "password_hash")
	assert.NotContains(t, body, "secret123")
	assert.Equal(t, []any{}, got["recipes"])
	assert.Nil(t, got["image_url"])

	status, body = app.do(t, c, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}

func TestSignup_ProfileFields(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, app.client(t), http.MethodPost, "/signup",
		`{"username":"alice","password":"secret123","image_url":"http://img/a.png","bio":"Cooks."}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"username":"alice","image_url":"http://img/a.png","bio":"Cooks.","recipes":[]}`, body)
}

func TestSignup_EmptyBody(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{"", "{}", "null", "not json"} {
		status, got := app.do(t, app.client(t), http.MethodPost, "/signup", body)
		assert.Equal(t, http.StatusBadRequest, status, "body %q", body)
		assert.JSONEq(t, `{"error":"No details user provided"}`, got)
	}
	assert.Zero(t, app.count(t, "users"))
}

func TestSignup_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t), "alice")

	status, body := app.do(t, app.client(t), http.MethodPost, "/signup", `{"username":"alice","password":"other-password"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"error":"422: Username already exists"}`, body)
	assert.Equal(t, 1, app.count(t, "users"))
}

func TestSignup_MissingFields(t *testing.T) {
	app := newTestApp(t)

	tests := []string{
		`{"username":"alice"}`,
		`{"password":"secret123"}`,
		`{"username":"","password":"secret123"}`,
	}
	for _, body := range tests {
		c := app.client(t)
		status, got := app.do(t, c, http.MethodPost, "/signup", body)
		assert.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.JSONEq(t, `{"error":"422: Unprocessable Entity"}`, got)

		status, _ = app.do(t, c, http.MethodGet, "/check_session", "")
		assert.Equal(t, http.StatusUnauthorized, status, "failed signup must not start a session")
	}
	assert.Zero(t, app.count(t, "users"))
}

func TestSignup_WrongFieldTypes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "numeric username", body: `{"username":7,"password":"secret123"}`},
		{name: "numeric password", body: `{"username":"alice","password":123456}`},
		{name: "object password", body: `{"username":"alice","password":{"plain":"secret123"}}`},
		{name: "numeric bio", body: `{"username":"alice","password":"secret123","bio":42}`},
		{name: "list image url", body: `{"username":"alice","password":"secret123","image_url":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := app.client(t)
			status, body := app.do(t, c, http.MethodPost, "/signup", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.JSONEq(t, `{"error":"422: Unprocessable Entity"}`, body)

			status, _ = app.do(t, c, http.MethodGet, "/check_session", "")
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
	assert.Zero(t, app.count(t, "users"))
}

func TestSignup_NullProfileFields(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, app.client(t), http.MethodPost, "/signup",
		`{"username":"alice","password":"secret123","image_url":null,"bio":null}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"username":"alice","image_url":null,"bio":null,"recipes":[]}`, body)
}

func TestLogin_WrongFieldTypes(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t), "alice")

	tests := []struct {
		name string
		body string
	}{
		{name: "numeric username", body: `{"username":7,"password":"secret123"}`},
		{name: "numeric password", body: `{"username":"alice","password":123456}`},
		{name: "boolean password", body: `{"username":"alice","password":true}`},
		{name: "unknown field only", body: `{"bio":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := app.client(t)
			status, body := app.do(t, c, http.MethodPost, "/login", tt.body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.JSONEq(t, `{"error":"401: Unauthorized"}`, body)

			status, _ = app.do(t, c, http.MethodGet, "/check_session", "")
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	id := app.signup(t, app.client(t), "alice")

	c := app.client(t)
	status, body := app.do(t, c, http.MethodPost, "/login", `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusOK, status)

	var user UserResponse
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	assert.Equal(t, id, user.ID)
	assert.NotContains(t, body, "password")

	status, _ = app.do(t, c, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestLogin_UniformFailure(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, app.client(t), "alice")

	c := app.client(t)
	wrongStatus, wrongBody := app.do(t, c, http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	unknownStatus, unknownBody := app.do(t, c, http.MethodPost, "/login", `{"username":"nobody","password":"secret123"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.Equal(t, wrongBody, unknownBody)
	assert.JSONEq(t, `{"error":"401: Unauthorized"}`, wrongBody)

	status, _ := app.do(t, c, http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin_EmptyBody(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, app.client(t), http.MethodPost, "/login", "{}")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"No details user provided"}`, body)
}

func TestCheckSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	status, body := app.do(t, c, http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{}`, body)

	app.signup(t, c, "alice")

	firstStatus, first := app.do(t, c, http.MethodGet, "/check_session", "")
	secondStatus, second := app.do(t, c, http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusOK, firstStatus)
	assert.Equal(t, firstStatus, secondStatus)
	assert.JSONEq(t, first, second)
}

func TestCheckSession_UserDeleted(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "alice")

	_, err := app.db.Exec(`DELETE FROM users`)
	require.NoError(t, err)

	status, body := app.do(t, c, http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{}`, body)

	status, _ = app.do(t, c, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	status, body := app.do(t, c, http.MethodDelete, "/logout", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"401 Unauthorized"}`, body)

	app.signup(t, c, "alice")

	status, body = app.do(t, c, http.MethodDelete, "/logout", "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	status, _ = app.do(t, c, http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.do(t, c, http.MethodDelete, "/logout", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRecipes_RequireSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	status, body := app.do(t, c, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"401 Unauthorized"}`, body)

	status, _ = app.do(t, c, http.MethodPost, "/recipes", `{"title":"Soup","instructions":"`+validInstructions+`","minutes_to_complete":10}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, app.count(t, "recipes"))
}

func TestRecipes_CreateAndList(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	id := app.signup(t, c, "alice")

	status, body := app.do(t, c, http.MethodPost, "/recipes",
		`{"title":"Soup","instructions":"`+validInstructions+`","minutes_to_complete":20,"user_id":999}`)
	require.Equal(t, http.StatusCreated, status, body)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.NotContains(t, created, "id")
	assert.NotContains(t, created, "user_id")
	assert.Equal(t, "Soup", created["title"])
	assert.Equal(t, validInstructions, created["instructions"])
	assert.EqualValues(t, 20, created["minutes_to_complete"])

	owner, ok := created["user"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, id, owner["id"], "owner comes from the session")
	assert.Equal(t, "alice", owner["username"])
	assert.NotContains(t, owner, "recipes")

	status, body = app.do(t, c, http.MethodGet, "/recipes", "")
	require.Equal(t, http.StatusOK, status)
	var list []RecipeResponse
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Soup", list[0].Title)

	_, body = app.do(t, c, http.MethodGet, "/check_session", "")
	var user UserResponse
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	require.Len(t, user.Recipes, 1)
	assert.Equal(t, 20, user.Recipes[0].MinutesToComplete)
	assert.NotZero(t, user.Recipes[0].ID)
}

func TestRecipes_ListIsPerUser(t *testing.T) {
	app := newTestApp(t)
	alice := app.client(t)
	bob := app.client(t)
	app.signup(t, alice, "alice")
	app.signup(t, bob, "bob")

	status, _ := app.do(t, alice, http.MethodPost, "/recipes",
		`{"title":"Soup","instructions":"`+validInstructions+`","minutes_to_complete":20}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := app.do(t, bob, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}

func TestRecipes_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "instructions one short",
			body: `{"title":"Soup","instructions":"` + strings.Repeat("a", 49) + `","minutes_to_complete":10}`,
			want: []string{domain.MsgInstructionsTooShort},
		},
		{
			name: "instructions padded with spaces",
			body: `{"title":"Soup","instructions":"   ` + strings.Repeat("a", 49) + `   ","minutes_to_complete":10}`,
			want: []string{domain.MsgInstructionsTooShort},
		},
		{
			name: "empty title",
			body: `{"title":"","instructions":"` + validInstructions + `","minutes_to_complete":10}`,
			want: []string{domain.MsgTitleRequired},
		},
		{
			name: "title wrong type",
			body: `{"title":7,"instructions":"` + validInstructions + `","minutes_to_complete":10}`,
			want: []string{domain.MsgTitleRequired},
		},
		{
			name: "minutes zero",
			body: `{"title":"Soup","instructions":"` + validInstructions + `","minutes_to_complete":0}`,
			want: []string{domain.MsgMinutesNotPositive},
		},
		{
			name: "minutes as string",
			body: `{"title":"Soup","instructions":"` + validInstructions + `","minutes_to_complete":"10"}`,
			want: []string{domain.MsgMinutesNotPositive},
		},
		{
			name: "minutes fractional",
			body: `{"title":"Soup","instructions":"` + validInstructions + `","minutes_to_complete":1.5}`,
			want: []string{domain.MsgMinutesNotPositive},
		},
		{
			name: "minutes beyond column range",
			body: `{"title":"Soup","instructions":"` + validInstructions + `","minutes_to_complete":4294967297}`,
			want: []string{domain.MsgMinutesNotPositive},
		},
		{
			name: "every field invalid",
			body: `{"title":"","instructions":"short","minutes_to_complete":-3}`,
			want: []string{domain.MsgTitleRequired, domain.MsgInstructionsTooShort, domain.MsgMinutesNotPositive},
		},
	}

	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "alice")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := app.do(t, c, http.MethodPost, "/recipes", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)

			var got struct {
				Errors []string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.want, got.Errors)
		})
	}
	assert.Zero(t, app.count(t, "recipes"))
}

func TestRecipes_EmptyBody(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "alice")

	status, body := app.do(t, c, http.MethodPost, "/recipes", "{}")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"errors":["No recipe details provided."]}`, body)
}

func TestRecipes_StoreFailureIsGeneric(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	app.signup(t, c, "alice")

	require.NoError(t, app.db.Close())

	status, body := app.do(t, c, http.MethodPost, "/recipes",
		`{"title":"Soup","instructions":"`+validInstructions+`","minutes_to_complete":20}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"error":"422: Unprocessable Entity"}`, body)
	assert.NotContains(t, body, "closed")
}
