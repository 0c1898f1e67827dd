package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/api/http/handlers"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/config"
	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/observability"
	"github.com/spec-kit/todo-service/internal/persistence"
	"github.com/spec-kit/todo-service/internal/repository"
	"github.com/spec-kit/todo-service/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type errEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []any  `json:"details"`
	} `json:"error"`
}

// fakeTodoRepo is an in-memory TodoRepository that counts reads so tests can
// assert that denied requests never reach the store.
type fakeTodoRepo struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]domain.Todo
	reads  int
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[int64]domain.Todo)}
}

func (r *fakeTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	todo.ID = r.nextID
	todo.CreatedAt = time.Now().UTC()
	todo.UpdatedAt = todo.CreatedAt
	r.todos[todo.ID] = *todo
	return nil
}

func (r *fakeTodoRepo) Update(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return pgx.ErrNoRows
	}
	todo.UpdatedAt = time.Now().UTC()
	r.todos[todo.ID] = *todo
	return nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, userID, todoID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[todoID]
	if !ok || existing.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.todos, todoID)
	return nil
}

func (r *fakeTodoRepo) GetByID(_ context.Context, userID, todoID int64) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	existing, ok := r.todos[todoID]
	if !ok || existing.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	todo := existing
	return &todo, nil
}

func (r *fakeTodoRepo) ListByUser(_ context.Context, userID int64, _ repository.TodoFilter) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	var result []domain.Todo
	for _, todo := range r.todos {
		if todo.UserID == userID {
			result = append(result, todo)
		}
	}
	return result, nil
}

func (r *fakeTodoRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Email] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u := user
	return &u, nil
}

func newTestApp(t *testing.T, todos repository.TodoRepository, users repository.UserRepository) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:      testSecret,
		AccessTokenTTL: time.Hour,
		BcryptCost:     4,
	}, users)
	todoService := service.NewTodoService(todos, nil, 0, nil, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, config.CORSConfig{}, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("todo-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService),
		Todos:          handlers.NewTodosHandler(todoService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID int64) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"user_id": userID,
		"email":   "user@example.com",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func requireErrorBody(t *testing.T, raw []byte, code, message string) {
	t.Helper()
	var envelope errEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Equal(t, code, envelope.Error.Code)
	require.Equal(t, message, envelope.Error.Message)
	require.NotNil(t, envelope.Error.Details)
	require.Empty(t, envelope.Error.Details)
	require.Contains(t, string(raw), `"details":[]`)
}

func TestPipelineValidTokenProceeds(t *testing.T) {
	repo := newFakeTodoRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Todo{
		UserID:   123,
		Title:    "write report",
		Priority: domain.TodoPriorityMedium,
	}))
	app := newTestApp(t, repo, newFakeUserRepo())

	token := signToken(t, testSecret, validClaims(123))
	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Bearer "+token, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todos []map[string]any
	require.NoError(t, json.Unmarshal(raw, &todos))
	require.Len(t, todos, 1)
	require.Equal(t, "write report", todos[0]["title"])
	require.Equal(t, float64(123), todos[0]["user_id"])
}

func TestPipelineMissingHeader(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "", nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Missing authentication token")
}

func TestPipelineWrongScheme(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	token := signToken(t, testSecret, validClaims(123))
	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Token "+token, nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Invalid token format")
}

func TestPipelineMalformedToken(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Bearer not.a.validtoken", nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Invalid token format")
}

func TestPipelineExpiredToken(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	claims := validClaims(123)
	claims["exp"] = time.Now().Add(-time.Second).Unix()
	token := signToken(t, testSecret, claims)

	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Bearer "+token, nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Token expired")
}

func TestPipelineWrongSecret(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	token := signToken(t, "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", validClaims(123))
	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Bearer "+token, nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Invalid token signature")
}

func TestPipelineMissingUserIDClaim(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	now := time.Now()
	token := signToken(t, testSecret, jwt.MapClaims{
		"email": "user@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/123/todos", "Bearer "+token, nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Invalid token claims")
}

func TestPipelineForbiddenBeforeStore(t *testing.T) {
	repo := newFakeTodoRepo()
	app := newTestApp(t, repo, newFakeUserRepo())

	token := signToken(t, testSecret, validClaims(123))
	resp, raw := doRequest(t, app, http.MethodGet, "/api/users/456/todos", "Bearer "+token, nil)

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	requireErrorBody(t, raw, "FORBIDDEN", "You can only access your own resources")
	require.Zero(t, repo.readCount(), "denied request must not reach the store")
}

func TestPipelineOwnerSmugglingViaBodyIgnored(t *testing.T) {
	repo := newFakeTodoRepo()
	app := newTestApp(t, repo, newFakeUserRepo())

	token := signToken(t, testSecret, validClaims(123))
	body := map[string]any{"title": "sneaky", "user_id": 456}
	resp, raw := doRequest(t, app, http.MethodPost, "/api/users/123/todos", "Bearer "+token, body)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	require.Equal(t, float64(123), created["user_id"], "owner always comes from the path")
}

func TestPipelineCRUDFlow(t *testing.T) {
	repo := newFakeTodoRepo()
	app := newTestApp(t, repo, newFakeUserRepo())
	token := "Bearer " + signToken(t, testSecret, validClaims(123))

	resp, raw := doRequest(t, app, http.MethodPost, "/api/users/123/todos", token, map[string]any{
		"title":    "buy milk",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	todoID := int64(created["id"].(float64))
	require.Equal(t, "high", created["priority"])
	require.Equal(t, "no_due_date", created["due_date_status"])

	resp, raw = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/users/123/todos/%d", todoID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/users/123/todos/%d", todoID), token, map[string]any{
		"completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(raw, &updated))
	require.Equal(t, true, updated["completed"])

	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/123/todos/%d", todoID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/users/123/todos/%d", todoID), token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope errEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestPipelineUnknownRouteIsNotFound(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodGet, "/no/such/route", "", nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope errEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Equal(t, "NOT_FOUND", envelope.Error.Code)
	require.NotNil(t, envelope.Error.Details)
}

func TestPipelineWrongMethodIsNotServerError(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodDelete, "/auth/login", "", nil)

	require.Less(t, resp.StatusCode, http.StatusInternalServerError)
	var envelope errEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.NotEqual(t, "INTERNAL_SERVER_ERROR", envelope.Error.Code)
}

func TestPipelineMe(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &registered))

	resp, raw = doRequest(t, app, http.MethodGet, "/auth/me", "Bearer "+registered.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	require.NoError(t, json.Unmarshal(raw, &me))
	require.Equal(t, "Ada", me["name"])
	require.Equal(t, "ada@example.com", me["email"])

	resp, raw = doRequest(t, app, http.MethodGet, "/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Missing authentication token")
}

func TestPipelineRegisterLoginAndUseToken(t *testing.T) {
	app := newTestApp(t, newFakeTodoRepo(), newFakeUserRepo())

	resp, raw := doRequest(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered struct {
		User  struct{ ID int64 }
		Token string
	}
	require.NoError(t, json.Unmarshal(raw, &registered))
	require.NotEmpty(t, registered.Token)

	resp, raw = doRequest(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &logged))

	target := fmt.Sprintf("/api/users/%d/todos", registered.User.ID)
	resp, _ = doRequest(t, app, http.MethodPost, target, "Bearer "+logged.Token, map[string]any{
		"title": "first todo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = doRequest(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	requireErrorBody(t, raw, "UNAUTHORIZED", "Invalid credentials")
}
