package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/token"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const testOrigin = "http://localhost:19006"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	return newTestAPIWithRedis(t, nil)
}

func newTestAPIWithRedis(t *testing.T, client goredis.UniversalClient) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.OpenSQLite(":memory:", logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tokens, err := token.NewManager("router-test-secret", time.Hour)
	require.NoError(t, err)

	router := NewRouter(Options{
		Users:         repository.NewGormUserRepository(db),
		Tasks:         repository.NewGormTaskRepository(db),
		Tokens:        tokens,
		Hasher:        utils.NewPasswordHasher(bcrypt.MinCost),
		Redis:         client,
		StatsCacheTTL: time.Minute,
		UserCacheTTL:  time.Minute,
		CORSOrigins:   []string{testOrigin},
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) decode(w *httptest.ResponseRecorder, v any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *apiClient) message(w *httptest.ResponseRecorder) string {
	a.t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	a.decode(w, &body)
	return body.Message
}

func (a *apiClient) signup(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Message string          `json:"message"`
		Token   string          `json:"token"`
		User    models.AuthUser `json:"user"`
	}
	a.decode(w, &resp)
	require.Equal(a.t, "User created successfully", resp.Message)
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func (a *apiClient) createTask(bearer string, body map[string]any) models.Task {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/tasks", bearer, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var task models.Task
	a.decode(w, &task)
	return task
}

func TestRootAndHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var root map[string]string
	api.decode(w, &root)
	assert.Equal(t, map[string]string{"message": "Task Manager API is running!", "version": "1.0.0", "status": "active"}, root)

	w = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", api.message(w))
}

func TestSignupLoginVerify(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@b.co", "password": "12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at least 6 characters long", api.message(w))

	w = api.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "foo@bar", "password": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid email address", api.message(w))

	api.signup("a@b.co", "123456")

	w = api.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "A@B.CO", "password": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists with this email", api.message(w))

	unknown := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@b.co", "password": "123456"})
	wrong := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "1234567"})
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Invalid credentials", api.message(unknown))

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "A@b.co", "password": "123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login models.AuthResult
	api.decode(w, &login)
	assert.Equal(t, "a@b.co", login.User.Email)

	w = api.do(http.MethodGet, "/api/auth/verify", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		User models.AuthUser `json:"user"`
	}
	api.decode(w, &verified)
	assert.Equal(t, login.User, verified.User)

	w = api.do(http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", api.message(w))

	w = api.do(http.MethodGet, "/api/auth/verify", "tampered."+login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", api.message(w))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", api.message(w))

	w = api.do(http.MethodGet, "/api/users/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", api.message(w))
}

func TestBuyMilkToggle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com", "secret")

	task := api.createTask(alice, map[string]any{"title": "Buy milk"})
	assert.Equal(t, models.StatusPending, task.Status)

	w := api.do(http.MethodPatch, "/api/tasks/"+task.ID+"/toggle", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &task)
	assert.Equal(t, models.StatusCompleted, task.Status)

	w = api.do(http.MethodPatch, "/api/tasks/"+task.ID+"/toggle", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &task)
	assert.Equal(t, models.StatusPending, task.Status)

	w = api.do(http.MethodPut, "/api/tasks/"+task.ID, alice, map[string]any{"status": "In Progress"})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPatch, "/api/tasks/"+task.ID+"/toggle", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &task)
	assert.Equal(t, models.StatusCompleted, task.Status)
}

func TestTasksAreIsolatedBetweenUsers(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com", "secret")
	bob := api.signup("bob@example.com", "secret")

	task := api.createTask(alice, map[string]any{"title": "Alice only"})

	for _, req := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/tasks/" + task.ID, nil},
		{http.MethodPut, "/api/tasks/" + task.ID, map[string]any{"title": "Bob was here"}},
		{http.MethodPatch, "/api/tasks/" + task.ID + "/toggle", nil},
		{http.MethodDelete, "/api/tasks/" + task.ID, nil},
	} {
		w := api.do(req.method, req.path, bob, req.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", req.method, req.path)
		assert.Equal(t, "Task not found", api.message(w))
	}

	w := api.do(http.MethodGet, "/api/tasks", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = api.do(http.MethodGet, "/api/tasks/"+task.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Task
	api.decode(w, &got)
	assert.Equal(t, "Alice only", got.Title)
	assert.Equal(t, models.StatusPending, got.Status)

	w = api.do(http.MethodDelete, "/api/tasks/"+task.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted successfully", api.message(w))
	w = api.do(http.MethodGet, "/api/tasks/"+task.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartialUpdatePreservesOmittedFields(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com", "secret")
	task := api.createTask(alice, map[string]any{
		"title": "Report", "description": "Q1 numbers", "priority": "high", "dueDate": "2024-04-01",
	})

	w := api.do(http.MethodPut, "/api/tasks/"+task.ID, alice, map[string]any{"status": "In Progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Task
	api.decode(w, &updated)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Report", updated.Title)
	assert.Equal(t, "Q1 numbers", updated.Description)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)

	w = api.do(http.MethodPut, "/api/tasks/"+task.ID, alice, map[string]any{"dueDate": nil})
	require.Equal(t, http.StatusOK, w.Code)
	updated = models.Task{}
	api.decode(w, &updated)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Q1 numbers", updated.Description)

	w = api.do(http.MethodPut, "/api/tasks/"+task.ID, alice, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", api.message(w))

	w = api.do(http.MethodPut, "/api/tasks/"+task.ID, alice, map[string]any{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", api.message(w))
}

func TestListOrderingAndStats(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com", "secret")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		api.createTask(alice, map[string]any{"title": title})
		// createdAt has to differ for the ordering to be observable.
		time.Sleep(5 * time.Millisecond)
	}
	w := api.do(http.MethodPost, "/api/tasks", alice, map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", api.message(w))

	list := func(query string) []string {
		w := api.do(http.MethodGet, "/api/tasks"+query, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tasks []models.Task
		api.decode(w, &tasks)
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}
	assert.Equal(t, []string{"third", "second", "first"}, list(""))
	assert.Equal(t, []string{"first", "second", "third"}, list("?sortBy=createdAt&order=asc"))
	assert.Equal(t, []string{"third", "second", "first"}, list("?sortBy=nonsense&order=sideways"))

	w = api.do(http.MethodGet, "/api/tasks/stats", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.TaskStats
	api.decode(w, &stats)
	assert.Equal(t, models.TaskStats{Total: 3, Pending: 3}, stats)

	var firstID string
	w = api.do(http.MethodGet, "/api/tasks?order=asc", alice, nil)
	var tasks []models.Task
	api.decode(w, &tasks)
	firstID = tasks[0].ID
	w = api.do(http.MethodPatch, "/api/tasks/"+firstID+"/toggle", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/tasks/stats", alice, nil)
	api.decode(w, &stats)
	assert.Equal(t, models.TaskStats{Total: 3, Pending: 2, Completed: 1}, stats)
	assert.Equal(t, stats.Total, stats.Pending+stats.InProgress+stats.Completed)
	assert.Equal(t, []string{"first"}, list("?status=Completed"))
}

func TestProfileAndPassword(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com", "secret")
	api.signup("bob@example.com", "secret")

	w := api.do(http.MethodGet, "/api/users/profile", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	var profile models.UserView
	api.decode(w, &profile)
	assert.Equal(t, "alice@example.com", profile.Email)

	w = api.do(http.MethodPut, "/api/users/profile", alice, map[string]string{"email": "BOB@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already taken", api.message(w))

	w = api.do(http.MethodPut, "/api/users/profile", alice, map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &profile)
	assert.Equal(t, "alice@example.com", profile.Email)

	w = api.do(http.MethodPut, "/api/users/profile", alice, map[string]string{"email": "Alice@New.example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &profile)
	assert.Equal(t, "alice@new.example.com", profile.Email)

	w = api.do(http.MethodPut, "/api/users/change-password", alice, map[string]string{"currentPassword": "nope!!", "newPassword": "another"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", api.message(w))

	w = api.do(http.MethodPut, "/api/users/change-password", alice, map[string]string{"currentPassword": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password and new password are required", api.message(w))

	w = api.do(http.MethodPut, "/api/users/change-password", alice, map[string]string{"currentPassword": "secret", "newPassword": "another"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password updated successfully", api.message(w))

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@new.example.com", "password": "another"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@new.example.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCachedReadsFollowWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	api := newTestAPIWithRedis(t, client)
	alice := api.signup("alice@example.com", "secret")

	stats := func() models.TaskStats {
		w := api.do(http.MethodGet, "/api/tasks/stats", alice, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var s models.TaskStats
		api.decode(w, &s)
		return s
	}
	profileEmail := func() string {
		w := api.do(http.MethodGet, "/api/users/profile", alice, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var profile models.UserView
		api.decode(w, &profile)
		return profile.Email
	}

	assert.Equal(t, models.TaskStats{}, stats())
	task := api.createTask(alice, map[string]any{"title": "Buy milk"})
	assert.Equal(t, models.TaskStats{Total: 1, Pending: 1}, stats())

	w := api.do(http.MethodPatch, "/api/tasks/"+task.ID+"/toggle", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TaskStats{Total: 1, Completed: 1}, stats())

	assert.Equal(t, "alice@example.com", profileEmail())
	w = api.do(http.MethodPut, "/api/users/profile", alice, map[string]string{"email": "alice@new.example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice@new.example.com", profileEmail())

	n, err := client.XLen(context.Background(), "task.events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
