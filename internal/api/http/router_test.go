package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/api/http/handlers"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/observability"
	"github.com/spec-kit/report-service/internal/repository"
	"github.com/spec-kit/report-service/internal/service"
)

// memUserRepo is an in-process account store for end-to-end handler tests.
type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

// stubReportRepo satisfies the interface with empty results.
type stubReportRepo struct{}

func (stubReportRepo) Create(context.Context, *domain.Report) error { return nil }
func (stubReportRepo) Update(context.Context, *domain.Report) error { return nil }
func (stubReportRepo) GetByID(context.Context, int64) (*domain.Report, error) {
	return nil, pgx.ErrNoRows
}
func (stubReportRepo) ListByOwner(context.Context, int64) ([]domain.Report, error) {
	return nil, nil
}
func (stubReportRepo) ListAll(context.Context, int, int) ([]repository.ReportListItem, error) {
	return nil, nil
}
func (stubReportRepo) Delete(context.Context, int64) error { return nil }
func (stubReportRepo) CountByStatus(context.Context) (repository.StatusCounts, error) {
	return repository.StatusCounts{}, nil
}
func (stubReportRepo) CountByOwner(context.Context, int64) (int64, error) { return 0, nil }

type stubNotificationRepo struct{}

func (stubNotificationRepo) Create(context.Context, *domain.Notification) error { return nil }
func (stubNotificationRepo) ListByRecipient(context.Context, int64, int) ([]domain.Notification, error) {
	return nil, nil
}
func (stubNotificationRepo) MarkAllRead(context.Context, int64) error { return nil }
func (stubNotificationRepo) CountUnread(context.Context, int64) (int64, error) {
	return 0, nil
}

type stubAdminLogRepo struct{}

func (stubAdminLogRepo) Create(context.Context, *domain.AdminLog) error { return nil }
func (stubAdminLogRepo) ListRecent(context.Context, int) ([]domain.AdminLog, error) {
	return nil, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testEnv struct {
	app   *fiber.App
	users *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), time.Hour)

	authService := service.NewAuthService(users, sessions, 4)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:       stubReportRepo{},
		NotificationRepo: stubNotificationRepo{},
		AdminLogRepo:     stubAdminLogRepo{},
		UserRepo:         users,
	})
	notificationService := service.NewNotificationService(stubNotificationRepo{}, nil)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService, "session_token", time.Hour),
		Reports:        handlers.NewReportsHandler(reportService),
		AdminReports:   handlers.NewAdminReportsHandler(reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(sessions, users, "session_token"),
	})
	return &testEnv{app: app, users: users}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, cookie *http.Cookie) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp, env
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	return nil
}

func registerAndLogin(t *testing.T, env *testEnv, username, email string) *http.Cookie {
	t.Helper()

	resp, body := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"username":         username,
		"email":            email,
		"password":         "secret1",
		"confirm_password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)

	resp, body = env.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	return cookie
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/api/user_reports", "/api/user_info", "/api/stats", "/api/notifications"} {
		resp, body := env.do(t, http.MethodGet, target, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)
		assert.False(t, body.Success, target)
		assert.Equal(t, "UNAUTHENTICATED", body.Code, target)
		assert.Equal(t, "Please login first!", body.Message, target)
	}
}

func TestRegisterLoginAndIdentityEcho(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerAndLogin(t, env, "alice", "alice@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/user_info", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	registerAndLogin(t, env, "alice", "alice@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid email or password!", body.Message)
}

func TestAdminRoutesForbiddenForResidents(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerAndLogin(t, env, "alice", "alice@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/all_reports", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestAdminRouteAllowsAdmins(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerAndLogin(t, env, "root", "root@example.com")

	// Promote after login; the middleware re-reads the role each request.
	admin, err := env.users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	env.users.users[admin.ID].Role = domain.RoleAdmin

	resp, body := env.do(t, http.MethodGet, "/api/all_reports", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerAndLogin(t, env, "alice", "alice@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	resp, body = env.do(t, http.MethodGet, "/api/user_info", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", body.Code)
}

func TestRegistrationValidationSurfacesEnvelope(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, "Please fill in all required fields!", body.Message)
}
