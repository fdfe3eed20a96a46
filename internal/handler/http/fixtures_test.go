package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahek/todo-platform/internal/auth"
	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/event"
	redisrepo "github.com/zahek/todo-platform/internal/repository/redis"
	"github.com/zahek/todo-platform/internal/service"
	apperrors "github.com/zahek/todo-platform/pkg/errors"
	"github.com/zahek/todo-platform/pkg/health"
	"github.com/zahek/todo-platform/pkg/httputil"
	"github.com/zahek/todo-platform/pkg/logger"
	"github.com/zahek/todo-platform/pkg/middleware"
)

// --- In-memory directory and workspace repositories ---

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type memProjects struct {
	mu    sync.Mutex
	items []domain.Project
}

func (m *memProjects) Create(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]domain.Project{*p}, m.items...)
	return nil
}

func (m *memProjects) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]domain.Project, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []domain.Project
	for _, p := range m.items {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return page(owned, limit, offset), len(owned), nil
}

type memTasks struct {
	mu    sync.Mutex
	items []domain.Task
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]domain.Task{*t}, m.items...)
	return nil
}

func (m *memTasks) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var visible []domain.Task
	for _, t := range m.items {
		if t.CreatedBy != f.UserID && (t.AssigneeID == nil || *t.AssigneeID != f.UserID) {
			continue
		}
		if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		visible = append(visible, t)
	}
	return page(visible, f.Limit, f.Offset), len(visible), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// --- Server fixture ---

type testAPI struct {
	handler  http.Handler
	mr       *miniredis.Miniredis
	users    *memUsers
	sessions *service.SessionService
}

func newTestAPI(t *testing.T, mutate ...func(*RouterConfig)) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.Nop()
	users := newMemUsers()
	jwtManager := auth.NewJWTManager(auth.NewCodec(auth.WithIssuer("todo-api")),
		"test-access-secret-0123456789abcdef", "test-refresh-secret-0123456789abcdef",
		15*time.Minute, 30*24*time.Hour)

	sessions := service.NewSessionService(jwtManager, redisrepo.NewCredentialStore(client), users, event.Nop{}, log)
	userSvc := service.NewUserService(users, sessions, event.Nop{}, bcrypt.MinCost, log)
	workspace := service.NewWorkspaceService(&memProjects{}, &memTasks{})

	cfg := RouterConfig{
		ServiceName: "todo-api-test",
		CORS:        middleware.DefaultCORSConfig(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	return &testAPI{
		handler:  NewRouter(ctx, cfg, userSvc, sessions, workspace, health.NewHandler(), log),
		mr:       mr,
		users:    users,
		sessions: sessions,
	}
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withRefreshCookie(value string) requestOption {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: refreshCookieName, Value: value}) }
}

func (a *testAPI) do(t *testing.T, method, path, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login registers email/password and logs in, returning the access token
// and the refresh cookie value.
func (a *testAPI) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out AccessTokenResponse
	decodeData(t, rec, &out)
	cookie := responseCookie(rec, refreshCookieName)
	require.NotNil(t, cookie)
	return out.AccessToken, cookie.Value
}
