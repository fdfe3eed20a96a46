package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zahek/todo-platform/internal/auth"
	"github.com/zahek/todo-platform/internal/domain"
	redisrepo "github.com/zahek/todo-platform/internal/repository/redis"
	"github.com/zahek/todo-platform/pkg/logger"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
	testAccessTTL     = 15 * time.Minute
	testRefreshTTL    = 30 * 24 * time.Hour
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Recording publisher ---

type recordingPublisher struct {
	mu         sync.Mutex
	registered []string
	issued     []string
	revoked    []string
	err        error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, user *domain.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, user.ID)
	return p.err
}

func (p *recordingPublisher) PublishSessionIssued(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued = append(p.issued, userID)
	return p.err
}

func (p *recordingPublisher) PublishSessionRevoked(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, userID)
	return p.err
}

// --- Clock ---

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- Fixture ---

type sessionFixture struct {
	svc    *SessionService
	users  *mockUserRepository
	events *recordingPublisher
	mr     *miniredis.Miniredis
	clock  *fakeClock
	jwt    *auth.JWTManager
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := newFakeClock()
	jwtManager := auth.NewJWTManager(
		auth.NewCodec(auth.WithClock(clock.Now), auth.WithIssuer("todo-api")),
		testAccessSecret, testRefreshSecret, testAccessTTL, testRefreshTTL,
	)

	users := &mockUserRepository{}
	events := &recordingPublisher{}

	return &sessionFixture{
		svc:    NewSessionService(jwtManager, redisrepo.NewCredentialStore(client), users, events, logger.Nop()),
		users:  users,
		events: events,
		mr:     mr,
		clock:  clock,
		jwt:    jwtManager,
	}
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:    "8a6e0804-2bd0-4672-b79d-d97027f9071a",
		Email: "a@x.com",
		Name:  "Ann",
	}
}

func issue(t *testing.T, f *sessionFixture, user *domain.User) *domain.TokenPair {
	t.Helper()
	pair, err := f.svc.Issue(context.Background(), user)
	require.NoError(t, err)
	return pair
}
