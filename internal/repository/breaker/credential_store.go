package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/zahek/todo-platform/internal/repository"
)

// Config holds configuration for the credential store breaker.
type Config struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. 0 never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests have been observed.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns defaults suited to a local Redis.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      10 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrOpen is returned without touching the store while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

var breakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(breakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

type lookup struct {
	userID string
	found  bool
}

// CredentialStore wraps a repository.CredentialStore so a failing backend
// is rejected fast instead of stalling every request. Calls are never
// retried.
type CredentialStore struct {
	next    repository.CredentialStore
	breaker *gobreaker.CircuitBreaker[lookup]
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore wraps next with a circuit breaker.
func NewCredentialStore(next repository.CredentialStore, cfg Config, logger *slog.Logger) *CredentialStore {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		// A caller giving up is not a store fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &CredentialStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[lookup](settings),
	}
}

func (s *CredentialStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.breaker.Execute(func() (lookup, error) {
		return lookup{}, s.next.Put(ctx, token, userID, ttl)
	})
	return err
}

func (s *CredentialStore) Get(ctx context.Context, token string) (string, bool, error) {
	res, err := s.breaker.Execute(func() (lookup, error) {
		userID, found, err := s.next.Get(ctx, token)
		return lookup{userID: userID, found: found}, err
	})
	if err != nil {
		return "", false, err
	}
	return res.userID, res.found, nil
}

func (s *CredentialStore) Delete(ctx context.Context, token string) error {
	_, err := s.breaker.Execute(func() (lookup, error) {
		return lookup{}, s.next.Delete(ctx, token)
	})
	return err
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// State returns the current breaker state.
func (s *CredentialStore) State() gobreaker.State {
	return s.breaker.State()
}
