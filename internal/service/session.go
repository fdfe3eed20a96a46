package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zahek/todo-platform/internal/auth"
	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/event"
	"github.com/zahek/todo-platform/internal/repository"
	apperrors "github.com/zahek/todo-platform/pkg/errors"
)

// Operation names used in metrics and logs.
const (
	opIssue        = "issue"
	opRefresh      = "refresh"
	opRevoke       = "revoke"
	opAuthenticate = "authenticate"
)

// SessionService issues, refreshes, revokes and verifies session tokens.
// Refresh tokens are live only while the credential store holds an entry
// for them; access tokens are verified offline.
type SessionService struct {
	jwt    *auth.JWTManager
	store  repository.CredentialStore
	users  repository.UserRepository
	events event.Publisher
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(
	jwt *auth.JWTManager,
	store repository.CredentialStore,
	users repository.UserRepository,
	events event.Publisher,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		jwt:    jwt,
		store:  store,
		users:  users,
		events: events,
		logger: logger,
	}
}

// CookieMaxAge is the refresh token lifetime in whole seconds.
func (s *SessionService) CookieMaxAge() int {
	return int(s.jwt.RefreshTTL() / time.Second)
}

// Issue mints an access and a refresh token for user and records the
// refresh token in the store. No tokens are returned unless the store
// write succeeded.
func (s *SessionService) Issue(ctx context.Context, user *domain.User) (_ *domain.TokenPair, err error) {
	defer func() { observe(opIssue, err) }()

	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, refreshToken, user.ID, s.jwt.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("%w: store refresh token: %w", auth.ErrInternalFailure, err)
	}

	if err := s.events.PublishSessionIssued(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish session.issued event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token from a live refresh token. The refresh
// token itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (_ string, err error) {
	defer func() { observe(opRefresh, err) }()

	if refreshToken == "" {
		return "", auth.ErrUnauthenticated
	}

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	userID, found, err := s.store.Get(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: lookup refresh token: %w", auth.ErrInternalFailure, err)
	}
	if !found {
		return "", auth.ErrRevokedCredential
	}
	if userID != claims.UserID {
		return "", fmt.Errorf("%w: store entry belongs to another user", auth.ErrRevokedCredential)
	}

	// Re-read the user so the new access token carries the current email.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: user no longer exists", auth.ErrRevokedCredential)
		}
		return "", fmt.Errorf("%w: load user: %w", auth.ErrInternalFailure, err)
	}

	return s.jwt.GenerateAccessToken(user.ID, user.Email)
}

// Revoke deletes the refresh token's store entry. It never fails: an empty
// token is a no-op and store errors are logged. Access tokens already
// minted from this session stay valid until they expire.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		observe(opRevoke, nil)
		return
	}

	if err := s.store.Delete(ctx, refreshToken); err != nil {
		observe(opRevoke, fmt.Errorf("%w: %w", auth.ErrInternalFailure, err))
		s.logger.ErrorContext(ctx, "failed to revoke refresh token",
			slog.String("error", err.Error()),
		)
		return
	}
	observe(opRevoke, nil)

	// The event is only published for tokens that still decode; an expired
	// or forged value has no trustworthy owner.
	if claims, err := s.jwt.ValidateRefreshToken(refreshToken); err == nil {
		if err := s.events.PublishSessionRevoked(ctx, claims.UserID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish session.revoked event",
				slog.String("user_id", claims.UserID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Authenticate verifies the bearer token in an Authorization header value
// and returns its principal. It never consults the store.
func (s *SessionService) Authenticate(authorizationHeader string) (_ *domain.Principal, err error) {
	defer func() { observe(opAuthenticate, err) }()

	token, err := auth.ParseBearer(authorizationHeader)
	if err != nil {
		return nil, err
	}

	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}
