package auth

import (
	"fmt"
	"strings"
	"time"
)

// JWTManager mints and verifies the two token kinds, each with its own
// secret and lifetime.
type JWTManager struct {
	codec         *Codec
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTManager creates a manager. The secrets are expected to differ;
// config validation enforces it.
func NewJWTManager(codec *Codec, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		codec:         codec,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL is the access token lifetime.
func (m *JWTManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL is the refresh token lifetime, also used for the store entry
// and the cookie.
func (m *JWTManager) RefreshTTL() time.Duration { return m.refreshTTL }

// GenerateAccessToken signs {user_id, email} with the access secret.
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, error) {
	return m.codec.Encode(Claims{UserID: userID, Email: email, Kind: TokenKindAccess}, m.accessSecret, m.accessTTL)
}

// GenerateRefreshToken signs {user_id} with the refresh secret.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.codec.Encode(Claims{UserID: userID, Kind: TokenKindRefresh}, m.refreshSecret, m.refreshTTL)
}

// ValidateAccessToken decodes an access token.
func (m *JWTManager) ValidateAccessToken(token string) (*Claims, error) {
	return m.validate(token, m.accessSecret, TokenKindAccess)
}

// ValidateRefreshToken decodes a refresh token. It does not consult the
// credential store.
func (m *JWTManager) ValidateRefreshToken(token string) (*Claims, error) {
	return m.validate(token, m.refreshSecret, TokenKindRefresh)
}

func (m *JWTManager) validate(token string, secret []byte, kind TokenKind) (*Claims, error) {
	claims, err := m.codec.Decode(token, secret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrMalformedCredential, kind, claims.Kind)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrMalformedCredential)
	}
	return claims, nil
}

// ParseBearer extracts the token from an Authorization header value. An
// empty header is ErrUnauthenticated; anything other than exactly
// "Bearer <token>" (scheme case-insensitive) is ErrMalformedCredential.
func ParseBearer(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrUnauthenticated
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", fmt.Errorf("%w: authorization header is not a bearer token", ErrMalformedCredential)
	}
	return token, nil
}
