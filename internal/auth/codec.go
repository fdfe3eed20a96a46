package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the claim set carried by both token kinds. Email is only set
// on access tokens.
type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens. It holds no secrets.
type Codec struct {
	issuer string
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// WithIssuer sets the iss claim written and required by the codec.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// NewCodec creates a codec using the wall clock.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode stamps claims with iat=now, exp=now+lifetime, a random jti and the
// configured issuer, then signs them with secret. exp is carried in whole
// seconds and is rounded up, so a token never expires before now+lifetime.
func (c *Codec) Encode(claims Claims, secret []byte, lifetime time.Duration) (string, error) {
	now := c.now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(lifetime))),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", ErrInternalFailure, err)
	}
	return signed, nil
}

// Decode verifies token against secret. A bad signature, an algorithm other
// than HS256 or an unparsable token is ErrMalformedCredential; a correctly
// signed token whose exp has passed is ErrExpiredCredential. exp itself is
// still valid.
func (c *Codec) Decode(token string, secret []byte) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		// The parser rejects now == exp; one nanosecond on a whole-second
		// exp turns that into now > exp and grants nothing more.
		jwt.WithLeeway(time.Nanosecond),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrExpiredCredential, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformedCredential, err)
	}
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}
