package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zahek/todo-platform/pkg/database"
)

const keyPrefix = "refresh:"

// CredentialStore implements repository.CredentialStore on Redis. Entries
// are keyed by the SHA-256 of the refresh token so raw tokens never reach
// the server.
type CredentialStore struct {
	client redis.UniversalClient
}

// NewCredentialStore creates a new Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient) *CredentialStore {
	return &CredentialStore{client: client}
}

// Key returns the Redis key for token.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Put stores userID under the token's key with the given TTL.
func (s *CredentialStore) Put(ctx context.Context, token, userID string, ttl time.Duration) (err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "PutCredential", "SET refresh:<hash> EX")
	defer func() { end(err) }()

	if ttl <= 0 {
		return fmt.Errorf("redis set credential: non-positive ttl %s", ttl)
	}
	if err := s.client.Set(ctx, Key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

// Get returns the owning user ID, or found=false if the entry is absent or
// expired.
func (s *CredentialStore) Get(ctx context.Context, token string) (userID string, found bool, err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "GetCredential", "GET refresh:<hash>")
	defer func() { end(err) }()

	userID, err = s.client.Get(ctx, Key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get credential: %w", err)
	}
	return userID, true, nil
}

// Delete removes the token's entry.
func (s *CredentialStore) Delete(ctx context.Context, token string) (err error) {
	ctx, end := database.TraceCommand(ctx, database.SystemRedis, "DeleteCredential", "DEL refresh:<hash>")
	defer func() { end(err) }()

	if err := s.client.Del(ctx, Key(token)).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
