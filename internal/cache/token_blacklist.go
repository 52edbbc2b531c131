package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist tracks revoked bearer tokens until their natural expiry.
// Tokens are keyed by digest so raw credentials never land in Redis.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

// Revoke marks a token as revoked for the remainder of its lifetime.
// Without Redis revocation degrades to session deletion only.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if b.client == nil {
		return nil
	}
	if ttl <= 0 {
		// Already expired, nothing to track.
		return nil
	}
	if err := b.client.Set(ctx, b.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token has been explicitly revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b.client == nil {
		return false, nil
	}
	count, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}
