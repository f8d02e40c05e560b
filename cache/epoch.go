package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// epochKeyPrefix is the Redis key prefix for cached token epochs.
const epochKeyPrefix = "auth:epoch:"

func epochKey(userID uuid.UUID) string {
	return epochKeyPrefix + userID.String()
}

// GetEpoch returns the cached token epoch. ok is false on a cache miss.
func (c *Cache) GetEpoch(ctx context.Context, userID uuid.UUID) (epoch int, ok bool, err error) {
	raw, err := c.client.Get(ctx, epochKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get epoch: %w", err)
	}

	epoch, err = strconv.Atoi(raw)
	if err != nil {
		// Corrupted entry - treat as miss
		return 0, false, nil //nolint:nilerr
	}
	return epoch, true, nil
}

// FillEpoch caches the token epoch for ttl unless an entry already exists.
func (c *Cache) FillEpoch(ctx context.Context, userID uuid.UUID, epoch int, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, epochKey(userID), strconv.Itoa(epoch), ttl).Err(); err != nil {
		return fmt.Errorf("fill epoch: %w", err)
	}
	return nil
}

// SetEpoch caches the token epoch for ttl, replacing any entry.
func (c *Cache) SetEpoch(ctx context.Context, userID uuid.UUID, epoch int, ttl time.Duration) error {
	if err := c.client.Set(ctx, epochKey(userID), strconv.Itoa(epoch), ttl).Err(); err != nil {
		return fmt.Errorf("set epoch: %w", err)
	}
	return nil
}
