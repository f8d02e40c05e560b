package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/errs"
)

// removedEpoch is cached for deleted users; no token carries it.
const removedEpoch = -1

// EpochSource reads a user's current token epoch from the system of record.
// It returns an error matching errs.ErrNotFound for unknown users.
type EpochSource interface {
	TokenEpoch(ctx context.Context, userID uuid.UUID) (int, error)
}

// EpochCache is an optional cache in front of EpochSource.
// FillEpoch only writes when no entry exists; SetEpoch always overwrites.
type EpochCache interface {
	GetEpoch(ctx context.Context, userID uuid.UUID) (int, bool, error)
	FillEpoch(ctx context.Context, userID uuid.UUID, epoch int, ttl time.Duration) error
	SetEpoch(ctx context.Context, userID uuid.UUID, epoch int, ttl time.Duration) error
}

// EpochChecker answers "is this token's epoch still current".
// Reads fall back to the source when the cache fails. Writers publish new
// epochs with Advance and Remove, so a read that raced a change can only
// fill an empty slot and never replace a published value.
type EpochChecker struct {
	source EpochSource
	cache  EpochCache
	ttl    time.Duration
}

// NewEpochChecker builds a checker; cache may be nil.
func NewEpochChecker(source EpochSource, cache EpochCache, ttl time.Duration) *EpochChecker {
	return &EpochChecker{source: source, cache: cache, ttl: ttl}
}

// Current returns the user's current token epoch.
func (c *EpochChecker) Current(ctx context.Context, userID uuid.UUID) (int, error) {
	if c.cache != nil {
		epoch, ok, err := c.cache.GetEpoch(ctx, userID)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("userID", userID.String()).Msg("epoch cache read failed")
		case ok && epoch == removedEpoch:
			return 0, errs.NewNotFound("user")
		case ok:
			return epoch, nil
		}
	}

	epoch, err := c.source.TokenEpoch(ctx, userID)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		if err := c.cache.FillEpoch(ctx, userID, epoch, c.ttl); err != nil {
			log.Warn().Err(err).Str("userID", userID.String()).Msg("epoch cache fill failed")
		}
	}
	return epoch, nil
}

// Advance publishes the user's new epoch after the stored one changed.
func (c *EpochChecker) Advance(ctx context.Context, userID uuid.UUID, epoch int) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.SetEpoch(ctx, userID, epoch, c.ttl)
}

// Remove marks a deleted user so cached reads reject their tokens.
func (c *EpochChecker) Remove(ctx context.Context, userID uuid.UUID) error {
	return c.Advance(ctx, userID, removedEpoch)
}
