package services

import (
	"context"
	"log/slog"
	"sync/atomic"

	"blueelephant/internal/domain"
)

// DefaultMembersSeed is shown until the first successful count.
const DefaultMembersSeed = 100

// MemberCounter caches the total member count for every browser session.
type MemberCounter struct {
	profiles domain.ProfileRepository
	logger   *slog.Logger
	value    atomic.Int64
}

func NewMemberCounter(profiles domain.ProfileRepository, seed int64, logger *slog.Logger) *MemberCounter {
	c := &MemberCounter{profiles: profiles, logger: logger}
	c.value.Store(seed)
	membersTotal.Set(float64(seed))
	return c
}

// Value returns the last known count.
func (c *MemberCounter) Value() int64 {
	return c.value.Load()
}

// Refresh counts the profiles collection. On failure the cached value is kept.
func (c *MemberCounter) Refresh(ctx context.Context) {
	n, err := c.profiles.Count(ctx)
	if err != nil {
		c.logger.Error("count members", "error", err)
		return
	}
	c.value.Store(n)
	membersTotal.Set(float64(n))
}
