package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/usecase"
)

// DefaultTeamAccessTTL bounds how long a granted membership is remembered.
const DefaultTeamAccessTTL = 30 * time.Second

// TeamAccessCache wraps a TeamRepository and remembers granted team access.
// Denials are never cached, so a newly added member is not locked out.
type TeamAccessCache struct {
	next   usecase.TeamRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewTeamAccessCache creates a new TeamAccessCache.
func NewTeamAccessCache(next usecase.TeamRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *TeamAccessCache {
	if ttl <= 0 {
		ttl = DefaultTeamAccessTTL
	}

	return &TeamAccessCache{
		next:   next,
		client: client,
		prefix: "fintrack:team_access:",
		ttl:    ttl,
		logger: logger,
	}
}

// IsMemberOrOwner consults the cache before the wrapped repository.
// Redis failures fall through to the repository.
func (c *TeamAccessCache) IsMemberOrOwner(ctx context.Context, userID, teamID string) (bool, error) {
	key := c.key(userID, teamID)

	n, err := c.client.Exists(ctx, key).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("team access cache lookup failed")
	}

	ok, err := c.next.IsMemberOrOwner(ctx, userID, teamID)
	if err != nil || !ok {
		return ok, err
	}

	if err := c.client.Set(ctx, key, "1", c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("team access cache store failed")
	}

	return true, nil
}

// ListAccessibleTeamIDs is not cached; bulk deletion needs the current set.
func (c *TeamAccessCache) ListAccessibleTeamIDs(ctx context.Context, userID string) ([]string, error) {
	return c.next.ListAccessibleTeamIDs(ctx, userID)
}

func (c *TeamAccessCache) key(userID, teamID string) string {
	return c.prefix + userID + ":" + teamID
}

var _ usecase.TeamRepository = (*TeamAccessCache)(nil)
