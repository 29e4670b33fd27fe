package chat

import (
	"context"
	"errors"
	"time"

	"github.com/worklane/worklane-client/internal/cache"
	"go.uber.org/zap"
)

const defaultPresenceTTL = 30 * time.Second

var errMissingPresenceBackend = errors.New("chat: presence backend dependency required")

// PresenceBackend is the slice of the platform API the checker needs.
type PresenceBackend interface {
	OnlineStatus(ctx context.Context, accountID int64) (bool, error)
}

// PresenceCheckerConfig describes the checker's dependencies.
type PresenceCheckerConfig struct {
	Backend PresenceBackend
	TTL     time.Duration
	Clock   func() time.Time
	Logger  *zap.Logger
}

// PresenceChecker reports whether a chat opponent is currently online. The
// status is a point-in-time snapshot: it is fetched when asked, cached
// briefly so rapid room-header rerenders don't refetch, and never kept live.
type PresenceChecker struct {
	backend PresenceBackend
	cached  *cache.TTL[int64, bool]
	logger  *zap.Logger
}

// NewPresenceChecker validates dependencies and constructs a checker.
func NewPresenceChecker(cfg PresenceCheckerConfig) (*PresenceChecker, error) {
	if cfg.Backend == nil {
		return nil, errMissingPresenceBackend
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultPresenceTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceChecker{
		backend: cfg.Backend,
		cached:  cache.NewTTL[int64, bool](ttl, cfg.Clock),
		logger:  logger,
	}, nil
}

// Online returns the opponent's status snapshot. Fetch failures degrade to
// offline and are surfaced so callers can decide whether to care.
func (c *PresenceChecker) Online(ctx context.Context, accountID int64) (bool, error) {
	if online, ok := c.cached.Get(accountID); ok {
		return online, nil
	}

	online, err := c.backend.OnlineStatus(ctx, accountID)
	if err != nil {
		c.logger.Warn("online status fetch failed", zap.Int64("accountId", accountID), zap.Error(err))
		return false, err
	}
	c.cached.Set(accountID, online)
	return online, nil
}
