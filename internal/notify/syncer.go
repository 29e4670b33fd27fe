package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/worklane/worklane-client/internal/api"
	"go.uber.org/zap"
)

var (
	errMissingStore   = errors.New("notify: store dependency required")
	errMissingBackend = errors.New("notify: backend dependency required")
)

// Backend is the slice of the platform API the syncer needs.
type Backend interface {
	NotificationList(ctx context.Context) ([]api.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID int64) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// SyncerConfig describes the syncer's dependencies.
type SyncerConfig struct {
	Store   *Store
	Backend Backend
	Logger  *zap.Logger
}

// Syncer keeps the notification store in lockstep with the server. Refreshes
// carry a monotonically increasing sequence number so that overlapping
// fetches resolve last-issued-wins: a response belonging to a superseded
// request is discarded, even when it arrives before the newer one resolves.
type Syncer struct {
	store   *Store
	backend Backend
	logger  *zap.Logger

	mu     sync.Mutex
	issued uint64
}

// NewSyncer validates dependencies and constructs a Syncer.
func NewSyncer(cfg SyncerConfig) (*Syncer, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Backend == nil {
		return nil, errMissingBackend
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: cfg.Store, backend: cfg.Backend, logger: logger}, nil
}

// Refresh fetches the notification list and replaces the cache. Fetch
// failures are logged and leave the previous cache state untouched.
func (s *Syncer) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.issued++
	sequence := s.issued
	s.mu.Unlock()

	notifications, err := s.backend.NotificationList(ctx)
	if err != nil {
		s.logger.Warn("notification fetch failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sequence < s.issued {
		s.logger.Debug("discarding superseded notification response",
			zap.Uint64("sequence", sequence),
			zap.Uint64("issued", s.issued))
		return
	}
	s.store.Replace(notifications)
}

// MarkRead acknowledges the notification server-side and, only on success,
// flips the local entry. A failed acknowledgement leaves the local state
// untouched and is surfaced to the caller.
func (s *Syncer) MarkRead(ctx context.Context, notificationID int64) error {
	if err := s.backend.MarkNotificationRead(ctx, notificationID); err != nil {
		s.logger.Warn("notification read acknowledgement failed",
			zap.Int64("notificationId", notificationID),
			zap.Error(err))
		return err
	}
	s.store.MarkRead(notificationID)
	return nil
}

// MarkAllRead acknowledges every notification server-side and, only on
// success, flips the local entries.
func (s *Syncer) MarkAllRead(ctx context.Context) error {
	if err := s.backend.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Warn("notification read-all acknowledgement failed", zap.Error(err))
		return err
	}
	s.store.MarkAllRead()
	return nil
}
