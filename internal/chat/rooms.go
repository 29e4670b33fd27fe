package chat

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/signal"
	"go.uber.org/zap"
)

const unreadBadgeCeiling = 9

var (
	errMissingRoomList    = errors.New("chat: room list dependency required")
	errMissingRoomBackend = errors.New("chat: room backend dependency required")
)

// RoomList is the session-scoped cache of rooms the account participates in.
// Like the notification store it is an injected container: server-owned
// data, full overwrite on refresh, cleared at logout.
type RoomList struct {
	mu      sync.RWMutex
	rooms   []api.Room
	loaded  bool
	changes *signal.Broadcaster
}

// NewRoomList returns an empty room list.
func NewRoomList() *RoomList {
	return &RoomList{changes: signal.NewBroadcaster()}
}

// Replace overwrites the cached rooms with the fetched list.
func (l *RoomList) Replace(rooms []api.Room) {
	copied := make([]api.Room, len(rooms))
	copy(copied, rooms)

	l.mu.Lock()
	l.rooms = copied
	l.loaded = true
	l.mu.Unlock()
	l.changes.Notify()
}

// Rooms returns a copy of the cached list.
func (l *RoomList) Rooms() []api.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	copied := make([]api.Room, len(l.rooms))
	copy(copied, l.rooms)
	return copied
}

// Loaded reports whether an initial fetch has populated the cache.
func (l *RoomList) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// TotalUnread sums the per-room unread counts.
func (l *RoomList) TotalUnread() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, room := range l.rooms {
		total += room.UnreadCount
	}
	return total
}

// Clear empties the cache, typically at logout.
func (l *RoomList) Clear() {
	l.mu.Lock()
	l.rooms = nil
	l.loaded = false
	l.mu.Unlock()
	l.changes.Notify()
}

// Subscribe registers a change listener for re-rendering consumers.
func (l *RoomList) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	return l.changes.Subscribe(ctx)
}

// BadgeLabel renders an unread count for a header badge: values above nine
// clamp to the "9+" sentinel, zero and below render empty so the badge hides.
func BadgeLabel(count int) string {
	if count <= 0 {
		return ""
	}
	if count > unreadBadgeCeiling {
		return "9+"
	}
	return strconv.Itoa(count)
}

// RoomBackend is the slice of the platform API the poller needs.
type RoomBackend interface {
	ChatRooms(ctx context.Context) ([]api.Room, error)
}

// RoomPollerConfig describes the poller's dependencies.
type RoomPollerConfig struct {
	List     *RoomList
	Backend  RoomBackend
	Interval time.Duration
	Logger   *zap.Logger
}

const defaultRoomPollInterval = 15 * time.Second

// RoomPoller refreshes the room list on a fixed cadence plus on demand. The
// same issued-sequence guard as the notification syncer keeps overlapping
// refreshes last-issued-wins: a response of a superseded request is discarded
// even when it arrives first.
type RoomPoller struct {
	list     *RoomList
	backend  RoomBackend
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	issued uint64
}

// NewRoomPoller validates dependencies and constructs a RoomPoller.
func NewRoomPoller(cfg RoomPollerConfig) (*RoomPoller, error) {
	if cfg.List == nil {
		return nil, errMissingRoomList
	}
	if cfg.Backend == nil {
		return nil, errMissingRoomBackend
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultRoomPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomPoller{list: cfg.List, backend: cfg.Backend, interval: interval, logger: logger}, nil
}

// Refresh fetches the room list once and replaces the cache. Failures are
// logged and leave the previous cache state untouched.
func (p *RoomPoller) Refresh(ctx context.Context) {
	p.mu.Lock()
	p.issued++
	sequence := p.issued
	p.mu.Unlock()

	rooms, err := p.backend.ChatRooms(ctx)
	if err != nil {
		p.logger.Warn("chat room fetch failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sequence < p.issued {
		return
	}
	p.list.Replace(rooms)
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *RoomPoller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}
