package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/auth"
	"github.com/worklane/worklane-client/internal/signal"
	"go.uber.org/zap"
)

var (
	errMissingDialer   = errors.New("chat: dialer dependency required")
	errMissingUploader = errors.New("chat: uploader dependency required")
)

// Uploader is the slice of the platform API the feed needs for attachments.
type Uploader interface {
	UploadChatFile(ctx context.Context, filename string, content io.Reader) (string, error)
}

// FeedConfig describes the feed's dependencies.
type FeedConfig struct {
	Dialer   Dialer
	Uploader Uploader
	Session  *auth.Session
	Logger   *zap.Logger
}

// Feed maintains the ordered, live-updating message sequence for the active
// chat room. An empty room id means no room is selected and consumers render
// a placeholder. Each room switch increments a generation counter; envelopes
// delivered by a superseded subscription are dropped so a stale room's
// messages can never leak into the new sequence.
type Feed struct {
	dialer   Dialer
	uploader Uploader
	session  *auth.Session
	logger   *zap.Logger
	changes  *signal.Broadcaster

	mu           sync.Mutex
	generation   uint64
	roomID       string
	subscription Subscription
	messages     []api.Message
}

// NewFeed validates dependencies and constructs a Feed with no active room.
func NewFeed(cfg FeedConfig) (*Feed, error) {
	if cfg.Dialer == nil {
		return nil, errMissingDialer
	}
	if cfg.Uploader == nil {
		return nil, errMissingUploader
	}
	if cfg.Session == nil {
		return nil, errMissingSessionDep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		dialer:   cfg.Dialer,
		uploader: cfg.Uploader,
		session:  cfg.Session,
		logger:   logger,
		changes:  signal.NewBroadcaster(),
	}, nil
}

// SetRoom switches the active room. The previous subscription is torn down
// and the rendered sequence cleared before any message of the new room can
// append. Switching to the already-active room is a no-op; an empty id
// deselects without subscribing.
func (f *Feed) SetRoom(ctx context.Context, roomID string) error {
	f.mu.Lock()
	if roomID == f.roomID {
		f.mu.Unlock()
		return nil
	}
	f.generation++
	generation := f.generation
	previous := f.subscription
	f.subscription = nil
	f.roomID = roomID
	f.messages = nil
	f.mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	f.changes.Notify()

	if strings.TrimSpace(roomID) == "" {
		return nil
	}

	subscription, err := f.dialer.Subscribe(ctx, roomID)
	if err != nil {
		f.logger.Warn("chat room subscription failed", zap.String("roomId", roomID), zap.Error(err))
		return err
	}

	f.mu.Lock()
	if generation != f.generation {
		// A later switch superseded this one while dialing.
		f.mu.Unlock()
		_ = subscription.Close()
		return nil
	}
	f.subscription = subscription
	f.mu.Unlock()

	go f.consume(generation, subscription)
	return nil
}

func (f *Feed) consume(generation uint64, subscription Subscription) {
	for message := range subscription.Messages() {
		f.mu.Lock()
		if generation != f.generation {
			f.mu.Unlock()
			return
		}
		f.messages = append(f.messages, message)
		f.mu.Unlock()
		f.changes.Notify()
	}
}

// RoomID returns the active room id, empty when no room is selected.
func (f *Feed) RoomID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roomID
}

// Messages returns a copy of the sequence in arrival order. No dedup and no
// timestamp resort is performed; append order equals transport order.
func (f *Feed) Messages() []api.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]api.Message, len(f.messages))
	copy(copied, f.messages)
	return copied
}

// Send pushes one TALK envelope to the active room. Fire-and-forget: the
// message is not appended locally, it arrives back through the subscription
// when the platform echoes it. Blank bodies are dropped without error.
func (f *Feed) Send(body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return f.send(body, api.MessageTypeTalk)
}

// SendFile uploads attachment content and pushes a FILE envelope carrying
// the returned reference. The two steps are not atomic: when the upload
// succeeds but the send fails, the stored file is orphaned with no
// compensating cleanup, matching platform behavior.
func (f *Feed) SendFile(ctx context.Context, filename string, content io.Reader) error {
	reference, err := f.uploader.UploadChatFile(ctx, filename, content)
	if err != nil {
		f.logger.Warn("chat file upload failed", zap.String("filename", filename), zap.Error(err))
		return err
	}
	return f.send(reference, api.MessageTypeFile)
}

func (f *Feed) send(body, messageType string) error {
	claims, ok := f.session.Claims()
	if !ok {
		return ErrNotAuthenticated
	}

	f.mu.Lock()
	roomID := f.roomID
	subscription := f.subscription
	f.mu.Unlock()

	if roomID == "" || subscription == nil {
		return ErrNoActiveRoom
	}

	return subscription.Send(api.Message{
		ChatRoomID: roomID,
		SenderID:   claims.AccountID,
		SenderName: claims.Name,
		SenderType: 0,
		Message:    body,
		Type:       messageType,
		IsRead:     0,
	})
}

// Close tears down the active subscription and clears the sequence.
func (f *Feed) Close() {
	f.mu.Lock()
	f.generation++
	subscription := f.subscription
	f.subscription = nil
	f.roomID = ""
	f.messages = nil
	f.mu.Unlock()

	if subscription != nil {
		_ = subscription.Close()
	}
	f.changes.Notify()
}

// Subscribe registers a change listener for re-rendering consumers.
func (f *Feed) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	return f.changes.Subscribe(ctx)
}
