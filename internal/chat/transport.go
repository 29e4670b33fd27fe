package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/auth"
	"go.uber.org/zap"
)

const subscriptionBufferSize = 32

var (
	errMissingWSURL          = errors.New("chat: websocket url required")
	errMissingSessionDep     = errors.New("chat: session dependency required")
	ErrSubscriptionClosed    = errors.New("chat: subscription closed")
	ErrNotAuthenticated      = errors.New("chat: no authenticated session")
	ErrNoActiveRoom          = errors.New("chat: no active room")
	errMissingRoomIdentifier = errors.New("chat: room id required")
)

// Subscription delivers the envelope stream for exactly one chat room. The
// channel closes when the underlying connection drops or Close is called.
type Subscription interface {
	Messages() <-chan api.Message
	Send(message api.Message) error
	Close() error
}

// Dialer establishes room subscriptions.
type Dialer interface {
	Subscribe(ctx context.Context, roomID string) (Subscription, error)
}

// WebsocketDialerConfig describes the dependencies of the websocket dialer.
type WebsocketDialerConfig struct {
	WSURL   string
	Session *auth.Session
	Logger  *zap.Logger
}

// WebsocketDialer subscribes to per-room chat channels over a websocket. The
// access token travels as a query parameter because browsers cannot set
// headers on a websocket upgrade, and the platform keeps one contract for
// all client types.
type WebsocketDialer struct {
	wsURL   string
	session *auth.Session
	logger  *zap.Logger
}

// NewWebsocketDialer validates the configuration and constructs the dialer.
func NewWebsocketDialer(cfg WebsocketDialerConfig) (*WebsocketDialer, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(cfg.WSURL), "/")
	if trimmed == "" {
		return nil, errMissingWSURL
	}
	if cfg.Session == nil {
		return nil, errMissingSessionDep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebsocketDialer{wsURL: trimmed, session: cfg.Session, logger: logger}, nil
}

// Subscribe dials the room channel and starts the read loop.
func (d *WebsocketDialer) Subscribe(ctx context.Context, roomID string) (Subscription, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, errMissingRoomIdentifier
	}

	query := url.Values{
		"roomId": []string{roomID},
		"token":  []string{d.session.Token()},
	}
	target := fmt.Sprintf("%s/ws/chat?%s", d.wsURL, query.Encode())

	conn, response, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if response != nil && response.Body != nil {
		response.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("chat: dial room %s: %w", roomID, err)
	}

	subscription := &websocketSubscription{
		conn:     conn,
		messages: make(chan api.Message, subscriptionBufferSize),
		done:     make(chan struct{}),
		logger:   d.logger,
	}
	go subscription.readLoop()
	return subscription, nil
}

type websocketSubscription struct {
	conn     *websocket.Conn
	messages chan api.Message
	done     chan struct{}
	logger   *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *websocketSubscription) Messages() <-chan api.Message {
	return s.messages
}

// Send writes one envelope to the channel. At-most-once: no acknowledgement
// is awaited and no retry is attempted.
func (s *websocketSubscription) Send(message api.Message) error {
	select {
	case <-s.done:
		return ErrSubscriptionClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(message)
}

func (s *websocketSubscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return s.conn.Close()
}

// readLoop appends envelopes in arrival order until the connection drops.
// The messages channel closes afterwards so consumers observe the end of the
// stream.
func (s *websocketSubscription) readLoop() {
	defer close(s.messages)
	for {
		var message api.Message
		if err := s.conn.ReadJSON(&message); err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Debug("chat subscription read ended", zap.Error(err))
			}
			return
		}
		select {
		case s.messages <- message:
		case <-s.done:
			return
		}
	}
}
