package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/worklane/worklane-client/internal/api"
	"go.uber.org/zap"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newEchoServer upgrades /ws/chat connections and echoes every envelope back
// verbatim. The received query parameters are captured for assertions.
func newEchoServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/chat" {
			http.NotFound(w, r)
			return
		}
		*captured = *r
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var message api.Message
			if err := conn.ReadJSON(&message); err != nil {
				return
			}
			if err := conn.WriteJSON(message); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func wsTarget(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebsocketDialerCarriesRoomAndToken(t *testing.T) {
	server, captured := newEchoServer(t)
	session := authenticatedSession(t)
	dialer, err := NewWebsocketDialer(WebsocketDialerConfig{
		WSURL:   wsTarget(server),
		Session: session,
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct dialer: %v", err)
	}

	subscription, err := dialer.Subscribe(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	defer subscription.Close()

	query := captured.URL.Query()
	if query.Get("roomId") != "room-a" {
		t.Fatalf("expected roomId query parameter, got %q", query.Get("roomId"))
	}
	if query.Get("token") != session.Token() {
		t.Fatal("expected the session token as a query parameter")
	}
}

func TestWebsocketSubscriptionRoundTripsEnvelope(t *testing.T) {
	server, _ := newEchoServer(t)
	dialer, err := NewWebsocketDialer(WebsocketDialerConfig{
		WSURL:   wsTarget(server),
		Session: authenticatedSession(t),
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct dialer: %v", err)
	}

	subscription, err := dialer.Subscribe(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}
	defer subscription.Close()

	outgoing := api.Message{
		ChatRoomID: "room-a",
		SenderID:   5,
		SenderName: "Mirae Recruiting",
		Message:    "hello",
		Type:       api.MessageTypeTalk,
	}
	if err := subscription.Send(outgoing); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	select {
	case received := <-subscription.Messages():
		if received != outgoing {
			t.Fatalf("expected the envelope to round-trip unmodified, got %+v", received)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the echoed envelope")
	}
}

func TestWebsocketSubscriptionCloseEndsStream(t *testing.T) {
	server, _ := newEchoServer(t)
	dialer, err := NewWebsocketDialer(WebsocketDialerConfig{
		WSURL:   wsTarget(server),
		Session: authenticatedSession(t),
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct dialer: %v", err)
	}

	subscription, err := dialer.Subscribe(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}

	if err := subscription.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	select {
	case _, open := <-subscription.Messages():
		if open {
			t.Fatal("expected the message channel to close after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the message channel to close")
	}

	if err := subscription.Send(api.Message{Message: "late"}); err == nil {
		t.Fatal("expected send on a closed subscription to fail")
	}
}

func TestWebsocketDialerRejectsBlankRoom(t *testing.T) {
	server, _ := newEchoServer(t)
	dialer, err := NewWebsocketDialer(WebsocketDialerConfig{
		WSURL:   wsTarget(server),
		Session: authenticatedSession(t),
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to construct dialer: %v", err)
	}

	if _, err := dialer.Subscribe(context.Background(), "  "); err == nil {
		t.Fatal("expected subscribe to reject a blank room id")
	}
}

func TestNewWebsocketDialerRejectsMissingConfig(t *testing.T) {
	if _, err := NewWebsocketDialer(WebsocketDialerConfig{Session: authenticatedSession(t)}); err == nil {
		t.Fatal("expected missing websocket url to be rejected")
	}
	if _, err := NewWebsocketDialer(WebsocketDialerConfig{WSURL: "ws://localhost"}); err == nil {
		t.Fatal("expected missing session to be rejected")
	}
}
