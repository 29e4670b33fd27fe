package sandbox

import (
	"sync"
	"testing"

	"github.com/worklane/worklane-client/internal/api"
	"go.uber.org/zap"
)

func newTestClient(roomID string, accountID int64) *roomClient {
	return &roomClient{
		send:      make(chan api.Message, 1),
		roomID:    roomID,
		accountID: accountID,
		logger:    zap.NewNop(),
	}
}

func TestHubBroadcastDeliversToRoomSubscribers(t *testing.T) {
	connectionHub := newHub()
	first := newTestClient("room-a", 1)
	second := newTestClient("room-a", 2)
	other := newTestClient("room-b", 3)
	connectionHub.register(first)
	connectionHub.register(second)
	connectionHub.register(other)

	connectionHub.broadcast("room-a", api.Message{Message: "hello"})

	for _, client := range []*roomClient{first, second} {
		select {
		case message := <-client.send:
			if message.Message != "hello" {
				t.Fatalf("unexpected message %+v", message)
			}
		default:
			t.Fatalf("expected delivery to account %d", client.accountID)
		}
	}
	select {
	case <-other.send:
		t.Fatal("did not expect delivery to another room")
	default:
	}
}

func TestHubBroadcastSkipsSlowSubscriber(t *testing.T) {
	connectionHub := newHub()
	slow := newTestClient("room-a", 1)
	slow.send <- api.Message{Message: "pending"}
	connectionHub.register(slow)

	connectionHub.broadcast("room-a", api.Message{Message: "dropped"})

	if got := <-slow.send; got.Message != "pending" {
		t.Fatalf("expected the buffered message to survive, got %+v", got)
	}
	select {
	case <-slow.send:
		t.Fatal("expected the broadcast to be dropped for a full buffer")
	default:
	}
}

func TestHubBroadcastDuringConcurrentUnregister(t *testing.T) {
	connectionHub := newHub()
	clients := make([]*roomClient, 0, 400)
	for i := 0; i < 400; i++ {
		client := newTestClient("room-a", int64(i+1))
		// Full buffers force every send through the non-blocking path.
		client.send <- api.Message{}
		connectionHub.register(client)
		clients = append(clients, client)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			connectionHub.broadcast("room-a", api.Message{Message: "tick"})
		}
	}()
	for _, client := range clients {
		connectionHub.unregister(client)
	}
	wg.Wait()

	for _, client := range clients {
		if connectionHub.online(client.accountID) {
			t.Fatalf("expected account %d to be offline after unregister", client.accountID)
		}
	}
}

func TestHubOnlineTracksConnectionCount(t *testing.T) {
	connectionHub := newHub()
	first := newTestClient("room-a", 7)
	second := newTestClient("room-b", 7)
	connectionHub.register(first)
	connectionHub.register(second)

	if !connectionHub.online(7) {
		t.Fatal("expected the account to be online with open connections")
	}

	connectionHub.unregister(first)
	if !connectionHub.online(7) {
		t.Fatal("expected the account to stay online while one connection remains")
	}

	connectionHub.unregister(second)
	if connectionHub.online(7) {
		t.Fatal("expected the account to be offline with no connections")
	}
}
