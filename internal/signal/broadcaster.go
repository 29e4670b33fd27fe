package signal

import (
	"context"
	"sync"
)

// Broadcaster fans a change signal out to subscribers so consumers can
// re-render after a store mutation. Delivery is best-effort: each subscriber
// holds a one-slot buffer, so a slow subscriber coalesces bursts into a
// single pending signal and always observes the latest state on its next
// read of the owning store.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int64]chan struct{}
	nextID      int64
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[int64]chan struct{})}
}

// Subscribe registers a listener. The returned cancel function removes it;
// cancellation of ctx does the same.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	stream := make(chan struct{}, 1)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[id] = stream
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return stream, cancel
}

// Notify signals every subscriber without blocking.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	streams := make([]chan struct{}, 0, len(b.subscribers))
	for _, stream := range b.subscribers {
		streams = append(streams, stream)
	}
	b.mu.Unlock()

	for _, stream := range streams {
		select {
		case stream <- struct{}{}:
		default:
		}
	}
}
