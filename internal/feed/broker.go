package feed

import (
	"context"
	"sync"
)

// Publisher is the mutation-side half of the feed: handlers publish one
// event per persisted change.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

const subscriberBuffer = 16

// Broker fans events out to subscribers. There is no buffering of missed
// events beyond each subscriber's small channel: a client that falls
// behind or reconnects catches up via the cold-load fetch, not replay.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new consumer. The caller must Unsubscribe when its
// stream closes.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// SubscriberCount reports how many streams are currently attached.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Broadcast delivers ev to every subscriber. Subscribers with a full
// channel are skipped rather than blocking the feed.
func (b *Broker) Broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Publish lets a Broker stand in as a Publisher for single-process setups
// and tests: the event skips the database channel and fans out directly.
func (b *Broker) Publish(_ context.Context, ev Event) error {
	b.Broadcast(ev)
	return nil
}
