// Package board maintains a client-side synchronized view of all orders:
// one cold-load fetch per connection plus a delta push stream, reconciled
// idempotently by order id.
package board

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davilamx/comandas/internal/feed"
	"github.com/davilamx/comandas/internal/order"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "disconnected"
}

// Client owns the push-channel handle. Open starts the stream, Close tears
// it down deliberately (no reconnect); an unexpected stream close goes back
// to connecting after RetryDelay.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	RetryDelay time.Duration

	// OnChange fires after the local collection changes. OnInsert fires
	// once per order the client had not seen (the new-order notification).
	// OnError reports feed degradation; the board stays usable from the
	// cold load.
	OnChange func()
	OnInsert func(o order.Order)
	OnError  func(msg string)

	mu     sync.Mutex
	orders []order.Order
	// tombstones holds ids deleted during the current connection epoch so
	// a slower concurrent cold load cannot resurrect them. streamed holds
	// ids upserted by this epoch's push events, which Reconcile must keep
	// even when the cold load raced and missed them.
	tombstones map[string]struct{}
	streamed   map[string]struct{}

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *Client) State() State { return State(c.state.Load()) }

func (c *Client) setState(s State) { c.state.Store(int32(s)) }

// Orders returns a snapshot of the local collection.
func (c *Client) Orders() []order.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]order.Order(nil), c.orders...)
}

// Open starts the sync loop. It returns an error if the client is already
// open.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("board: already open")
	}
	if c.HTTP == nil {
		c.HTTP = &http.Client{}
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx)
	return nil
}

// Close is the deliberate teardown: it stops the stream and suppresses
// reconnection. The owning component must call it exactly once per Open.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.setState(StateDisconnected)
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	for {
		c.setState(StateConnecting)
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		c.reportError(fmt.Sprintf("real-time updates unavailable: %v", err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.RetryDelay):
		}
	}
}

// connect opens the stream, then cold-loads the full collection while
// deltas are already being applied. It returns when the stream closes.
func (c *Client) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/orders/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("stream status %s", res.Status)
	}

	c.mu.Lock()
	c.tombstones = make(map[string]struct{})
	c.streamed = make(map[string]struct{})
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.coldLoad(ctx)

	return c.readStream(res.Body)
}

func (c *Client) coldLoad(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/orders", nil)
	if err != nil {
		c.reportError(fmt.Sprintf("cold load: %v", err))
		return
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		c.reportError(fmt.Sprintf("cold load: %v", err))
		return
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		c.reportError(fmt.Sprintf("cold load: status %s", res.Status))
		return
	}
	var fetched []order.Order
	if err := json.NewDecoder(res.Body).Decode(&fetched); err != nil {
		c.reportError(fmt.Sprintf("cold load: %v", err))
		return
	}
	c.Reconcile(fetched)
}

// Reconcile folds a cold-load result into the local collection and treats
// it as authoritative. Fetched orders upsert by id, except those deleted
// since this connection was established, which stay deleted even when the
// fetch still carries them. Local orders absent from the fetch are dropped
// unless this epoch's stream delivered them after the fetch was taken:
// deletions that happened while the client was not listening are only ever
// visible as absence here.
func (c *Client) Reconcile(fetched []order.Order) {
	present := make(map[string]struct{}, len(fetched))
	c.mu.Lock()
	for _, o := range fetched {
		present[o.ID] = struct{}{}
		if _, dead := c.tombstones[o.ID]; dead {
			continue
		}
		c.upsertLocked(o, false)
	}
	kept := c.orders[:0]
	for _, o := range c.orders {
		_, inFetch := present[o.ID]
		_, inStream := c.streamed[o.ID]
		if inFetch || inStream {
			kept = append(kept, o)
		}
	}
	c.orders = kept
	c.mu.Unlock()
	c.notifyChange()
}

// maxFrameSize bounds one stream line; an order document with many lines
// easily exceeds bufio.Scanner's 64KB default.
const maxFrameSize = 1 << 20

// readStream consumes SSE frames: comment lines are heartbeats, data lines
// carry one JSON event each.
func (c *Client) readStream(body io.Reader) error {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.handleFrame(data.String())
				data.Reset()
			}
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errors.New("stream closed")
}

func (c *Client) handleFrame(payload string) {
	var ev feed.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return
	}
	c.Apply(ev)
}

// Apply folds one event into the local collection. Every handler is an
// idempotent upsert or removal keyed by order id, so a locally applied
// optimistic mutation followed by the echoed push event settles on the
// same state with no duplication. Unknown event types are ignored.
func (c *Client) Apply(ev feed.Event) {
	switch ev.Type {
	case feed.TypeInsert, feed.TypeUpdate, feed.TypeReplace:
		var o order.Order
		if err := json.Unmarshal(ev.Order, &o); err != nil || o.ID == "" {
			return
		}
		c.mu.Lock()
		if c.streamed != nil {
			c.streamed[o.ID] = struct{}{}
		}
		isNew := c.upsertLocked(o, ev.Type == feed.TypeInsert)
		c.mu.Unlock()
		if isNew && ev.Type == feed.TypeInsert && c.OnInsert != nil {
			c.OnInsert(o)
		}
		c.notifyChange()
	case feed.TypeDelete:
		if ev.ID == "" {
			return
		}
		c.mu.Lock()
		if c.tombstones != nil {
			c.tombstones[ev.ID] = struct{}{}
		}
		for i, o := range c.orders {
			if o.ID == ev.ID {
				c.orders = append(c.orders[:i], c.orders[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		c.notifyChange()
	case feed.TypeError:
		c.reportError(ev.Message)
	case feed.TypeConnected:
		// greeting, nothing to fold in
	}
}

// upsertLocked replaces the matching order in place, or adds it when
// unseen (prepended for inserts, appended otherwise). Reports whether the
// order was new.
func (c *Client) upsertLocked(o order.Order, prepend bool) bool {
	for i := range c.orders {
		if c.orders[i].ID == o.ID {
			c.orders[i] = o
			return false
		}
	}
	if prepend {
		c.orders = append([]order.Order{o}, c.orders...)
	} else {
		c.orders = append(c.orders, o)
	}
	return true
}

func (c *Client) notifyChange() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *Client) reportError(msg string) {
	if c.OnError != nil {
		c.OnError(msg)
	}
}
