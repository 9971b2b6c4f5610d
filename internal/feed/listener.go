package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGPublisher sends events through Postgres NOTIFY so mutations performed
// by any server instance reach the listeners of all of them.
type PGPublisher struct {
	DB      *pgxpool.Pool
	Channel string
}

func (p *PGPublisher) Publish(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.DB.Exec(ctx, `SELECT pg_notify($1, $2)`, p.Channel, string(payload))
	return err
}

// Listener holds the server side of the change feed: one dedicated
// connection in LISTEN mode whose notifications are broadcast to the
// in-process subscribers.
type Listener struct {
	DB         *pgxpool.Pool
	Broker     *Broker
	Channel    string
	RetryDelay time.Duration
}

// Run listens until ctx is cancelled. On any connection failure it
// broadcasts a typed error event (so connected boards know real-time
// updates are degraded) and retries after RetryDelay.
func (l *Listener) Run(ctx context.Context) {
	retry := l.RetryDelay
	if retry <= 0 {
		retry = 5 * time.Second
	}
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[feed] listener error: %v (retry in %s)", err, retry)
			l.Broker.Broadcast(ForError("real-time updates unavailable"))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.DB.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.Channel}.Sanitize()); err != nil {
		return err
	}
	log.Printf("[feed] listening on %q", l.Channel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			log.Printf("[feed] dropping malformed notification: %v", err)
			continue
		}
		l.Broker.Broadcast(ev)
	}
}
