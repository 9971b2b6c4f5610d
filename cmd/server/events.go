package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/davilamx/comandas/internal/feed"
)

const heartbeatInterval = 15 * time.Second

// GET /orders/events — the push channel. Deltas only: a client that missed
// events while disconnected catches up via GET /orders, never via replay.
// The subscription is released as soon as the request context ends.
func orderEventsHandler(broker *feed.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		writeEvent := func(ev feed.Event) bool {
			if err := sse.Encode(c.Writer, sse.Event{Data: ev}); err != nil {
				return false
			}
			c.Writer.Flush()
			return true
		}

		if !writeEvent(feed.Event{Type: feed.TypeConnected}) {
			return
		}

		// comment-only heartbeat so intermediaries do not tear the stream
		// down on idle
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok || !writeEvent(ev) {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(c.Writer, ": keep-alive\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			}
		}
	}
}
