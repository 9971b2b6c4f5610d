// Command board follows the order board from a terminal: it keeps a
// synchronized local copy of all orders and prints the column totals on
// every change.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/davilamx/comandas/internal/board"
	"github.com/davilamx/comandas/internal/order"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "comandas server base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &board.Client{BaseURL: *baseURL}
	client.OnInsert = func(o order.Order) {
		log.Printf("[board] nueva %s — %s ($%s)", order.ConfirmPhrase(o.OrderNumber), o.CustomerName, o.Total)
	}
	client.OnError = func(msg string) {
		log.Printf("[board] %s", msg)
	}
	client.OnChange = func() {
		cols := board.Partition(client.Orders(), board.Filter{}, time.Now())
		log.Printf("[board] pending=%d preparing=%d ready=%d completed=%d",
			len(cols.Pending), len(cols.Preparing), len(cols.Ready), len(cols.Completed))
	}

	if err := client.Open(ctx); err != nil {
		log.Fatalf("[board] open: %v", err)
	}
	log.Printf("[board] following %s", *baseURL)

	<-ctx.Done()
	client.Close()
}
