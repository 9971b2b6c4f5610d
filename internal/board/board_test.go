package board

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/davilamx/comandas/internal/feed"
	"github.com/davilamx/comandas/internal/order"
)

func mustEvent(t *testing.T, typ feed.Type, o order.Order) feed.Event {
	t.Helper()
	ev, err := feed.ForOrder(typ, o)
	if err != nil {
		t.Fatalf("ForOrder: %v", err)
	}
	return ev
}

func newClient() *Client {
	return &Client{
		tombstones: make(map[string]struct{}),
		streamed:   make(map[string]struct{}),
	}
}

func TestApply_InsertUpdateDelete(t *testing.T) {
	c := newClient()
	a := order.Order{ID: "A", Status: order.StatusPending, CustomerName: "Mesa 1"}

	c.Apply(mustEvent(t, feed.TypeInsert, a))
	if got := c.Orders(); len(got) != 1 || got[0].CustomerName != "Mesa 1" {
		t.Fatalf("tras insert: %+v", got)
	}

	a.Status = order.StatusPreparing
	c.Apply(mustEvent(t, feed.TypeUpdate, a))
	if got := c.Orders(); len(got) != 1 || got[0].Status != order.StatusPreparing {
		t.Fatalf("tras update: %+v", got)
	}

	c.Apply(feed.ForDelete("A"))
	if got := c.Orders(); len(got) != 0 {
		t.Fatalf("tras delete: %+v", got)
	}
}

func TestApply_IsIdempotentByID(t *testing.T) {
	// optimistic local mutation followed by the echoed push event must not
	// duplicate the order
	c := newClient()
	a := order.Order{ID: "A", Status: order.StatusPending}

	ev := mustEvent(t, feed.TypeInsert, a)
	c.Apply(ev) // optimistic
	c.Apply(ev) // server echo
	if got := c.Orders(); len(got) != 1 {
		t.Fatalf("insert doble duplicó: %+v", got)
	}

	upd := mustEvent(t, feed.TypeUpdate, a)
	c.Apply(upd)
	c.Apply(upd)
	if got := c.Orders(); len(got) != 1 {
		t.Fatalf("update doble duplicó: %+v", got)
	}

	c.Apply(feed.ForDelete("A"))
	c.Apply(feed.ForDelete("A"))
	if got := c.Orders(); len(got) != 0 {
		t.Fatalf("delete doble dejó restos: %+v", got)
	}
}

func TestApply_InsertPrependsNewest(t *testing.T) {
	c := newClient()
	c.Apply(mustEvent(t, feed.TypeInsert, order.Order{ID: "old"}))
	c.Apply(mustEvent(t, feed.TypeInsert, order.Order{ID: "new"}))
	got := c.Orders()
	if len(got) != 2 || got[0].ID != "new" {
		t.Fatalf("el insert debe anteponerse: %+v", got)
	}
}

func TestApply_UnknownTypeIgnored(t *testing.T) {
	c := newClient()
	c.Apply(feed.Event{Type: "rebalance"})
	if got := c.Orders(); len(got) != 0 {
		t.Fatalf("tipo desconocido no debe mutar: %+v", got)
	}
}

func TestReconcile_ColdLoadRace(t *testing.T) {
	// [insert(A), update(A'), delete(A)] with a concurrent cold load that
	// returns [A]: the final collection is empty no matter where the cold
	// load lands.
	a := order.Order{ID: "A", Status: order.StatusPending}
	a2 := a
	a2.Status = order.StatusReady

	for pos := 0; pos <= 3; pos++ {
		c := newClient()
		steps := []func(){
			func() { c.Apply(mustEvent(t, feed.TypeInsert, a)) },
			func() { c.Apply(mustEvent(t, feed.TypeUpdate, a2)) },
			func() { c.Apply(feed.ForDelete("A")) },
		}
		var seq []func()
		seq = append(seq, steps[:pos]...)
		seq = append(seq, func() { c.Reconcile([]order.Order{a}) })
		seq = append(seq, steps[pos:]...)
		for _, step := range seq {
			step()
		}
		if got := c.Orders(); len(got) != 0 {
			t.Fatalf("pos=%d: colección final no vacía: %+v", pos, got)
		}
	}
}

func TestReconcile_DropsOrdersAbsentFromColdLoad(t *testing.T) {
	// an order deleted while the client was not listening is only visible
	// as absence from the next cold load
	c := newClient()
	c.Apply(mustEvent(t, feed.TypeInsert, order.Order{ID: "A"}))
	c.Apply(mustEvent(t, feed.TypeInsert, order.Order{ID: "B"}))

	// new connection epoch: the stream has delivered nothing yet
	c.streamed = make(map[string]struct{})
	c.tombstones = make(map[string]struct{})
	c.Reconcile([]order.Order{{ID: "B"}})

	got := c.Orders()
	if len(got) != 1 || got[0].ID != "B" {
		t.Fatalf("A fue borrada durante la desconexión y debe desaparecer: %+v", got)
	}
}

func TestReconcile_KeepsOrdersStreamedThisEpoch(t *testing.T) {
	// an insert pushed after the cold-load snapshot was taken must survive
	// reconciliation even though the fetch does not carry it
	c := newClient()
	c.Apply(mustEvent(t, feed.TypeInsert, order.Order{ID: "nueva"}))
	c.Reconcile([]order.Order{{ID: "vieja"}})

	got := c.Orders()
	if len(got) != 2 {
		t.Fatalf("la orden recibida por el stream no debe perderse: %+v", got)
	}
}

func TestClient_DeleteDuringDisconnectGap(t *testing.T) {
	var loads atomic.Int32
	dropStream := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if loads.Add(1) == 1 {
			fmt.Fprint(w, `[{"id":"A","status":"pending","customerName":"Mesa 1"}]`)
			return
		}
		fmt.Fprint(w, "[]")
	})
	var connects atomic.Int32
	mux.HandleFunc("/orders/events", func(w http.ResponseWriter, r *http.Request) {
		n := connects.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"connected\"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		if n == 1 {
			<-dropStream
			return
		}
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, RetryDelay: 10 * time.Millisecond}
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	// first connection sees A via cold load
	deadline := time.Now().Add(2 * time.Second)
	for len(c.Orders()) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := c.Orders(); len(got) != 1 || got[0].ID != "A" {
		t.Fatalf("primera conexión: %+v", got)
	}

	// the order is deleted server-side while the stream is down; the
	// reconnect cold load returns an empty collection
	close(dropStream)
	for len(c.Orders()) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := c.Orders(); len(got) != 0 {
		t.Fatalf("A sobrevivió a la reconexión pese a estar borrada: %+v", got)
	}
}

func TestReadStream_AcceptsLargeFrames(t *testing.T) {
	c := newClient()
	big := strings.Repeat("x", 80*1024) // past bufio.Scanner's default cap
	payload := fmt.Sprintf(`{"type":"insert","order":{"id":"A","customerName":%q}}`, big)
	err := c.readStream(strings.NewReader("data: " + payload + "\n\n"))
	if err == nil || !strings.Contains(err.Error(), "stream closed") {
		t.Fatalf("err=%v, esperaba el cierre normal del stream", err)
	}
	got := c.Orders()
	if len(got) != 1 || len(got[0].CustomerName) != 80*1024 {
		t.Fatalf("el frame grande debió aplicarse: n=%d", len(got))
	}
}

func TestPartition_CompletedOnlyToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	orders := []order.Order{
		{ID: "c-hoy", Status: order.StatusCompleted, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "c-ayer", Status: order.StatusCompleted, CreatedAt: now.Add(-26 * time.Hour)},
		{ID: "p-viejo", Status: order.StatusPending, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "x", Status: order.StatusCancelled, CreatedAt: now},
	}

	cols := Partition(orders, Filter{}, now)
	if len(cols.Completed) != 1 || cols.Completed[0].ID != "c-hoy" {
		t.Fatalf("completed=%+v, esperaba solo c-hoy", cols.Completed)
	}
	if len(cols.Pending) != 1 || cols.Pending[0].ID != "p-viejo" {
		t.Fatalf("pending=%+v, los no terminales se muestran sin importar la edad", cols.Pending)
	}
}

func TestPartition_DateFilterAppliesGlobally(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	from := now.Add(-48 * time.Hour)
	orders := []order.Order{
		{ID: "c-ayer", Status: order.StatusCompleted, CreatedAt: now.Add(-26 * time.Hour)},
		{ID: "p-viejo", Status: order.StatusPending, CreatedAt: now.Add(-72 * time.Hour)},
	}

	cols := Partition(orders, Filter{From: &from}, now)
	if len(cols.Completed) != 1 {
		t.Fatalf("con filtro, completed de ayer debe incluirse: %+v", cols.Completed)
	}
	if len(cols.Pending) != 0 {
		t.Fatalf("con filtro, pending fuera de rango debe excluirse: %+v", cols.Pending)
	}
}

func TestPartition_SortsNewestFirst(t *testing.T) {
	now := time.Now()
	orders := []order.Order{
		{ID: "1", Status: order.StatusPending, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "2", Status: order.StatusPending, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "3", Status: order.StatusPending, CreatedAt: now.Add(-2 * time.Hour)},
	}
	cols := Partition(orders, Filter{}, now)
	if cols.Pending[0].ID != "2" || cols.Pending[1].ID != "3" || cols.Pending[2].ID != "1" {
		t.Fatalf("orden incorrecto: %+v", cols.Pending)
	}
}

func TestClient_ReconnectsAfterStreamClose(t *testing.T) {
	var connects atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	mux.HandleFunc("/orders/events", func(w http.ResponseWriter, r *http.Request) {
		connects.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"connected\"}\n\n")
		// return closes the stream unexpectedly
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, RetryDelay: 10 * time.Millisecond}
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for connects.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if connects.Load() < 2 {
		t.Fatalf("connects=%d, esperaba reconexión", connects.Load())
	}
}

func TestClient_CloseIsDeliberateTeardown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	mux.HandleFunc("/orders/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"connected\"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, RetryDelay: 10 * time.Millisecond}
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.State() != StateConnected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.State() != StateConnected {
		t.Fatalf("state=%s, esperaba connected", c.State())
	}

	c.Close()
	if c.State() != StateDisconnected {
		t.Fatalf("state=%s tras Close, esperaba disconnected", c.State())
	}
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("reabrir tras Close: %v", err)
	}
	c.Close()
}

func TestClient_DoubleOpenFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, RetryDelay: time.Hour}
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if err := c.Open(context.Background()); err == nil {
		t.Fatal("segundo Open debió fallar")
	}
}
