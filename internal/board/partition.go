package board

import (
	"sort"
	"time"

	"github.com/davilamx/comandas/internal/order"
)

// Filter is the optional global date-range filter.
type Filter struct {
	From *time.Time
	To   *time.Time
}

func (f Filter) active() bool { return f.From != nil || f.To != nil }

func (f Filter) contains(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}

// Columns are the four status buckets of the board. Cancelled orders are
// not shown; no UI path produces them.
type Columns struct {
	Pending   []order.Order
	Preparing []order.Order
	Ready     []order.Order
	Completed []order.Order
}

// Partition recomputes the buckets from the full collection; it is pure
// and must be rerun on every render, never cached.
//
// With no filter, non-terminal orders are always shown regardless of age,
// but completed orders only when created today — the completed column must
// not grow without bound while active work always stays visible. Buckets
// are sorted newest first.
func Partition(orders []order.Order, f Filter, now time.Time) Columns {
	var cols Columns
	for _, o := range orders {
		if f.active() {
			if !f.contains(o.CreatedAt) {
				continue
			}
		} else if o.Status == order.StatusCompleted && !sameDay(o.CreatedAt, now) {
			continue
		}
		switch o.Status {
		case order.StatusPending:
			cols.Pending = append(cols.Pending, o)
		case order.StatusPreparing:
			cols.Preparing = append(cols.Preparing, o)
		case order.StatusReady:
			cols.Ready = append(cols.Ready, o)
		case order.StatusCompleted:
			cols.Completed = append(cols.Completed, o)
		}
	}
	for _, b := range []*[]order.Order{&cols.Pending, &cols.Preparing, &cols.Ready, &cols.Completed} {
		sort.SliceStable(*b, func(i, j int) bool {
			return (*b)[i].CreatedAt.After((*b)[j].CreatedAt)
		})
	}
	return cols
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
