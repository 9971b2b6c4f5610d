// Package cart holds the pre-submission order cart: line items, the
// merge-or-append identity rule and frozen unit pricing.
package cart

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Size is a chosen size variant (label plus the price that replaces the
// product base price).
type Size struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// Extra is a chosen add-on. Quantity is only meaningful when the product
// marks the extra as allow-multiple; it defaults to 1.
type Extra struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Flavor struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Line is one configured product entry. Key is an ephemeral identifier used
// to target decrement/removal before submission; it is stripped when the
// cart is turned into an order and is never persisted.
type Line struct {
	Key       string          `json:"key,omitempty"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Size      *Size           `json:"size,omitempty"`
	Extras    []Extra         `json:"extras,omitempty"`
	Flavors   []Flavor        `json:"flavors,omitempty"`
	Sauces    []string        `json:"sauces,omitempty"`
	Notes     []string        `json:"notes,omitempty"`
}

// Total is the line subtotal: frozen unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// UnitPrice computes the price frozen into a line at add time: the size
// price when a size is chosen (otherwise the product base price), plus
// every selected extra (times its quantity) and every selected flavor.
// Later product edits never change a line already in the cart.
func UnitPrice(base decimal.Decimal, size *Size, extras []Extra, flavors []Flavor) decimal.Decimal {
	price := base
	if size != nil {
		price = size.Price
	}
	for _, e := range extras {
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		price = price.Add(e.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	for _, f := range flavors {
		price = price.Add(f.Price)
	}
	return price
}

// Resolve decides whether candidate is the same purchasable configuration
// as an existing line. It returns the index of the line to quantity-merge
// into, or -1 when the candidate must become a new line.
//
// Two lines match iff product, size label, flavor set, sauce set, note set
// and the set of extra names all coincide. Flavors, sauces and notes are
// compared as order-independent sets. Extras are matched by name only:
// quantity and price on an extra are deliberately excluded, so lines that
// differ only in extra quantity still merge (kept for compatibility with
// the original behavior).
func Resolve(candidate Line, lines []Line) int {
	for i, l := range lines {
		if l.ProductID != candidate.ProductID {
			continue
		}
		if !sameSize(l.Size, candidate.Size) {
			continue
		}
		if !equalSets(flavorNames(l.Flavors), flavorNames(candidate.Flavors)) {
			continue
		}
		if !equalSets(l.Sauces, candidate.Sauces) {
			continue
		}
		if !equalSets(l.Notes, candidate.Notes) {
			continue
		}
		if !equalSets(extraNames(l.Extras), extraNames(candidate.Extras)) {
			continue
		}
		return i
	}
	return -1
}

// sameSize compares by label; a nil size and an empty label both mean "no
// size selected" and count as the same.
func sameSize(a, b *Size) bool {
	var al, bl string
	if a != nil {
		al = a.Label
	}
	if b != nil {
		bl = b.Label
	}
	return al == bl
}

func flavorNames(fs []Flavor) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func extraNames(es []Extra) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Cart accumulates lines for one order in progress.
type Cart struct {
	lines []Line
}

// Add merges the candidate into an existing line (summing quantity) when
// Resolve finds a match, otherwise appends it under a fresh ephemeral key.
func (c *Cart) Add(candidate Line) {
	if candidate.Quantity < 1 {
		candidate.Quantity = 1
	}
	if i := Resolve(candidate, c.lines); i >= 0 {
		c.lines[i].Quantity += candidate.Quantity
		return
	}
	candidate.Key = uuid.NewString()
	c.lines = append(c.lines, candidate)
}

// Decrement lowers the keyed line's quantity by one, removing the line
// entirely when it would drop below 1. This is the only removal path
// before submission. It reports whether the key matched a line.
func (c *Cart) Decrement(key string) bool {
	for i, l := range c.lines {
		if l.Key != key {
			continue
		}
		if l.Quantity <= 1 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity--
		}
		return true
	}
	return false
}

// Lines returns the current lines with ephemeral keys intact (for
// targeting decrements in a UI).
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Submit returns submission-ready lines with ephemeral keys stripped.
func (c *Cart) Submit() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Key = ""
		out[i] = l
	}
	return out
}

// Total sums every line subtotal.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Normalize collapses a submitted slice of lines through the same identity
// rule the cart uses, so an order posted with duplicate configurations is
// stored with merged quantities. Keys are stripped.
func Normalize(lines []Line) []Line {
	var c Cart
	for _, l := range lines {
		c.Add(l)
	}
	return c.Submit()
}
