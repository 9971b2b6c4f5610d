package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davilamx/comandas/internal/cart"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	// StatusCancelled is a legal terminal state but no UI path creates it.
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DefaultCustomerName is used when an order is created without a name.
const DefaultCustomerName = "Cliente"

type Order struct {
	ID string `json:"id"`
	// OrderNumber is the human-facing daily sequence number. It is unique
	// only within a calendar day, never globally.
	OrderNumber   int             `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	Lines         []cart.Line     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ConfirmPhrase is the typed confirmation required to edit or delete an
// order that is already past pending.
func ConfirmPhrase(number int) string {
	return fmt.Sprintf("Orden #%d", number)
}
