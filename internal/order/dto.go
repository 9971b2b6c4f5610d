package order

import (
	"github.com/shopspring/decimal"

	"github.com/davilamx/comandas/internal/cart"
)

// CreateRequest payload de creación de orden.
// swagger:model CreateOrderRequest
type CreateRequest struct {
	CustomerName  string           `json:"customerName" example:"Mesa 4"`
	Items         []cart.Line      `json:"items"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	PaymentMethod string           `json:"paymentMethod" example:"efectivo"`
}

// UpdateRequest payload de actualización parcial por id. Los campos nil no
// cambian. Confirm lleva la frase "Orden #<n>" cuando la orden ya no está
// en pending.
// swagger:model UpdateOrderRequest
type UpdateRequest struct {
	ID            string           `json:"id"`
	CustomerName  *string          `json:"customerName,omitempty"`
	Items         *[]cart.Line     `json:"items,omitempty"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	Status        *Status          `json:"status,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	Confirm       string           `json:"confirm,omitempty" example:"Orden #12"`
}
