package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// SizeVariant is one orderable size with its own price (replaces the base
// price when chosen).
type SizeVariant struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// ExtraOption is an add-on the staff can attach to a line. AllowMultiple
// lets one line carry the extra more than once.
type ExtraOption struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	AllowMultiple bool            `json:"allowMultiple,omitempty"`
}

type FlavorOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Options is the free-form options bag (piece count, selectable sauces).
type Options struct {
	Pieces int      `json:"pieces,omitempty"`
	Sauces []string `json:"sauces,omitempty"`
}

// Product is a catalog entry. Category is a free-form string validated only
// against the separately managed category set. Either Price or a non-empty
// Sizes list should be present for ordering to make sense; the schema does
// not enforce it.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Sizes       []SizeVariant    `json:"sizes,omitempty"`
	Extras      []ExtraOption    `json:"extras,omitempty"`
	Flavors     []FlavorOption   `json:"flavors,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Available   bool             `json:"available"`
	Image       string           `json:"image,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// CreateRequest payload of creation.
// swagger:model CreateProductRequest
type CreateRequest struct {
	Name        string           `json:"name" example:"Latte"`
	Category    string           `json:"category" example:"Bebidas calientes"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price,omitempty" example:"50"`
	Sizes       []SizeVariant    `json:"sizes,omitempty"`
	Extras      []ExtraOption    `json:"extras,omitempty"`
	Flavors     []FlavorOption   `json:"flavors,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Available   *bool            `json:"available,omitempty"`
	Image       string           `json:"image,omitempty"`
}

// UpdateRequest payload of partial update by id. Nil fields are left
// unchanged.
// swagger:model UpdateProductRequest
type UpdateRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Sizes       *[]SizeVariant   `json:"sizes,omitempty"`
	Extras      *[]ExtraOption   `json:"extras,omitempty"`
	Flavors     *[]FlavorOption  `json:"flavors,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Available   *bool            `json:"available,omitempty"`
	Image       *string          `json:"image,omitempty"`
}
