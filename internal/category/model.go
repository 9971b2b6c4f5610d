package category

import "time"

// Category is a lookup entity. Products reference it by name (a known
// fragility kept for compatibility), so Name is unique and immutable.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest payload de creación.
// swagger:model CreateCategoryRequest
type CreateRequest struct {
	Name string `json:"name" example:"Postres"`
}
