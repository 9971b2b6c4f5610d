package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleKitchen:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateRequest payload de alta de usuario (solo admin).
// swagger:model CreateUserRequest
type CreateRequest struct {
	Username string `json:"username" example:"ana"`
	Name     string `json:"name" example:"Ana"`
	Role     Role   `json:"role" example:"staff"`
	Password string `json:"password"`
}

// LoginRequest payload de inicio de sesión.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
