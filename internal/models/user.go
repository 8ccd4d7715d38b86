package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	UserRoleCreator = "creator"
	UserRoleBrand   = "brand"
	UserRoleAdmin   = "admin"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
