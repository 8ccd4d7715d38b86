package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract statuses
const (
	ContractStatusPending   = "pending"
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
	ContractStatusDisputed  = "disputed"
)

// Contract is spawned when an application reaches "approved". The remote
// backend owns it afterwards; the gateway only creates and reads.
type Contract struct {
	ID          uuid.UUID `json:"id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	BrandID     uuid.UUID `json:"brand_id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	Amount      float64   `json:"amount"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
