package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusClosed    = "closed"
	CampaignStatusCancelled = "cancelled"
)

type Campaign struct {
	ID           uuid.UUID  `json:"id"`
	BrandID      uuid.UUID  `json:"brand_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Budget       float64    `json:"budget"`
	DeliveryDays int        `json:"delivery_days"`
	Requirements []string   `json:"requirements,omitempty"`
	Status       string     `json:"status"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
