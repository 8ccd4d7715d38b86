package models

import (
	"time"

	"github.com/google/uuid"
)

// Application statuses
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Valid state transitions: from -> []to. Approved and rejected are terminal;
// an application never re-enters pending.
var ValidApplicationTransitions = map[string][]string{
	ApplicationStatusPending:  {ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved: {},
	ApplicationStatusRejected: {},
}

func IsValidApplicationTransition(from, to string) bool {
	allowed, ok := ValidApplicationTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type Application struct {
	ID                   uuid.UUID `json:"id"`
	CampaignID           uuid.UUID `json:"campaign_id"`
	CreatorID            uuid.UUID `json:"creator_id"`
	Proposal             string    `json:"proposal"`
	ProposedBudget       *float64  `json:"proposed_budget,omitempty"`
	ProposedDeliveryDays *int      `json:"proposed_delivery_days,omitempty"`
	Status               string    `json:"status"`
	PortfolioLinks       []string  `json:"portfolio_links,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
