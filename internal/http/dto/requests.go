package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OAuthCallbackRequest struct {
	Provider string `json:"provider"` // google / instagram
	Code     string `json:"code"`
}

type ApplyCampaignRequest struct {
	Proposal             string   `json:"proposal"`
	ProposedBudget       *float64 `json:"proposed_budget,omitempty"`
	ProposedDeliveryDays *int     `json:"proposed_delivery_days,omitempty"`
	PortfolioLinks       []string `json:"portfolio_links,omitempty"`
}

type DecideApplicationRequest struct {
	Status string `json:"status"` // approved / rejected
}

type SendMessageRequest struct {
	Content string `json:"content"`
}
