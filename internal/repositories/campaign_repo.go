package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
)

// CampaignRepo reads campaigns from the remote marketplace API.
type CampaignRepo struct {
	client *backend.Client
}

func NewCampaignRepo(client *backend.Client) *CampaignRepo {
	return &CampaignRepo{client: client}
}

func (r *CampaignRepo) GetByID(ctx context.Context, s backend.Session, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	if _, err := r.client.Do(ctx, s, http.MethodGet, "/campaigns/"+id.String(), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

type CampaignFilter struct {
	Status  string
	Page    int
	PerPage int
}

func (r *CampaignRepo) List(ctx context.Context, s backend.Session, f CampaignFilter) ([]models.Campaign, *backend.Pagination, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Page > 0 {
		q.Set("page", fmt.Sprint(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", fmt.Sprint(f.PerPage))
	}

	path := "/campaigns"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var campaigns []models.Campaign
	pag, err := r.client.Do(ctx, s, http.MethodGet, path, nil, &campaigns)
	if err != nil {
		return nil, nil, err
	}
	return campaigns, pag, nil
}

type ApplyInput struct {
	Proposal             string   `json:"proposal"`
	ProposedBudget       *float64 `json:"proposed_budget,omitempty"`
	ProposedDeliveryDays *int     `json:"proposed_delivery_days,omitempty"`
	PortfolioLinks       []string `json:"portfolio_links,omitempty"`
}

// Apply submits a creator proposal against a campaign.
func (r *CampaignRepo) Apply(ctx context.Context, s backend.Session, campaignID uuid.UUID, in ApplyInput) (*models.Application, error) {
	var app models.Application
	path := fmt.Sprintf("/campaigns/%s/applications", campaignID)
	if _, err := r.client.Do(ctx, s, http.MethodPost, path, in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
