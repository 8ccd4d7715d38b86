package repositories

import (
	"context"
	"net/http"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
)

type ContractRepo struct {
	client *backend.Client
}

func NewContractRepo(client *backend.Client) *ContractRepo {
	return &ContractRepo{client: client}
}

type CreateContractInput struct {
	CampaignID  uuid.UUID `json:"campaign_id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	BrandID     uuid.UUID `json:"brand_id"`
	Amount      float64   `json:"amount"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}

func (r *ContractRepo) Create(ctx context.Context, s backend.Session, in CreateContractInput) (*models.Contract, error) {
	if in.Status == "" {
		in.Status = models.ContractStatusPending
	}

	var contract models.Contract
	if _, err := r.client.Do(ctx, s, http.MethodPost, "/contracts", in, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepo) GetByID(ctx context.Context, s backend.Session, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if _, err := r.client.Do(ctx, s, http.MethodGet, "/contracts/"+id.String(), nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}
