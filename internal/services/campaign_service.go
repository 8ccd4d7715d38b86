package services

import (
	"context"
	"errors"
	"strings"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyProposal  = errors.New("proposal text is required")
	ErrInvalidBudget  = errors.New("proposed budget must be positive")
	ErrInvalidDays    = errors.New("proposed delivery days must be positive")
	ErrCampaignClosed = errors.New("campaign is not accepting proposals")
)

type CampaignBrowser interface {
	GetByID(ctx context.Context, s backend.Session, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, s backend.Session, f repositories.CampaignFilter) ([]models.Campaign, *backend.Pagination, error)
	Apply(ctx context.Context, s backend.Session, campaignID uuid.UUID, in repositories.ApplyInput) (*models.Application, error)
}

// CampaignService wraps the campaign read and apply use cases with the
// pre-validation the remote API would otherwise reject with a 422.
type CampaignService struct {
	campaigns CampaignBrowser
	log       *zap.Logger
}

func NewCampaignService(campaigns CampaignBrowser, log *zap.Logger) *CampaignService {
	return &CampaignService{campaigns: campaigns, log: log}
}

func (s *CampaignService) GetCampaign(ctx context.Context, sess backend.Session, id uuid.UUID) (*models.Campaign, error) {
	return s.campaigns.GetByID(ctx, sess, id)
}

func (s *CampaignService) ListCampaigns(ctx context.Context, sess backend.Session, f repositories.CampaignFilter) ([]models.Campaign, *backend.Pagination, error) {
	return s.campaigns.List(ctx, sess, f)
}

// ApplyToCampaign submits a creator proposal after local validation.
func (s *CampaignService) ApplyToCampaign(ctx context.Context, sess backend.Session, campaignID uuid.UUID, in repositories.ApplyInput) (*models.Application, error) {
	in.Proposal = strings.TrimSpace(in.Proposal)
	if in.Proposal == "" {
		return nil, ErrEmptyProposal
	}
	if in.ProposedBudget != nil && *in.ProposedBudget <= 0 {
		return nil, ErrInvalidBudget
	}
	if in.ProposedDeliveryDays != nil && *in.ProposedDeliveryDays <= 0 {
		return nil, ErrInvalidDays
	}

	campaign, err := s.campaigns.GetByID(ctx, sess, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, ErrCampaignClosed
	}

	return s.campaigns.Apply(ctx, sess, campaignID, in)
}
