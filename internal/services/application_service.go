package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/creatorhub/gateway/internal/outbox"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyProcessing means a decision for this application is still in
	// flight; repeated submissions are rejected rather than queued.
	ErrAlreadyProcessing = errors.New("application decision already in progress")
	ErrNotPending        = errors.New("application is not pending")
	ErrUnknownStatus     = errors.New("status must be approved or rejected")
)

type ApplicationAPI interface {
	ListByCampaign(ctx context.Context, s backend.Session, campaignID uuid.UUID, status string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, s backend.Session, applicationID uuid.UUID, status string) (*models.Application, error)
}

type ContractAPI interface {
	Create(ctx context.Context, s backend.Session, in repositories.CreateContractInput) (*models.Contract, error)
}

type CampaignAPI interface {
	GetByID(ctx context.Context, s backend.Session, id uuid.UUID) (*models.Campaign, error)
}

type OutboxRecorder interface {
	Record(ctx context.Context, p outbox.PendingContract) error
}

// DecisionResult reports the outcome of an approve/reject action. Contract is
// set only when approval spawned one successfully; ContractWarning carries the
// user-facing warning when contract creation failed after a committed
// approval.
type DecisionResult struct {
	Application     *models.Application
	Contract        *models.Contract
	ContractWarning string
}

// ApplicationService drives the application lifecycle for brand-managed
// campaigns: it keeps the per-campaign application list, performs
// pending->approved/rejected transitions and synthesizes a contract on
// approval. Approval and contract creation are two independent backend calls;
// a contract failure never rolls the approval back.
type ApplicationService struct {
	applications ApplicationAPI
	contracts    ContractAPI
	campaigns    CampaignAPI
	outbox       OutboxRecorder
	log          *zap.Logger

	mu         sync.Mutex
	views      map[viewKey][]models.Application
	processing map[uuid.UUID]struct{}
}

type viewKey struct {
	userID     uuid.UUID
	campaignID uuid.UUID
}

func NewApplicationService(
	applications ApplicationAPI,
	contracts ContractAPI,
	campaigns CampaignAPI,
	outboxRepo OutboxRecorder,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		contracts:    contracts,
		campaigns:    campaigns,
		outbox:       outboxRepo,
		log:          log,
		views:        make(map[viewKey][]models.Application),
		processing:   make(map[uuid.UUID]struct{}),
	}
}

// ListApplications fetches the campaign's applications and replaces the local
// view for this user.
func (s *ApplicationService) ListApplications(ctx context.Context, sess backend.Session, campaignID uuid.UUID) ([]models.Application, error) {
	apps, err := s.applications.ListByCampaign(ctx, sess, campaignID, "")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.views[viewKey{sess.UserID, campaignID}] = apps
	s.mu.Unlock()

	return apps, nil
}

// UpdateStatus transitions a pending application to approved or rejected.
// The local list is updated in place on success; no refetch. When the status
// transition succeeds but contract creation fails, the approval stands: the
// result carries a warning and the failure is recorded in the durable outbox
// for later reconciliation.
func (s *ApplicationService) UpdateStatus(ctx context.Context, sess backend.Session, campaignID, applicationID uuid.UUID, status string) (*DecisionResult, error) {
	if status != models.ApplicationStatusApproved && status != models.ApplicationStatusRejected {
		return nil, ErrUnknownStatus
	}

	s.mu.Lock()
	if _, busy := s.processing[applicationID]; busy {
		s.mu.Unlock()
		return nil, ErrAlreadyProcessing
	}
	s.processing[applicationID] = struct{}{}

	key := viewKey{sess.UserID, campaignID}
	app := findApplication(s.views[key], applicationID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.processing, applicationID)
		s.mu.Unlock()
	}()

	if app == nil {
		apps, err := s.applications.ListByCampaign(ctx, sess, campaignID, "")
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.views[key] = apps
		app = findApplication(apps, applicationID)
		s.mu.Unlock()
		if app == nil {
			return nil, fmt.Errorf("application %s not found in campaign %s", applicationID, campaignID)
		}
	}

	if !models.IsValidApplicationTransition(app.Status, status) {
		return nil, ErrNotPending
	}

	// No optimistic mutation: a failed transition leaves local state untouched.
	updated, err := s.applications.UpdateStatus(ctx, sess, applicationID, status)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if view := s.views[key]; view != nil {
		for i := range view {
			if view[i].ID == applicationID {
				view[i].Status = updated.Status
				break
			}
		}
	}
	s.mu.Unlock()

	result := &DecisionResult{Application: updated}
	if status != models.ApplicationStatusApproved {
		return result, nil
	}

	contract, warn := s.createContract(ctx, sess, updated)
	result.Contract = contract
	result.ContractWarning = warn
	return result, nil
}

// createContract synthesizes the contract for a freshly approved application.
// The amount is the proposed budget, falling back to the campaign's base
// budget; the title derives from the campaign title.
func (s *ApplicationService) createContract(ctx context.Context, sess backend.Session, app *models.Application) (*models.Contract, string) {
	campaign, err := s.campaigns.GetByID(ctx, sess, app.CampaignID)
	if err != nil {
		s.log.Warn("contract creation failed: campaign lookup",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
		s.recordPending(ctx, app, uuid.Nil, 0, "", err)
		return nil, MsgContractFailed
	}

	amount := campaign.Budget
	if app.ProposedBudget != nil && *app.ProposedBudget > 0 {
		amount = *app.ProposedBudget
	}
	title := fmt.Sprintf("Contrato — %s", campaign.Title)

	contract, err := s.contracts.Create(ctx, sess, repositories.CreateContractInput{
		CampaignID:  app.CampaignID,
		CreatorID:   app.CreatorID,
		BrandID:     campaign.BrandID,
		Amount:      amount,
		Title:       title,
		Description: app.Proposal,
		Status:      models.ContractStatusPending,
	})
	if err != nil {
		s.log.Warn("contract creation failed after approval",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
		s.recordPending(ctx, app, campaign.BrandID, amount, title, err)
		return nil, MsgContractFailed
	}

	return contract, ""
}

func (s *ApplicationService) recordPending(ctx context.Context, app *models.Application, brandID uuid.UUID, amount float64, title string, cause error) {
	if s.outbox == nil {
		return
	}
	errText := cause.Error()
	err := s.outbox.Record(ctx, outbox.PendingContract{
		ApplicationID: app.ID,
		CampaignID:    app.CampaignID,
		CreatorID:     app.CreatorID,
		BrandID:       brandID,
		Amount:        amount,
		Title:         title,
		Description:   app.Proposal,
		LastError:     &errText,
	})
	if err != nil {
		s.log.Error("failed to record pending contract",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}
}

// MsgContractFailed is shown when the approval committed but the contract
// could not be generated.
const MsgContractFailed = "Proposta aprovada, mas não foi possível gerar o contrato. Ele será criado automaticamente em breve."

func findApplication(apps []models.Application, id uuid.UUID) *models.Application {
	for i := range apps {
		if apps[i].ID == id {
			a := apps[i]
			return &a
		}
	}
	return nil
}
