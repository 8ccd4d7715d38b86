package outbox

import (
	"context"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContractCreator interface {
	Create(ctx context.Context, s backend.Session, in repositories.CreateContractInput) (*models.Contract, error)
}

type PendingStore interface {
	ListUnresolved(ctx context.Context, limit int) ([]PendingContract, error)
	MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr string) error
	MarkResolved(ctx context.Context, id, contractID uuid.UUID) error
}

// Reconciler retries pending contract markers against the backend using a
// service credential. Each pass is bounded; a contract that keeps failing
// stays in the outbox with its attempt count and last error visible.
type Reconciler struct {
	store       PendingStore
	contracts   ContractCreator
	session     backend.Session
	maxAttempts int
	log         *zap.Logger
}

func NewReconciler(store PendingStore, contracts ContractCreator, session backend.Session, maxAttempts int, log *zap.Logger) *Reconciler {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Reconciler{
		store:       store,
		contracts:   contracts,
		session:     session,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Run processes one reconciliation pass and reports how many markers were
// resolved.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	pending, err := r.store.ListUnresolved(ctx, 20)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, p := range pending {
		if p.Attempts >= r.maxAttempts {
			r.log.Warn("pending contract exceeded max attempts, needs manual review",
				zap.String("application_id", p.ApplicationID.String()),
				zap.Int("attempts", p.Attempts),
			)
			continue
		}

		contract, err := r.contracts.Create(ctx, r.session, repositories.CreateContractInput{
			CampaignID:  p.CampaignID,
			CreatorID:   p.CreatorID,
			BrandID:     p.BrandID,
			Amount:      p.Amount,
			Title:       p.Title,
			Description: p.Description,
			Status:      models.ContractStatusPending,
		})
		if err != nil {
			r.log.Warn("contract retry failed",
				zap.String("application_id", p.ApplicationID.String()),
				zap.Error(err),
			)
			if markErr := r.store.MarkAttempt(ctx, p.ID, err.Error()); markErr != nil {
				r.log.Error("failed to record attempt", zap.Error(markErr))
			}
			continue
		}

		if err := r.store.MarkResolved(ctx, p.ID, contract.ID); err != nil {
			r.log.Error("failed to mark pending contract resolved",
				zap.String("application_id", p.ApplicationID.String()),
				zap.Error(err),
			)
			continue
		}

		r.log.Info("pending contract resolved",
			zap.String("application_id", p.ApplicationID.String()),
			zap.String("contract_id", contract.ID.String()),
		)
		resolved++
	}

	return resolved, nil
}
