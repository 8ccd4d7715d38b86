package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PendingContract is a durable marker for an application that was approved
// while the follow-up contract creation failed. The approval is never rolled
// back; the marker lets the reconciler retry until a contract exists.
type PendingContract struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	CampaignID    uuid.UUID  `json:"campaign_id"`
	CreatorID     uuid.UUID  `json:"creator_id"`
	BrandID       uuid.UUID  `json:"brand_id"`
	Amount        float64    `json:"amount"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Attempts      int        `json:"attempts"`
	LastError     *string    `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Record inserts a marker; at most one unresolved marker exists per
// application, so a retried approval does not spawn duplicates.
func (r *Repo) Record(ctx context.Context, p PendingContract) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pending_contracts (application_id, campaign_id, creator_id, brand_id, amount, title, description, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (application_id) WHERE resolved_at IS NULL DO NOTHING
	`, p.ApplicationID, p.CampaignID, p.CreatorID, p.BrandID, p.Amount, p.Title, p.Description, p.LastError)
	return err
}

func (r *Repo) ListUnresolved(ctx context.Context, limit int) ([]PendingContract, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, campaign_id, creator_id, brand_id,
		       amount, title, description, attempts, last_error, created_at, resolved_at
		FROM pending_contracts
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingContract
	for rows.Next() {
		var p PendingContract
		if err := rows.Scan(&p.ID, &p.ApplicationID, &p.CampaignID, &p.CreatorID, &p.BrandID,
			&p.Amount, &p.Title, &p.Description, &p.Attempts, &p.LastError, &p.CreatedAt, &p.ResolvedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, nil
}

func (r *Repo) MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_contracts SET attempts = attempts + 1, last_error = $1 WHERE id = $2
	`, attemptErr, id)
	return err
}

func (r *Repo) MarkResolved(ctx context.Context, id, contractID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_contracts SET resolved_at = now(), contract_id = $1, last_error = NULL WHERE id = $2
	`, contractID, id)
	return err
}
