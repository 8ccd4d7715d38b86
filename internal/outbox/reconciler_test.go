package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakePendingStore struct {
	pending  []PendingContract
	attempts map[uuid.UUID]string
	resolved map[uuid.UUID]uuid.UUID
}

func newFakePendingStore(pending ...PendingContract) *fakePendingStore {
	return &fakePendingStore{
		pending:  pending,
		attempts: make(map[uuid.UUID]string),
		resolved: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakePendingStore) ListUnresolved(ctx context.Context, limit int) ([]PendingContract, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakePendingStore) MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr string) error {
	f.attempts[id] = attemptErr
	return nil
}

func (f *fakePendingStore) MarkResolved(ctx context.Context, id, contractID uuid.UUID) error {
	f.resolved[id] = contractID
	return nil
}

type fakeContractCreator struct {
	err    error
	calls  int
	inputs []repositories.CreateContractInput
}

func (f *fakeContractCreator) Create(ctx context.Context, s backend.Session, in repositories.CreateContractInput) (*models.Contract, error) {
	f.calls++
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Contract{
		ID:         uuid.New(),
		CampaignID: in.CampaignID,
		CreatorID:  in.CreatorID,
		BrandID:    in.BrandID,
		Amount:     in.Amount,
		Title:      in.Title,
		Status:     in.Status,
	}, nil
}

func pendingMarker(attempts int) PendingContract {
	return PendingContract{
		ID:            uuid.New(),
		ApplicationID: uuid.New(),
		CampaignID:    uuid.New(),
		CreatorID:     uuid.New(),
		BrandID:       uuid.New(),
		Amount:        1500,
		Title:         "Contrato — Lançamento Verão",
		Attempts:      attempts,
	}
}

func TestRunResolvesPendingContract(t *testing.T) {
	marker := pendingMarker(0)
	store := newFakePendingStore(marker)
	contracts := &fakeContractCreator{}
	rec := NewReconciler(store, contracts, backend.Session{Token: "svc"}, 10, zap.NewNop())

	resolved, err := rec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolved != 1 {
		t.Errorf("resolved = %d, want 1", resolved)
	}

	if contracts.calls != 1 {
		t.Fatalf("contract calls = %d, want 1", contracts.calls)
	}
	in := contracts.inputs[0]
	if in.CampaignID != marker.CampaignID || in.CreatorID != marker.CreatorID || in.BrandID != marker.BrandID {
		t.Error("contract input does not carry the marker's parties")
	}
	if in.Amount != 1500 || in.Status != models.ContractStatusPending {
		t.Errorf("contract input amount/status = %v/%q", in.Amount, in.Status)
	}

	if _, ok := store.resolved[marker.ID]; !ok {
		t.Error("marker was not resolved")
	}
	if _, ok := store.attempts[marker.ID]; ok {
		t.Error("successful retry must not record an attempt")
	}
}

func TestRunRecordsFailedAttemptAndKeepsMarker(t *testing.T) {
	marker := pendingMarker(2)
	store := newFakePendingStore(marker)
	contracts := &fakeContractCreator{err: errors.New("backend unavailable")}
	rec := NewReconciler(store, contracts, backend.Session{Token: "svc"}, 10, zap.NewNop())

	resolved, err := rec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolved != 0 {
		t.Errorf("resolved = %d, want 0", resolved)
	}

	if _, ok := store.resolved[marker.ID]; ok {
		t.Error("failed retry must not resolve the marker")
	}
	if got := store.attempts[marker.ID]; got != "backend unavailable" {
		t.Errorf("recorded attempt error = %q", got)
	}
}

func TestRunSkipsMarkersOverAttemptLimit(t *testing.T) {
	exhausted := pendingMarker(10)
	fresh := pendingMarker(0)
	store := newFakePendingStore(exhausted, fresh)
	contracts := &fakeContractCreator{}
	rec := NewReconciler(store, contracts, backend.Session{Token: "svc"}, 10, zap.NewNop())

	resolved, err := rec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resolved != 1 {
		t.Errorf("resolved = %d, want 1 (only the fresh marker)", resolved)
	}

	if contracts.calls != 1 {
		t.Errorf("contract calls = %d, want 1: exhausted marker must not be retried", contracts.calls)
	}
	if _, ok := store.resolved[exhausted.ID]; ok {
		t.Error("exhausted marker must stay unresolved for manual review")
	}
	if _, ok := store.attempts[exhausted.ID]; ok {
		t.Error("skipping must not burn another attempt")
	}
}

func TestRunPropagatesListError(t *testing.T) {
	rec := NewReconciler(failingStore{}, &fakeContractCreator{}, backend.Session{}, 10, zap.NewNop())
	if _, err := rec.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type failingStore struct{}

func (failingStore) ListUnresolved(ctx context.Context, limit int) ([]PendingContract, error) {
	return nil, errors.New("db down")
}
func (failingStore) MarkAttempt(ctx context.Context, id uuid.UUID, attemptErr string) error {
	return nil
}
func (failingStore) MarkResolved(ctx context.Context, id, contractID uuid.UUID) error {
	return nil
}
