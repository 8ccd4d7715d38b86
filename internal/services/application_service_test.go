package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/creatorhub/gateway/internal/outbox"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeApplicationAPI struct {
	mu          sync.Mutex
	apps        []models.Application
	updateErr   error
	updateCalls int
	// When set, UpdateStatus signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeApplicationAPI) ListByCampaign(ctx context.Context, s backend.Session, campaignID uuid.UUID, status string) ([]models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Application, len(f.apps))
	copy(out, f.apps)
	return out, nil
}

func (f *fakeApplicationAPI) UpdateStatus(ctx context.Context, s backend.Session, applicationID uuid.UUID, status string) (*models.Application, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.apps {
		if f.apps[i].ID == applicationID {
			f.apps[i].Status = status
			a := f.apps[i]
			return &a, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeContractAPI struct {
	mu        sync.Mutex
	createErr error
	created   []repositories.CreateContractInput
}

func (f *fakeContractAPI) Create(ctx context.Context, s backend.Session, in repositories.CreateContractInput) (*models.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
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

type fakeCampaignAPI struct {
	campaign *models.Campaign
	err      error
}

func (f *fakeCampaignAPI) GetByID(ctx context.Context, s backend.Session, id uuid.UUID) (*models.Campaign, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.campaign, nil
}

type fakeOutbox struct {
	mu       sync.Mutex
	recorded []outbox.PendingContract
}

func (f *fakeOutbox) Record(ctx context.Context, p outbox.PendingContract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, p)
	return nil
}

func newLifecycleFixture(t *testing.T) (*ApplicationService, *fakeApplicationAPI, *fakeContractAPI, *fakeOutbox, backend.Session, uuid.UUID, models.Application) {
	t.Helper()

	campaignID := uuid.New()
	budget := 1500.0
	app := models.Application{
		ID:             uuid.New(),
		CampaignID:     campaignID,
		CreatorID:      uuid.New(),
		Proposal:       "3 vídeos curtos para TikTok",
		ProposedBudget: &budget,
		Status:         models.ApplicationStatusPending,
	}

	apps := &fakeApplicationAPI{apps: []models.Application{app}}
	contracts := &fakeContractAPI{}
	campaigns := &fakeCampaignAPI{campaign: &models.Campaign{
		ID:      campaignID,
		BrandID: uuid.New(),
		Title:   "Lançamento Verão",
		Budget:  1000,
		Status:  models.CampaignStatusActive,
	}}
	ob := &fakeOutbox{}

	svc := NewApplicationService(apps, contracts, campaigns, ob, zap.NewNop())
	sess := backend.Session{UserID: uuid.New(), Token: "t"}
	return svc, apps, contracts, ob, sess, campaignID, app
}

func TestUpdateStatusApproveCreatesContract(t *testing.T) {
	svc, _, contracts, _, sess, campaignID, app := newLifecycleFixture(t)

	result, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if result.Application.Status != models.ApplicationStatusApproved {
		t.Errorf("status = %q, want approved", result.Application.Status)
	}
	if result.Contract == nil {
		t.Fatal("expected a contract")
	}
	if result.ContractWarning != "" {
		t.Errorf("unexpected warning %q", result.ContractWarning)
	}
	if len(contracts.created) != 1 {
		t.Fatalf("contract calls = %d, want 1", len(contracts.created))
	}
	in := contracts.created[0]
	if in.Amount != 1500 {
		t.Errorf("amount = %v, want proposed budget 1500", in.Amount)
	}
	if in.Title != "Contrato — Lançamento Verão" {
		t.Errorf("title = %q", in.Title)
	}
	if in.Status != models.ContractStatusPending {
		t.Errorf("status = %q, want pending", in.Status)
	}
}

func TestUpdateStatusApproveFallsBackToCampaignBudget(t *testing.T) {
	svc, apps, contracts, _, sess, campaignID, app := newLifecycleFixture(t)
	apps.mu.Lock()
	apps.apps[0].ProposedBudget = nil
	apps.mu.Unlock()

	if _, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(contracts.created) != 1 || contracts.created[0].Amount != 1000 {
		t.Errorf("amount = %+v, want campaign budget 1000", contracts.created)
	}
}

func TestUpdateStatusRejectIssuesNoContractCall(t *testing.T) {
	svc, _, contracts, _, sess, campaignID, app := newLifecycleFixture(t)

	result, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusRejected)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if result.Application.Status != models.ApplicationStatusRejected {
		t.Errorf("status = %q, want rejected", result.Application.Status)
	}
	if len(contracts.created) != 0 {
		t.Errorf("contract calls = %d, want 0", len(contracts.created))
	}

	apps, err := svc.ListApplications(context.Background(), sess, campaignID)
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if apps[0].Status != models.ApplicationStatusRejected {
		t.Errorf("list status = %q, want rejected", apps[0].Status)
	}
}

func TestUpdateStatusKeepsApprovalWhenContractFails(t *testing.T) {
	svc, _, contracts, ob, sess, campaignID, app := newLifecycleFixture(t)
	contracts.createErr = errors.New("backend down")

	result, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus should not fail when only the contract call fails: %v", err)
	}

	// Partial-failure invariant: approval stands.
	if result.Application.Status != models.ApplicationStatusApproved {
		t.Errorf("status = %q, want approved", result.Application.Status)
	}
	if result.Contract != nil {
		t.Error("no contract should be returned")
	}
	if result.ContractWarning == "" {
		t.Error("expected a user-facing contract warning")
	}

	// The failure leaves a durable marker for the reconciler.
	if len(ob.recorded) != 1 {
		t.Fatalf("outbox records = %d, want 1", len(ob.recorded))
	}
	if ob.recorded[0].ApplicationID != app.ID {
		t.Errorf("outbox application_id = %s, want %s", ob.recorded[0].ApplicationID, app.ID)
	}
}

func TestUpdateStatusFailedTransitionLeavesStateUntouched(t *testing.T) {
	svc, apps, _, _, sess, campaignID, app := newLifecycleFixture(t)
	if _, err := svc.ListApplications(context.Background(), sess, campaignID); err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	apps.updateErr = errors.New("500")

	if _, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved); err == nil {
		t.Fatal("expected error")
	}

	// No optimistic mutation happened.
	list, _ := svc.ListApplications(context.Background(), sess, campaignID)
	if list[0].Status != models.ApplicationStatusPending {
		t.Errorf("status = %q, want pending", list[0].Status)
	}
}

func TestUpdateStatusRejectsTerminalStates(t *testing.T) {
	svc, apps, contracts, _, sess, campaignID, app := newLifecycleFixture(t)
	apps.mu.Lock()
	apps.apps[0].Status = models.ApplicationStatusApproved
	apps.mu.Unlock()

	if _, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusRejected); !errors.Is(err, ErrNotPending) {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
	if apps.updateCalls != 0 {
		t.Errorf("update calls = %d, want 0", apps.updateCalls)
	}
	if len(contracts.created) != 0 {
		t.Errorf("contract calls = %d, want 0", len(contracts.created))
	}
}

func TestUpdateStatusGuardsConcurrentDecisionsOnSameRow(t *testing.T) {
	svc, apps, _, _, sess, campaignID, app := newLifecycleFixture(t)
	apps.started = make(chan struct{})
	apps.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved)
		done <- err
	}()

	// First call is now inside the backend request with the row guard held.
	<-apps.started

	_, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, models.ApplicationStatusApproved)
	if !errors.Is(err, ErrAlreadyProcessing) {
		t.Errorf("second call err = %v, want ErrAlreadyProcessing", err)
	}

	close(apps.release)
	if err := <-done; err != nil {
		t.Fatalf("first call: %v", err)
	}
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc, _, _, _, sess, campaignID, app := newLifecycleFixture(t)
	if _, err := svc.UpdateStatus(context.Background(), sess, campaignID, app.ID, "pending"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("err = %v, want ErrUnknownStatus", err)
	}
}
