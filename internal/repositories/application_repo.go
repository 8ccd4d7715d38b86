package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
)

// ApplicationRepo manages creator applications through the remote API.
type ApplicationRepo struct {
	client *backend.Client
}

func NewApplicationRepo(client *backend.Client) *ApplicationRepo {
	return &ApplicationRepo{client: client}
}

func (r *ApplicationRepo) ListByCampaign(ctx context.Context, s backend.Session, campaignID uuid.UUID, status string) ([]models.Application, error) {
	path := fmt.Sprintf("/campaigns/%s/applications", campaignID)
	if status != "" {
		path += "?status=" + status
	}

	var apps []models.Application
	if _, err := r.client.Do(ctx, s, http.MethodGet, path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateStatus issues the approve/reject transition. The backend exposes the
// decision as dedicated endpoints rather than a generic PATCH body.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, s backend.Session, applicationID uuid.UUID, status string) (*models.Application, error) {
	var action string
	switch status {
	case models.ApplicationStatusApproved:
		action = "approve"
	case models.ApplicationStatusRejected:
		action = "reject"
	default:
		return nil, fmt.Errorf("unsupported application status %q", status)
	}

	var app models.Application
	path := fmt.Sprintf("/applications/%s/%s", applicationID, action)
	if _, err := r.client.Do(ctx, s, http.MethodPatch, path, nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
