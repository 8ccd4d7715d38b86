package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
)

type NotificationRepo struct {
	client *backend.Client
}

func NewNotificationRepo(client *backend.Client) *NotificationRepo {
	return &NotificationRepo{client: client}
}

func (r *NotificationRepo) List(ctx context.Context, s backend.Session, page, perPage int) ([]models.Notification, *backend.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	path := fmt.Sprintf("/notifications?page=%d&per_page=%d", page, perPage)
	var notifications []models.Notification
	pag, err := r.client.Do(ctx, s, http.MethodGet, path, nil, &notifications)
	if err != nil {
		return nil, nil, err
	}
	return notifications, pag, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, s backend.Session) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if _, err := r.client.Do(ctx, s, http.MethodGet, "/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, s backend.Session, id uuid.UUID) error {
	_, err := r.client.Do(ctx, s, http.MethodPut, fmt.Sprintf("/notifications/%s/read", id), nil, nil)
	return err
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, s backend.Session) error {
	_, err := r.client.Do(ctx, s, http.MethodPut, "/notifications/read-all", nil, nil)
	return err
}

func (r *NotificationRepo) Delete(ctx context.Context, s backend.Session, id uuid.UUID) error {
	_, err := r.client.Do(ctx, s, http.MethodDelete, "/notifications/"+id.String(), nil, nil)
	return err
}
