package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types pushed by the marketplace backend
const (
	NotificationTypeLoginDetected    = "login_detected"
	NotificationTypeNewProject       = "new_project"
	NotificationTypeProjectApproved  = "project_approved"
	NotificationTypeProjectRejected  = "project_rejected"
	NotificationTypeProposalApproved = "proposal_approved"
	NotificationTypeProposalRejected = "proposal_rejected"
	NotificationTypeNewMessage       = "new_message"
)

type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// RoomID extracts the chat room referenced by a notification payload, if any.
// Used to suppress alerting for a room the user is already viewing.
func (n *Notification) RoomID() string {
	if n.Data == nil {
		return ""
	}
	if v, ok := n.Data["room_id"].(string); ok {
		return v
	}
	return ""
}

func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeLoginDetected,
		NotificationTypeNewProject,
		NotificationTypeProjectApproved,
		NotificationTypeProjectRejected,
		NotificationTypeProposalApproved,
		NotificationTypeProposalRejected,
		NotificationTypeNewMessage:
		return true
	}
	return false
}
