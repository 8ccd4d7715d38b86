package models

import (
	"time"

	"github.com/google/uuid"
)

// Message types
const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

type Chat struct {
	RoomID          string     `json:"room_id"`
	Title           string     `json:"title"`
	ParticipantID   uuid.UUID  `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	LastMessage     string     `json:"last_message"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	UnreadCount     int        `json:"unread_count"`
}

type Message struct {
	ID       uuid.UUID `json:"id"`
	RoomID   string    `json:"room_id"`
	SenderID uuid.UUID `json:"sender_id"`
	Content  string    `json:"content"`
	Type     string    `json:"type"`
	FileURL  string    `json:"file_url,omitempty"`
	FileName string    `json:"file_name,omitempty"`
	// Pending marks a locally generated optimistic entry that has not been
	// confirmed by the backend yet.
	Pending   bool      `json:"pending,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
