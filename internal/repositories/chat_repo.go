package repositories

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
)

type ChatRepo struct {
	client *backend.Client
}

func NewChatRepo(client *backend.Client) *ChatRepo {
	return &ChatRepo{client: client}
}

func (r *ChatRepo) ListChats(ctx context.Context, s backend.Session) ([]models.Chat, error) {
	var chats []models.Chat
	if _, err := r.client.Do(ctx, s, http.MethodGet, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *ChatRepo) ListMessages(ctx context.Context, s backend.Session, roomID string) ([]models.Message, error) {
	path := fmt.Sprintf("/chats/%s/messages", url.PathEscape(roomID))
	var messages []models.Message
	if _, err := r.client.Do(ctx, s, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatRepo) SendMessage(ctx context.Context, s backend.Session, roomID, content string) (*models.Message, error) {
	path := fmt.Sprintf("/chats/%s/messages", url.PathEscape(roomID))
	body := map[string]string{
		"content": content,
		"type":    models.MessageTypeText,
	}

	var msg models.Message
	if _, err := r.client.Do(ctx, s, http.MethodPost, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendFile posts a file message as multipart form data.
func (r *ChatRepo) SendFile(ctx context.Context, s backend.Session, roomID, caption, fileName string, file io.Reader) (*models.Message, error) {
	path := fmt.Sprintf("/chats/%s/messages", url.PathEscape(roomID))
	fields := map[string]string{
		"type": models.MessageTypeFile,
	}
	if caption != "" {
		fields["content"] = caption
	}

	var msg models.Message
	if _, err := r.client.DoMultipart(ctx, s, path, fields, "file", fileName, file, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
