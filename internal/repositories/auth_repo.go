package repositories

import (
	"context"
	"net/http"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/models"
)

// AuthRepo exchanges credentials for backend-issued bearer tokens.
type AuthRepo struct {
	client *backend.Client
}

func NewAuthRepo(client *backend.Client) *AuthRepo {
	return &AuthRepo{client: client}
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (r *AuthRepo) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResult
	if _, err := r.client.Do(ctx, backend.Session{}, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExchangeOAuthCode trades a provider authorization code for a session.
func (r *AuthRepo) ExchangeOAuthCode(ctx context.Context, provider, code string) (*LoginResult, error) {
	body := map[string]string{
		"provider": provider,
		"code":     code,
	}

	var result LoginResult
	if _, err := r.client.Do(ctx, backend.Session{}, http.MethodPost, "/auth/oauth/callback", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
