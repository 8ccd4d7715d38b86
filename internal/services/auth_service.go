package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrCodeAlreadyUsed    = errors.New("authorization code already processed")
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*repositories.LoginResult, error)
	ExchangeOAuthCode(ctx context.Context, provider, code string) (*repositories.LoginResult, error)
}

// CodeGuard deduplicates OAuth authorization codes so a re-entrant callback
// never triggers a second side-effecting exchange. Entries expire on their
// own; the guard is bounded by TTL, not by process lifetime.
type CodeGuard interface {
	FirstUse(ctx context.Context, code string) (bool, error)
}

// RedisCodeGuard backs the dedup set with SETNX + TTL.
type RedisCodeGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCodeGuard(client *redis.Client, ttl time.Duration) *RedisCodeGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCodeGuard{client: client, ttl: ttl}
}

func (g *RedisCodeGuard) FirstUse(ctx context.Context, code string) (bool, error) {
	return g.client.SetNX(ctx, "oauth:code:"+code, 1, g.ttl).Result()
}

// AuthService fronts the backend's session endpoints.
type AuthService struct {
	api   AuthAPI
	codes CodeGuard
	log   *zap.Logger
}

func NewAuthService(api AuthAPI, codes CodeGuard, log *zap.Logger) *AuthService {
	return &AuthService{api: api, codes: codes, log: log}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*repositories.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return s.api.Login(ctx, email, password)
}

// HandleOAuthCallback exchanges a provider code exactly once. A duplicate
// delivery of the same code is rejected before any backend call is made.
func (s *AuthService) HandleOAuthCallback(ctx context.Context, provider, code string) (*repositories.LoginResult, error) {
	if code == "" {
		return nil, ErrMissingCredentials
	}

	if s.codes != nil {
		first, err := s.codes.FirstUse(ctx, code)
		if err != nil {
			// Guard unavailable: proceed rather than lock the user out.
			s.log.Warn("oauth code guard unavailable", zap.Error(err))
		} else if !first {
			return nil, ErrCodeAlreadyUsed
		}
	}

	return s.api.ExchangeOAuthCode(ctx, provider, code)
}
