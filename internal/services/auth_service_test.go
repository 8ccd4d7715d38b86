package services

import (
	"context"
	"errors"
	"testing"

	"github.com/creatorhub/gateway/internal/repositories"
	"go.uber.org/zap"
)

type fakeAuthAPI struct {
	exchangeCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*repositories.LoginResult, error) {
	return &repositories.LoginResult{Token: "backend-token"}, nil
}

func (f *fakeAuthAPI) ExchangeOAuthCode(ctx context.Context, provider, code string) (*repositories.LoginResult, error) {
	f.exchangeCalls++
	return &repositories.LoginResult{Token: "backend-token"}, nil
}

type fakeCodeGuard struct {
	seen map[string]bool
	err  error
}

func (f *fakeCodeGuard) FirstUse(ctx context.Context, code string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[code] {
		return false, nil
	}
	f.seen[code] = true
	return true, nil
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{}, nil, zap.NewNop())

	for _, tt := range []struct{ email, password string }{
		{"", "secret"},
		{"ana@example.com", ""},
		{"   ", "secret"},
	} {
		if _, err := svc.Login(context.Background(), tt.email, tt.password); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("Login(%q, %q) = %v, want ErrMissingCredentials", tt.email, tt.password, err)
		}
	}
}

func TestOAuthCallbackExchangesCodeOnce(t *testing.T) {
	api := &fakeAuthAPI{}
	guard := &fakeCodeGuard{seen: make(map[string]bool)}
	svc := NewAuthService(api, guard, zap.NewNop())

	if _, err := svc.HandleOAuthCallback(context.Background(), "google", "abc123"); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	if _, err := svc.HandleOAuthCallback(context.Background(), "google", "abc123"); !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Fatalf("second callback = %v, want ErrCodeAlreadyUsed", err)
	}
	if api.exchangeCalls != 1 {
		t.Errorf("exchange calls = %d, want 1", api.exchangeCalls)
	}
}

func TestOAuthCallbackProceedsWhenGuardUnavailable(t *testing.T) {
	api := &fakeAuthAPI{}
	guard := &fakeCodeGuard{err: errors.New("redis down")}
	svc := NewAuthService(api, guard, zap.NewNop())

	// Locking users out because the dedup store is down would be worse than
	// risking a duplicate exchange.
	if _, err := svc.HandleOAuthCallback(context.Background(), "google", "abc123"); err != nil {
		t.Fatalf("callback with unavailable guard: %v", err)
	}
	if api.exchangeCalls != 1 {
		t.Errorf("exchange calls = %d, want 1", api.exchangeCalls)
	}
}
