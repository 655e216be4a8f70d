package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/harborexpo/backend/internal/pkg/security"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
	redrepo "github.com/harborexpo/backend/internal/repo/redis"
	authsvc "github.com/harborexpo/backend/internal/services/auth"
)

type fakeAdminStore struct {
	accounts map[string]pgrepo.AdminAccount
}

func (f *fakeAdminStore) FindByEmail(_ context.Context, email string) (pgrepo.AdminAccount, error) {
	account, ok := f.accounts[email]
	if !ok {
		return pgrepo.AdminAccount{}, pgrepo.ErrAdminAccountNotFound
	}
	return account, nil
}

func (f *fakeAdminStore) FindByID(_ context.Context, id int64) (pgrepo.AdminAccount, error) {
	for _, account := range f.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return pgrepo.AdminAccount{}, pgrepo.ErrAdminAccountNotFound
}

func TestLoginPassword(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	res, err := svc.LoginPassword(ctx, "Admin@Harborexpo.Test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Me.Email != "admin@harborexpo.test" {
		t.Fatalf("unexpected me email: %q", res.Me.Email)
	}
	if res.Me.Role != "ADMIN" {
		t.Fatalf("unexpected me role: %q", res.Me.Role)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued")
	}

	if _, err := svc.LoginPassword(ctx, "admin@harborexpo.test", "wrong"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("wrong password should be unauthorized, got err=%v", err)
	}
	if _, err := svc.LoginPassword(ctx, "nobody@harborexpo.test", "correct horse"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("unknown email should be unauthorized, got err=%v", err)
	}
	if _, err := svc.LoginPassword(ctx, "disabled@harborexpo.test", "correct horse"); !errors.Is(err, authsvc.ErrAccountDisabled) {
		t.Fatalf("disabled account should be rejected, got err=%v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.LoginPassword(ctx, "admin@harborexpo.test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.LoginPassword(ctx, "admin@harborexpo.test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.LoginPassword(ctx, "admin@harborexpo.test", "correct horse")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.LoginPassword(ctx, "admin@harborexpo.test", "correct horse")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for i, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("session %d should be unauthorized after logout all, got err=%v", i, err)
		}
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	hash, err := security.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	accounts := &fakeAdminStore{accounts: map[string]pgrepo.AdminAccount{
		"admin@harborexpo.test": {
			ID:           1,
			Email:        "admin@harborexpo.test",
			DisplayName:  "Harbor Admin",
			Role:         "ADMIN",
			PasswordHash: hash,
			IsActive:     true,
		},
		"disabled@harborexpo.test": {
			ID:           2,
			Email:        "disabled@harborexpo.test",
			DisplayName:  "Former Admin",
			Role:         "ADMIN",
			PasswordHash: hash,
			IsActive:     false,
		},
	}}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, accounts, 30*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}
