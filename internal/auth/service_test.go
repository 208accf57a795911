package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewInMemory(), newTestIssuer(t))
}

func seedAdmin(t *testing.T, svc *Service, username, password string, licenses int) *Admin {
	t.Helper()
	admin := &Admin{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test Admin",
		Location: "Block A",
		Licenses: licenses,
	}
	if err := svc.RegisterAdmin(context.Background(), admin, password); err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	return admin
}

func TestLoginAndAuthenticateAdmin(t *testing.T) {
	svc := newTestService(t)
	seedAdmin(t, svc, "acme", "s3cret", 7)

	res, err := svc.Login(context.Background(), RoleAdmin, "acme", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("empty token")
	}
	if res.Principal.Role != RoleAdmin || res.Principal.Username != "acme" {
		t.Fatalf("unexpected principal: %+v", res.Principal)
	}

	principal, err := svc.AuthenticateToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if principal.Quota != 7 {
		t.Fatalf("expected quota 7 from token claim, got %d", principal.Quota)
	}
	if principal.Location != "Block A" {
		t.Fatalf("expected location from store, got %q", principal.Location)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	seedAdmin(t, svc, "acme", "s3cret", 1)

	cases := []struct {
		name     string
		role     Role
		username string
		password string
	}{
		{"wrong password", RoleAdmin, "acme", "nope"},
		{"unknown username", RoleAdmin, "ghost", "s3cret"},
		{"wrong tier", RoleUser, "acme", "s3cret"},
		{"empty password", RoleAdmin, "acme", ""},
		{"empty username", RoleAdmin, "", "s3cret"},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.role, tc.username, tc.password); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", tc.name, err)
		}
	}
}

func TestQuotaClaimIsLoginSnapshot(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store, newTestIssuer(t))
	seedAdmin(t, svc, "acme", "s3cret", 3)

	res, err := svc.Login(context.Background(), RoleAdmin, "acme", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Raise the stored limit after login; the existing token keeps the
	// value embedded at issuance.
	store.mu.Lock()
	store.admins["acme"].Licenses = 10
	store.mu.Unlock()
	principal, err := svc.AuthenticateToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if principal.Quota != 3 {
		t.Fatalf("expected snapshot quota 3, got %d", principal.Quota)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	seedAdmin(t, svc, "acme", "s3cret", 1)

	res, err := svc.Login(context.Background(), RoleAdmin, "acme", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.AuthenticateToken(context.Background(), res.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if err := svc.Logout(context.Background(), res.Token); !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked on repeat logout, got %v", err)
	}
}

func TestAuthenticateTokenUnknownSubject(t *testing.T) {
	svc := newTestService(t)

	// Issue a valid token for a subject that never existed in the store.
	token, _, err := svc.issuer.Issue("phantom", RoleAdmin, nil, LoginTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.AuthenticateToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	user := &User{Username: "worker", Name: "Worker One", Mobile: "555-0100"}
	if err := svc.RegisterUser(context.Background(), user, "hunter2"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	sessionID, principal, err := svc.LoginSession(context.Background(), "worker", "hunter2")
	if err != nil {
		t.Fatalf("LoginSession: %v", err)
	}
	if principal.Role != RoleUser || principal.Username != "worker" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	got, err := svc.AuthenticateSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("AuthenticateSession: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("session resolved to wrong subject: %s != %s", got.ID, user.ID)
	}

	if err := svc.LogoutSession(context.Background(), sessionID); err != nil {
		t.Fatalf("LogoutSession: %v", err)
	}
	if err := svc.LogoutSession(context.Background(), sessionID); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for unknown session, got %v", err)
	}
	if _, err := svc.AuthenticateSession(context.Background(), sessionID); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}
}

func TestAuthenticateSessionRejectsNonUserRef(t *testing.T) {
	svc := newTestService(t)
	admin := seedAdmin(t, svc, "acme", "s3cret", 3)

	sessionID := svc.Sessions().Create(SessionRef{Role: RoleAdmin, SubjectID: admin.ID})
	if _, err := svc.AuthenticateSession(context.Background(), sessionID); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for non-user session, got %v", err)
	}
}

func TestLoginSessionRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	user := &User{Username: "worker", Name: "Worker One"}
	if err := svc.RegisterUser(context.Background(), user, "hunter2"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := svc.LoginSession(context.Background(), "worker", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.LoginSession(context.Background(), "ghost", "hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	seedAdmin(t, svc, "acme", "s3cret", 1)

	dup := &Admin{Username: "acme", Email: "other@example.com"}
	if err := svc.RegisterAdmin(context.Background(), dup, "pw"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterUserDefaultsRoleTag(t *testing.T) {
	svc := newTestService(t)
	user := &User{Username: "worker"}
	if err := svc.RegisterUser(context.Background(), user, "pw"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.RoleTag != "Unknown" {
		t.Fatalf("expected default role tag, got %q", user.RoleTag)
	}
	if user.ID == "" || user.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamps: %+v", user)
	}
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewInMemory(), newTestIssuer(t), WithClock(func() time.Time { return fixed }))

	user := &User{Username: "worker"}
	if err := svc.RegisterUser(context.Background(), user, "pw"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !user.CreatedAt.Equal(fixed) {
		t.Fatalf("expected fixed clock, got %v", user.CreatedAt)
	}
}
