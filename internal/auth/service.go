package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"intellishield.dev/internal/ids"
)

// LoginTTL is the token lifetime requested by the login flow.
const LoginTTL = 30 * time.Minute

// subject is the identity-kind capability shared by the three tiers:
// a name, a secret to check and the claims to embed. It lets one login
// path serve users, admins and the super admin.
type subject interface {
	principal() Principal
	secretHash() string
	tokenQuota() *int
}

// Service performs credential verification, token issuance and
// credential resolution for both authentication strategies. The
// session and revocation registries are process-wide shared state
// owned by the service; both are safe for concurrent use and are
// never swept (see RevocationList).
type Service struct {
	store    Store
	issuer   *Issuer
	sessions *SessionRegistry
	revoked  *RevocationList
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSessionRegistry injects a shared session registry.
func WithSessionRegistry(r *SessionRegistry) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.sessions = r
		}
	}
}

// WithRevocationList injects a shared revocation list.
func WithRevocationList(l *RevocationList) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.revoked = l
		}
	}
}

// NewService constructs the authentication service.
func NewService(store Store, issuer *Issuer, opts ...ServiceOption) *Service {
	svc := &Service{
		store:    store,
		issuer:   issuer,
		sessions: NewSessionRegistry(),
		revoked:  NewRevocationList(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Sessions exposes the session registry for tests and wiring.
func (s *Service) Sessions() *SessionRegistry { return s.sessions }

// Revocations exposes the revocation list for tests and wiring.
func (s *Service) Revocations() *RevocationList { return s.revoked }

// LoginResult carries the issued token alongside the resolved identity.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// Login verifies the credentials of the given identity kind and issues
// a bearer token. Admin tokens embed the license limit configured at
// this moment; the claim stays authoritative until the next login.
func (s *Service) Login(ctx context.Context, role Role, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrUnauthorized
	}
	sub, err := s.findSubject(ctx, role, username)
	if err != nil {
		return LoginResult{}, ErrUnauthorized
	}
	if err := VerifyPassword(sub.secretHash(), password); err != nil {
		return LoginResult{}, ErrUnauthorized
	}
	principal := sub.principal()
	token, expiresAt, err := s.issuer.Issue(principal.Username, role, sub.tokenQuota(), LoginTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}

// Logout revokes the presented token. A second logout with the same
// literal token fails with ErrAlreadyRevoked.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.revoked.Revoke(token)
}

// AuthenticateToken resolves a bearer credential: signature and expiry
// first, then the revocation list, then the credential store. The
// returned principal carries the quota claim from the token, not a
// fresh read of the admin record.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return Principal{}, err
	}
	if s.revoked.IsRevoked(token) {
		return Principal{}, ErrTokenRevoked
	}
	sub, err := s.findSubject(ctx, claims.Role, claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	principal := sub.principal()
	if claims.Quota != nil {
		principal.Quota = *claims.Quota
	}
	return principal, nil
}

// LoginSession verifies end-user credentials and allocates an opaque
// session for the cookie strategy.
func (s *Service) LoginSession(ctx context.Context, username, password string) (string, Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", Principal{}, ErrUnauthorized
	}
	user, err := s.store.Users(ctx).FindByUsername(ctx, username)
	if err != nil {
		return "", Principal{}, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", Principal{}, ErrUnauthorized
	}
	sessionID := s.sessions.Create(SessionRef{Role: RoleUser, SubjectID: user.ID})
	return sessionID, user.principal(), nil
}

// AuthenticateSession resolves a session credential. Sessions are only
// minted for end users; no claims are attached and unknown identifiers
// fail with ErrInvalidSession.
func (s *Service) AuthenticateSession(ctx context.Context, sessionID string) (Principal, error) {
	ref, err := s.sessions.Resolve(sessionID)
	if err != nil {
		return Principal{}, err
	}
	if ref.Role != RoleUser {
		return Principal{}, ErrInvalidSession
	}
	user, err := s.store.Users(ctx).Find(ctx, ref.SubjectID)
	if err != nil {
		return Principal{}, ErrInvalidSession
	}
	return user.principal(), nil
}

// LogoutSession removes the session; unknown ids fail with
// ErrInvalidSession so the handler can answer 404.
func (s *Service) LogoutSession(ctx context.Context, sessionID string) error {
	return s.sessions.Remove(sessionID)
}

// RegisterUser stores a new end user with a hashed secret.
func (s *Service) RegisterUser(ctx context.Context, u *User, password string) error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return ErrInvalidInput
	}
	now := s.now().UTC()
	u.ID = ids.New()
	u.PasswordHash = hash
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.RoleTag == "" {
		u.RoleTag = "Unknown"
	}
	return s.store.Users(ctx).Create(ctx, u)
}

// RegisterAdmin stores a new tenant admin with a hashed secret and the
// configured license limit.
func (s *Service) RegisterAdmin(ctx context.Context, a *Admin, password string) error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return ErrInvalidInput
	}
	now := s.now().UTC()
	a.ID = ids.New()
	a.PasswordHash = hash
	a.Active = true
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.store.Admins(ctx).Create(ctx, a)
}

// RegisterSuperAdmin stores the operator identity.
func (s *Service) RegisterSuperAdmin(ctx context.Context, sa *SuperAdmin, password string) error {
	if strings.TrimSpace(sa.Username) == "" {
		return ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return ErrInvalidInput
	}
	sa.ID = ids.New()
	sa.PasswordHash = hash
	sa.CreatedAt = s.now().UTC()
	return s.store.SuperAdmins(ctx).Create(ctx, sa)
}

// ListUsers pages through registered end users.
func (s *Service) ListUsers(ctx context.Context, skip, limit int) ([]*User, error) {
	return s.store.Users(ctx).List(ctx, skip, limit)
}

// ListAdmins pages through registered tenant admins.
func (s *Service) ListAdmins(ctx context.Context, skip, limit int) ([]*Admin, error) {
	return s.store.Admins(ctx).List(ctx, skip, limit)
}

func (s *Service) findSubject(ctx context.Context, role Role, username string) (subject, error) {
	switch role {
	case RoleUser:
		return s.store.Users(ctx).FindByUsername(ctx, username)
	case RoleAdmin:
		return s.store.Admins(ctx).FindByUsername(ctx, username)
	case RoleSuperAdmin:
		return s.store.SuperAdmins(ctx).FindByUsername(ctx, username)
	default:
		return nil, ErrNotFound
	}
}
