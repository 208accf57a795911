package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer("test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return issuer
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	quota := 5
	token, expiresAt, err := issuer.Issue("chief-admin", RoleAdmin, &quota, LoginTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "chief-admin" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.Quota == nil || *claims.Quota != 5 {
		t.Fatalf("quota claim not preserved: %v", claims.Quota)
	}
}

func TestIssueDefaultsTTL(t *testing.T) {
	issuer := newTestIssuer(t)

	_, expiresAt, err := issuer.Issue("worker", RoleUser, nil, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	remaining := time.Until(expiresAt)
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Fatalf("expected ~1h default ttl, got %v", remaining)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue("worker", RoleUser, nil, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestIssuer(t)
	token, _, err := issuer.Issue("worker", RoleUser, nil, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewIssuer("different-secret", "HS256")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	issuer := newTestIssuer(t)

	if _, _, err := issuer.Issue("", RoleUser, nil, time.Minute); err == nil {
		t.Fatal("expected issue to reject empty subject")
	}

	if _, err := issuer.Verify("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
	if _, err := issuer.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

// A token whose signature is fine but whose subject claim is absent
// must fail verification, never pass as anonymous.
func TestVerifyRejectsMissingSubject(t *testing.T) {
	issuer := newTestIssuer(t)

	// correctly signed with the issuer's secret, but no subject claim
	claims := Claims{
		Role: RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for subject-less token, got %v", err)
	}
}

func TestNewIssuerValidatesConfig(t *testing.T) {
	if _, err := NewIssuer("", "HS256"); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewIssuer("secret", "RS256"); err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}
	for _, alg := range []string{"", "HS256", "HS384", "HS512", "hs256"} {
		if _, err := NewIssuer("secret", alg); err != nil {
			t.Fatalf("NewIssuer(%q): %v", alg, err)
		}
	}
}
