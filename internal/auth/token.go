package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "intellishield"

// DefaultTokenTTL applies when the caller does not request a lifetime.
const DefaultTokenTTL = time.Hour

// Claims are the JWT claims carried by every issued token. Quota is
// only present for admin subjects and snapshots the license limit
// configured at the moment of issuance.
type Claims struct {
	Role  Role `json:"role"`
	Quota *int `json:"lic,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies bearer tokens with a symmetric secret.
// Secret and algorithm come from external configuration and stay
// constant for the process lifetime.
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewIssuer builds an Issuer for the given secret and HMAC algorithm
// name (HS256, HS384 or HS512).
func NewIssuer(secret, algorithm string) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	var method jwt.SigningMethod
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	return &Issuer{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the subject. A non-positive ttl falls back
// to DefaultTokenTTL.
func (i *Issuer) Issue(subject string, role Role, quota *int, ttl time.Duration) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := i.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Role:  role,
		Quota: quota,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and required claims. Expiry is reported
// as ErrTokenExpired; every other failure, including a missing subject
// claim, is ErrInvalidToken. A token without a subject is never
// treated as anonymous.
func (i *Issuer) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != i.method.Alg() {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	switch claims.Role {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
