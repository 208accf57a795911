package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"intellishield.dev/internal/auth"
)

const (
	authHeader    = "Authorization"
	bearer        = "Bearer "
	sessionCookie = "session_id"
)

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// bearerPrincipal resolves the bearer credential on the request and
// returns a request whose context carries the principal, so audit
// entries written further down the handler pick it up. A missing
// header is treated the same as an invalid token.
func (a *API) bearerPrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, *http.Request, bool) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return auth.Principal{}, r, false
	}
	principal, err := a.auth.AuthenticateToken(r.Context(), token)
	if err != nil {
		handleAuthError(w, r, err)
		return auth.Principal{}, r, false
	}
	return principal, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)), true
}

// requireAdmin resolves the bearer credential and insists on the admin
// tier.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Principal, *http.Request, bool) {
	principal, r, ok := a.bearerPrincipal(w, r)
	if !ok {
		return auth.Principal{}, r, false
	}
	if principal.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusUnauthorized, "admin credential required")
		return auth.Principal{}, r, false
	}
	return principal, r, true
}

// sessionPrincipal resolves the cookie credential on the request and
// attaches the principal to the returned request's context.
func (a *API) sessionPrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, *http.Request, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, r, http.StatusUnauthorized, "invalid session ID")
		return auth.Principal{}, r, false
	}
	principal, err := a.auth.AuthenticateSession(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid session ID")
		return auth.Principal{}, r, false
	}
	return principal, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)), true
}

// handleAuthError maps credential failures onto status codes. Every
// flavor of bad token answers 401; only a repeated logout is 400.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		writeError(w, r, http.StatusUnauthorized, "token revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidSession):
		writeError(w, r, http.StatusUnauthorized, "invalid session ID")
	case errors.Is(err, auth.ErrAlreadyRevoked):
		writeError(w, r, http.StatusBadRequest, "Token already blacklisted")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "Username already registered")
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
