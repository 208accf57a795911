package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"intellishield.dev/internal/audit"
	"intellishield.dev/internal/auth"
	"intellishield.dev/internal/obs"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionLogoutRequest struct {
	SessionID string `json:"session_id"`
}

// handleSession routes the cookie-based family. It authenticates with
// HTTP Basic on login and an opaque session_id cookie afterwards.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/session/") {
	case "signup":
		a.sessionSignup(w, r)
	case "login":
		a.sessionLogin(w, r)
	case "me":
		a.sessionMe(w, r)
	case "protected":
		a.sessionProtected(w, r)
	case "logout":
		a.sessionLogout(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) sessionSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	user := &auth.User{Username: strings.TrimSpace(req.Username)}
	if err := a.auth.RegisterUser(r.Context(), user, req.Password); err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			writeError(w, r, http.StatusConflict, "Username already exists")
			return
		}
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User registered successfully"})
}

func (a *API) sessionLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="session"`)
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	sessionID, principal, err := a.auth.LoginSession(r.Context(), username, password)
	if err != nil {
		obs.ObserveLogin("session", "failure")
		w.Header().Set("WWW-Authenticate", `Basic realm="session"`)
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	obs.ObserveLogin("session", "success")
	_ = audit.LogEvent(r.Context(), "auth.session.login", map[string]any{"username": principal.Username})

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Logged in successfully",
		"session_id": sessionID,
	})
}

func (a *API) sessionMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _, ok := a.sessionPrincipal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  principal.ID,
		"username": principal.Username,
		"role":     string(principal.Role),
	})
}

func (a *API) sessionProtected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _, ok := a.sessionPrincipal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "This user can connect to a protected endpoint after successfully authenticated",
		"user": map[string]any{
			"user_id":  principal.ID,
			"username": principal.Username,
		},
	})
}

// sessionLogout removes the session named in the body. Unknown ids are
// a 404, unlike token logout where a repeat is a 400.
func (a *API) sessionLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req sessionLogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.auth.LogoutSession(r.Context(), req.SessionID); err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			writeError(w, r, http.StatusNotFound, "Session not found")
			return
		}
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.session.logout", map[string]any{"session_id": req.SessionID})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Logged out successfully",
		"session_id": req.SessionID,
	})
}
