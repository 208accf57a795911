package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"intellishield.dev/internal/audit"
	"intellishield.dev/internal/auth"
	"intellishield.dev/internal/obs"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	DOJ      string `json:"doj"`
	Role     string `json:"role"`
}

type createAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Location string `json:"location"`
	Licenses int    `json:"number_of_licenses"`
}

type createSuperAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminListEntry struct {
	Username     string `json:"username"`
	Location     string `json:"location"`
	LicenseCount int    `json:"license_count"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/users/") {
	case "":
		switch r.Method {
		case http.MethodPost:
			a.createUser(w, r)
		case http.MethodGet:
			a.listUsers(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	case "login":
		a.login(w, r, auth.RoleUser)
	case "logout":
		a.logout(w, r, auth.RoleUser)
	case "protected":
		a.protectedProbe(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleAdmins(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/admins/") {
	case "":
		switch r.Method {
		case http.MethodPost:
			a.createAdmin(w, r)
		case http.MethodGet:
			a.listAdmins(w, r, false)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	case "admin_list":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listAdmins(w, r, true)
	case "login":
		a.login(w, r, auth.RoleAdmin)
	case "logout":
		a.logout(w, r, auth.RoleAdmin)
	case "protected":
		a.protectedProbe(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleGodmode(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/godmode/") {
	case "":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.createSuperAdmin(w, r)
	case "login":
		a.login(w, r, auth.RoleSuperAdmin)
	case "logout":
		a.logout(w, r, auth.RoleSuperAdmin)
	case "protected":
		a.protectedProbe(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// login accepts form-encoded credentials and answers with a bearer
// token. The extra identity fields in the response depend on the tier.
func (a *API) login(w http.ResponseWriter, r *http.Request, role auth.Role) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	res, err := a.auth.Login(r.Context(), role, username, password)
	if err != nil {
		obs.ObserveLogin(string(role), "failure")
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	obs.ObserveLogin(string(role), "success")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"kind":       string(role),
		"username":   res.Principal.Username,
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
	})

	payload := map[string]any{
		"access_token": res.Token,
		"token_type":   "bearer",
	}
	switch role {
	case auth.RoleUser:
		payload["username"] = res.Principal.Username
	case auth.RoleAdmin:
		payload["admin_id"] = res.Principal.ID
		payload["location"] = res.Principal.Location
	case auth.RoleSuperAdmin:
		payload["admin_id"] = res.Principal.ID
		payload["username"] = res.Principal.Username
	}
	writeJSON(w, http.StatusOK, payload)
}

// logout revokes the presented token. Revoking the same literal token
// twice is a client error.
func (a *API) logout(w http.ResponseWriter, r *http.Request, role auth.Role) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	if err := a.auth.Logout(r.Context(), token); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{"kind": string(role)})
	writeJSON(w, http.StatusOK, map[string]any{"msg": "Logged out successfully"})
}

// protectedProbe verifies the bearer credential end to end.
func (a *API) protectedProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, _, ok := a.bearerPrincipal(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "This is a protected route"})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	user := &auth.User{
		Username: strings.TrimSpace(req.Username),
		Name:     req.Name,
		Mobile:   req.Mobile,
		RoleTag:  req.Role,
	}
	if req.DOJ != "" {
		doj, err := time.Parse("2006-01-02", req.DOJ)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "doj must be YYYY-MM-DD")
			return
		}
		user.DateOfJoining = doj
	}
	if err := a.auth.RegisterUser(r.Context(), user, req.Password); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.user.create", map[string]any{"username": user.Username})
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	if req.Licenses < 0 {
		writeError(w, r, http.StatusBadRequest, "number_of_licenses must be >= 0")
		return
	}
	admin := &auth.Admin{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		FullName: req.FullName,
		Location: req.Location,
		Licenses: req.Licenses,
	}
	if err := a.auth.RegisterAdmin(r.Context(), admin, req.Password); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.admin.create", map[string]any{
		"username": admin.Username,
		"licenses": admin.Licenses,
	})
	writeJSON(w, http.StatusCreated, admin)
}

func (a *API) createSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var req createSuperAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	sa := &auth.SuperAdmin{Username: strings.TrimSpace(req.Username)}
	if err := a.auth.RegisterSuperAdmin(r.Context(), sa, req.Password); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.superadmin.create", map[string]any{"username": sa.Username})
	writeJSON(w, http.StatusCreated, map[string]any{"id": sa.ID, "username": sa.Username})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	users, err := a.auth.ListUsers(r.Context(), skip, limit)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) listAdmins(w http.ResponseWriter, r *http.Request, short bool) {
	skip, limit, err := parsePage(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	admins, err := a.auth.ListAdmins(r.Context(), skip, limit)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if !short {
		writeJSON(w, http.StatusOK, admins)
		return
	}
	entries := make([]adminListEntry, 0, len(admins))
	for _, admin := range admins {
		entries = append(entries, adminListEntry{
			Username:     admin.Username,
			Location:     admin.Location,
			LicenseCount: admin.Licenses,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func parsePage(r *http.Request) (skip, limit int, err error) {
	skip, err = parseQueryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parseQueryInt(r, "limit", 10)
	if err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func parseQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, errInvalidQueryInt(name)
	}
	return val, nil
}

type errInvalidQueryInt string

func (e errInvalidQueryInt) Error() string {
	return string(e) + " must be a non-negative integer"
}
