package auth

import "time"

// Role discriminates the three identity tiers.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// User is an end user (inspector / field staff).
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Mobile        string    `json:"mobile"`
	RoleTag       string    `json:"role"`
	DateOfJoining time.Time `json:"doj"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Admin is a tenant administrator who owns extinguishers up to a
// configured license limit.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Location     string    `json:"location"`
	Active       bool      `json:"is_active"`
	Licenses     int       `json:"number_of_licenses"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SuperAdmin is the single-purpose operator identity.
type SuperAdmin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is a resolved identity attached to a request after
// authentication.
type Principal struct {
	Role     Role
	ID       string
	Username string
	// Quota is the license limit captured in the bearer token at login
	// time. Changing the admin record afterwards does not affect it
	// until the admin logs in again. Zero for non-admin principals and
	// for session-authenticated requests, which carry no claims.
	Quota    int
	Location string
}

func (u *User) principal() Principal {
	return Principal{Role: RoleUser, ID: u.ID, Username: u.Username}
}

func (u *User) secretHash() string { return u.PasswordHash }

func (u *User) tokenQuota() *int { return nil }

func (a *Admin) principal() Principal {
	return Principal{Role: RoleAdmin, ID: a.ID, Username: a.Username, Quota: a.Licenses, Location: a.Location}
}

func (a *Admin) secretHash() string { return a.PasswordHash }

// tokenQuota snapshots the configured license limit into the token.
func (a *Admin) tokenQuota() *int {
	q := a.Licenses
	return &q
}

func (s *SuperAdmin) principal() Principal {
	return Principal{Role: RoleSuperAdmin, ID: s.ID, Username: s.Username}
}

func (s *SuperAdmin) secretHash() string { return s.PasswordHash }

func (s *SuperAdmin) tokenQuota() *int { return nil }
