package auth

import "context"

// Store describes the external credential store backing the three
// identity tiers. Implementations must return ErrAlreadyExists on
// duplicate usernames and ErrNotFound on missing records.
type Store interface {
	Users(ctx context.Context) UserStore
	Admins(ctx context.Context) AdminStore
	SuperAdmins(ctx context.Context) SuperAdminStore
}

// UserStore manages end-user records.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	Find(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, skip, limit int) ([]*User, error)
}

// AdminStore manages tenant-admin records.
type AdminStore interface {
	Create(ctx context.Context, a *Admin) error
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	Find(ctx context.Context, id string) (*Admin, error)
	List(ctx context.Context, skip, limit int) ([]*Admin, error)
}

// SuperAdminStore manages the operator records.
type SuperAdminStore interface {
	Create(ctx context.Context, s *SuperAdmin) error
	FindByUsername(ctx context.Context, username string) (*SuperAdmin, error)
}
