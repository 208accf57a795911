package auth

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. It is
// the default backend when no database is configured and backs the
// unit tests.
type InMemory struct {
	mu     sync.RWMutex
	users  map[string]*User // keyed by username
	admins map[string]*Admin
	supers map[string]*SuperAdmin
}

// NewInMemory creates an empty credential store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:  make(map[string]*User),
		admins: make(map[string]*Admin),
		supers: make(map[string]*SuperAdmin),
	}
}

func (s *InMemory) Users(ctx context.Context) UserStore             { return (*memUsers)(s) }
func (s *InMemory) Admins(ctx context.Context) AdminStore           { return (*memAdmins)(s) }
func (s *InMemory) SuperAdmins(ctx context.Context) SuperAdminStore { return (*memSupers)(s) }

type memUsers InMemory

func (s *memUsers) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *memUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) List(ctx context.Context, skip, limit int) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, skip, limit), nil
}

type memAdmins InMemory

func (s *memAdmins) Create(ctx context.Context, a *Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[a.Username]; ok {
		return ErrAlreadyExists
	}
	cp := *a
	s.admins[a.Username] = &cp
	return nil
}

func (s *memAdmins) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memAdmins) Find(ctx context.Context, id string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memAdmins) List(ctx context.Context, skip, limit int) ([]*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Admin, 0, len(s.admins))
	for _, a := range s.admins {
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, skip, limit), nil
}

type memSupers InMemory

func (s *memSupers) Create(ctx context.Context, sa *SuperAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.supers[sa.Username]; ok {
		return ErrAlreadyExists
	}
	cp := *sa
	s.supers[sa.Username] = &cp
	return nil
}

func (s *memSupers) FindByUsername(ctx context.Context, username string) (*SuperAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sa, ok := s.supers[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sa
	return &cp, nil
}

func paginate[T any](all []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return nil
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
