package extinguisher

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. It is
// the default backend when no database is configured and backs the
// unit tests.
type InMemory struct {
	mu          sync.RWMutex
	units       map[string]*Extinguisher // keyed by is_number
	inspections map[string]*Inspection   // keyed by record id
}

// NewInMemory creates an empty registry store.
func NewInMemory() *InMemory {
	return &InMemory{
		units:       make(map[string]*Extinguisher),
		inspections: make(map[string]*Inspection),
	}
}

func (s *InMemory) CreateExtinguisher(ctx context.Context, e *Extinguisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[e.ISNumber]; ok {
		return ErrAlreadyExists
	}
	cp := *e
	s.units[e.ISNumber] = &cp
	return nil
}

func (s *InMemory) ExtinguisherByISNumber(ctx context.Context, isNumber string) (*Extinguisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.units[isNumber]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemory) ExtinguishersByAdmin(ctx context.Context, adminID string) ([]*Extinguisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Extinguisher
	for _, e := range s.units {
		if e.AdminID == adminID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) CountByAdmin(ctx context.Context, adminID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.units {
		if e.AdminID == adminID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CreateInspection(ctx context.Context, in *Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inspections[in.ID]; ok {
		return ErrAlreadyExists
	}
	s.inspections[in.ID] = copyInspection(in)
	return nil
}

func (s *InMemory) InspectionsByISNumber(ctx context.Context, isNumber string) ([]*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Inspection
	for _, in := range s.inspections {
		if in.ISNumber == isNumber {
			out = append(out, copyInspection(in))
		}
	}
	sortByID(out)
	return out, nil
}

func (s *InMemory) AllInspections(ctx context.Context) ([]*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Inspection, 0, len(s.inspections))
	for _, in := range s.inspections {
		out = append(out, copyInspection(in))
	}
	sortByID(out)
	return out, nil
}

func (s *InMemory) Inspection(ctx context.Context, id string) (*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.inspections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyInspection(in), nil
}

func (s *InMemory) UpdateInspectionInfo(ctx context.Context, id string, info map[string]any) (*Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inspections[id]
	if !ok {
		return nil, ErrNotFound
	}
	if in.AdditionalInfo == nil {
		in.AdditionalInfo = map[string]any{}
	}
	for k, v := range info {
		in.AdditionalInfo[k] = v
	}
	return copyInspection(in), nil
}

func (s *InMemory) DeleteInspection(ctx context.Context, id string) (*Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inspections[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.inspections, id)
	return copyInspection(in), nil
}

// copyInspection deep-copies the override map so callers cannot mutate
// stored state.
func copyInspection(in *Inspection) *Inspection {
	cp := *in
	if in.AdditionalInfo != nil {
		cp.AdditionalInfo = make(map[string]any, len(in.AdditionalInfo))
		for k, v := range in.AdditionalInfo {
			cp.AdditionalInfo[k] = v
		}
	}
	return &cp
}

// sortByID orders records oldest first; record ids are time-ordered.
func sortByID(out []*Inspection) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}
