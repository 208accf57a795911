package extinguisher

import (
	"context"
	"strings"
	"time"

	"intellishield.dev/internal/ids"
)

// Store is the persistence surface for units and inspection records.
// Implementations must be safe for concurrent use.
type Store interface {
	CreateExtinguisher(ctx context.Context, e *Extinguisher) error
	ExtinguisherByISNumber(ctx context.Context, isNumber string) (*Extinguisher, error)
	ExtinguishersByAdmin(ctx context.Context, adminID string) ([]*Extinguisher, error)
	CountByAdmin(ctx context.Context, adminID string) (int, error)

	CreateInspection(ctx context.Context, in *Inspection) error
	InspectionsByISNumber(ctx context.Context, isNumber string) ([]*Inspection, error)
	AllInspections(ctx context.Context) ([]*Inspection, error)
	Inspection(ctx context.Context, id string) (*Inspection, error)
	UpdateInspectionInfo(ctx context.Context, id string, info map[string]any) (*Inspection, error)
	DeleteInspection(ctx context.Context, id string) (*Inspection, error)
}

// Service owns the registry rules: identification number derivation,
// record identity and inspection history access.
type Service struct {
	store Store
	now   func() time.Time
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

// NewService constructs the registry service over the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register derives the identification number and stores the unit. The
// caller is expected to have enforced the license quota already.
func (s *Service) Register(ctx context.Context, e *Extinguisher) error {
	if strings.TrimSpace(e.CylinderNumber) == "" || strings.TrimSpace(e.TypeOfExtinguisher) == "" {
		return ErrInvalidInput
	}
	e.ID = ids.New()
	e.ISNumber = DeriveISNumber(e.TypeOfExtinguisher, e.CylinderNumber)
	e.CreatedAt = s.now().UTC()
	return s.store.CreateExtinguisher(ctx, e)
}

// Unit fetches a unit by identification number.
func (s *Service) Unit(ctx context.Context, isNumber string) (*Extinguisher, error) {
	return s.store.ExtinguisherByISNumber(ctx, isNumber)
}

// UnitsByAdmin lists every unit registered by the given admin.
func (s *Service) UnitsByAdmin(ctx context.Context, adminID string) ([]*Extinguisher, error) {
	return s.store.ExtinguishersByAdmin(ctx, adminID)
}

// CountByAdmin reports how many units the admin has registered.
func (s *Service) CountByAdmin(ctx context.Context, adminID string) (int, error) {
	return s.store.CountByAdmin(ctx, adminID)
}

// RecordInspection appends a monthly inspection to a unit's history.
// The unit must exist.
func (s *Service) RecordInspection(ctx context.Context, in *Inspection) error {
	if strings.TrimSpace(in.ISNumber) == "" {
		return ErrInvalidInput
	}
	if _, err := s.store.ExtinguisherByISNumber(ctx, in.ISNumber); err != nil {
		return err
	}
	in.ID = ids.New()
	if in.AdditionalInfo == nil {
		in.AdditionalInfo = map[string]any{}
	}
	in.CreatedAt = s.now().UTC()
	return s.store.CreateInspection(ctx, in)
}

// History returns a unit's inspection records, oldest first.
func (s *Service) History(ctx context.Context, isNumber string) ([]*Inspection, error) {
	return s.store.InspectionsByISNumber(ctx, isNumber)
}

// HistoryBetween filters a unit's history by inspection date. Nil
// bounds are open ends.
func (s *Service) HistoryBetween(ctx context.Context, isNumber string, start, end *Date) ([]*Inspection, error) {
	history, err := s.store.InspectionsByISNumber(ctx, isNumber)
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return history, nil
	}
	filtered := make([]*Inspection, 0, len(history))
	for _, in := range history {
		day := in.InspectionDate.Time
		if start != nil && day.Before(start.Time) {
			continue
		}
		if end != nil && day.After(end.Time) {
			continue
		}
		filtered = append(filtered, in)
	}
	return filtered, nil
}

// AllInspections returns every inspection record, oldest first.
func (s *Service) AllInspections(ctx context.Context) ([]*Inspection, error) {
	return s.store.AllInspections(ctx)
}

// Inspection fetches one inspection record by id.
func (s *Service) Inspection(ctx context.Context, id string) (*Inspection, error) {
	return s.store.Inspection(ctx, id)
}

// MergeOverrides folds new acknowledged-defect keys into a record's
// override map. Existing keys are overwritten; the merge never removes
// keys.
func (s *Service) MergeOverrides(ctx context.Context, id string, info map[string]any) (*Inspection, error) {
	return s.store.UpdateInspectionInfo(ctx, id, info)
}

// DeleteInspection removes a record and returns it.
func (s *Service) DeleteInspection(ctx context.Context, id string) (*Inspection, error) {
	return s.store.DeleteInspection(ctx, id)
}
