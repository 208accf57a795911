package extinguisher

import (
	"context"
	"errors"
	"testing"
)

func newTestRegistry() *Service {
	return NewService(NewInMemory())
}

func registerUnit(t *testing.T, svc *Service, typ, cylinder, adminID string) *Extinguisher {
	t.Helper()
	unit := &Extinguisher{
		CylinderNumber:     cylinder,
		TypeOfExtinguisher: typ,
		Location:           "Warehouse 3",
		LocationTagNumber:  "W3-12",
		ServiceProvider:    "SafeCo",
		UOM:                "kg",
		NetWeight:          "6",
		Capacity:           "6",
		AdminID:            adminID,
	}
	if err := svc.Register(context.Background(), unit); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return unit
}

func TestRegisterDerivesISNumber(t *testing.T) {
	svc := newTestRegistry()
	unit := registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	if unit.ISNumber != "ISN-COT-C100" {
		t.Fatalf("unexpected is_number: %q", unit.ISNumber)
	}
	if unit.ID == "" || unit.CreatedAt.IsZero() {
		t.Fatalf("expected generated identity: %+v", unit)
	}

	got, err := svc.Unit(context.Background(), "ISN-COT-C100")
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}
	if got.CylinderNumber != "C100" {
		t.Fatalf("unexpected unit: %+v", got)
	}
}

func TestRegisterDuplicateISNumber(t *testing.T) {
	svc := newTestRegistry()
	registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	dup := &Extinguisher{CylinderNumber: "C100", TypeOfExtinguisher: "CO2 Type", AdminID: "adm-2"}
	if err := svc.Register(context.Background(), dup); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newTestRegistry()
	if err := svc.Register(context.Background(), &Extinguisher{TypeOfExtinguisher: "CO2 Type"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing cylinder, got %v", err)
	}
	if err := svc.Register(context.Background(), &Extinguisher{CylinderNumber: "C1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing type, got %v", err)
	}
}

func TestCountAndListByAdmin(t *testing.T) {
	svc := newTestRegistry()
	registerUnit(t, svc, "CO2 Type", "C1", "adm-1")
	registerUnit(t, svc, "Foam Type", "C2", "adm-1")
	registerUnit(t, svc, "Water Type", "C3", "adm-2")

	count, err := svc.CountByAdmin(context.Background(), "adm-1")
	if err != nil {
		t.Fatalf("CountByAdmin: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 units, got %d", count)
	}

	units, err := svc.UnitsByAdmin(context.Background(), "adm-1")
	if err != nil {
		t.Fatalf("UnitsByAdmin: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].ID > units[1].ID {
		t.Fatal("expected registration order")
	}
}

func TestRecordInspectionRequiresUnit(t *testing.T) {
	svc := newTestRegistry()
	in := &Inspection{ISNumber: "ISN-COT-MISSING", InspectorsName: "R. Iyer"}
	if err := svc.RecordInspection(context.Background(), in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInspectionHistoryOrder(t *testing.T) {
	svc := newTestRegistry()
	unit := registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	for _, month := range []int{1, 2, 3} {
		in := &Inspection{
			ISNumber:       unit.ISNumber,
			InspectionDate: NewDate(2025, 1, month), // distinct days
			InspectorsName: "R. Iyer",
		}
		if err := svc.RecordInspection(context.Background(), in); err != nil {
			t.Fatalf("RecordInspection: %v", err)
		}
	}

	history, err := svc.History(context.Background(), unit.ISNumber)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i-1].ID > history[i].ID {
			t.Fatal("history must be oldest first")
		}
	}
	if history[0].AdditionalInfo == nil {
		t.Fatal("override map must be initialized")
	}
}

func TestHistoryBetween(t *testing.T) {
	svc := newTestRegistry()
	unit := registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	days := []Date{NewDate(2025, 1, 5), NewDate(2025, 2, 5), NewDate(2025, 3, 5)}
	for _, day := range days {
		in := &Inspection{ISNumber: unit.ISNumber, InspectionDate: day, InspectorsName: "R. Iyer"}
		if err := svc.RecordInspection(context.Background(), in); err != nil {
			t.Fatalf("RecordInspection: %v", err)
		}
	}

	start := NewDate(2025, 2, 1)
	end := NewDate(2025, 2, 28)

	got, err := svc.HistoryBetween(context.Background(), unit.ISNumber, &start, &end)
	if err != nil {
		t.Fatalf("HistoryBetween: %v", err)
	}
	if len(got) != 1 || got[0].InspectionDate.String() != "2025-02-05" {
		t.Fatalf("unexpected range result: %+v", got)
	}

	got, err = svc.HistoryBetween(context.Background(), unit.ISNumber, &start, nil)
	if err != nil {
		t.Fatalf("HistoryBetween open end: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records from open end, got %d", len(got))
	}

	got, err = svc.HistoryBetween(context.Background(), unit.ISNumber, nil, nil)
	if err != nil {
		t.Fatalf("HistoryBetween open both: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected full history, got %d", len(got))
	}
}

func TestMergeOverrides(t *testing.T) {
	svc := newTestRegistry()
	unit := registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	in := &Inspection{ISNumber: unit.ISNumber, SafetyPin: false, InspectorsName: "R. Iyer"}
	if err := svc.RecordInspection(context.Background(), in); err != nil {
		t.Fatalf("RecordInspection: %v", err)
	}

	updated, err := svc.MergeOverrides(context.Background(), in.ID, map[string]any{CheckSafetyPin: "pin on order"})
	if err != nil {
		t.Fatalf("MergeOverrides: %v", err)
	}
	if updated.AdditionalInfo[CheckSafetyPin] != "pin on order" {
		t.Fatalf("override not merged: %+v", updated.AdditionalInfo)
	}

	// A second merge keeps earlier keys.
	updated, err = svc.MergeOverrides(context.Background(), in.ID, map[string]any{"note": "recheck next month"})
	if err != nil {
		t.Fatalf("MergeOverrides: %v", err)
	}
	if _, ok := updated.AdditionalInfo[CheckSafetyPin]; !ok {
		t.Fatalf("merge dropped existing key: %+v", updated.AdditionalInfo)
	}

	if _, err := svc.MergeOverrides(context.Background(), "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInspection(t *testing.T) {
	svc := newTestRegistry()
	unit := registerUnit(t, svc, "CO2 Type", "C100", "adm-1")

	in := &Inspection{ISNumber: unit.ISNumber, InspectorsName: "R. Iyer"}
	if err := svc.RecordInspection(context.Background(), in); err != nil {
		t.Fatalf("RecordInspection: %v", err)
	}

	deleted, err := svc.DeleteInspection(context.Background(), in.ID)
	if err != nil {
		t.Fatalf("DeleteInspection: %v", err)
	}
	if deleted.ID != in.ID {
		t.Fatalf("deleted wrong record: %+v", deleted)
	}
	if _, err := svc.Inspection(context.Background(), in.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.DeleteInspection(context.Background(), in.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeat delete, got %v", err)
	}
}
