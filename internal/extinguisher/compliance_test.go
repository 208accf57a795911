package extinguisher

import (
	"errors"
	"reflect"
	"testing"
)

func cleanInspection(id string) *Inspection {
	return &Inspection{
		ID:             id,
		ISNumber:       "ISN-COT-C100",
		InspectionDate: NewDate(2025, 3, 10),
		CylinderNozzle: true,
		OperatingLever: true,
		SafetyPin:      true,
		PressureGauge:  true,
		InspectorsName: "R. Iyer",
		AdditionalInfo: map[string]any{},
	}
}

func TestEvaluateNoHistory(t *testing.T) {
	v := Evaluate(nil)
	if !v.NonCompliant || !v.NoHistory {
		t.Fatalf("expected non-compliant no-history verdict, got %+v", v)
	}
	if len(v.Defects) != 0 {
		t.Fatalf("no-history verdict must carry no defects: %+v", v)
	}
	if err := v.Violation(); err != nil {
		t.Fatalf("no-history is a flag, not a failure: %v", err)
	}
}

func TestEvaluateCleanRecord(t *testing.T) {
	v := Evaluate([]*Inspection{cleanInspection("rec-1")})
	if v.NonCompliant || v.NoHistory || len(v.Defects) != 0 {
		t.Fatalf("expected compliant verdict, got %+v", v)
	}
	if v.RecordID != "rec-1" {
		t.Fatalf("expected record id, got %q", v.RecordID)
	}
	if err := v.Violation(); err != nil {
		t.Fatalf("Violation: %v", err)
	}
}

func TestEvaluateMissingComponent(t *testing.T) {
	rec := cleanInspection("rec-1")
	rec.SafetyPin = false

	v := Evaluate([]*Inspection{rec})
	if !v.NonCompliant {
		t.Fatalf("expected non-compliant, got %+v", v)
	}
	if !reflect.DeepEqual(v.Defects, []string{CheckSafetyPin}) {
		t.Fatalf("unexpected defects: %v", v.Defects)
	}

	err := v.Violation()
	var ce *ComplianceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplianceError, got %v", err)
	}
	if ce.RecordID != "rec-1" {
		t.Fatalf("unexpected record id: %q", ce.RecordID)
	}
}

func TestEvaluateDefectOrdering(t *testing.T) {
	rec := cleanInspection("rec-1")
	rec.DentOnBody = true
	rec.CylinderNozzle = false
	rec.PresenceOfRust = true
	rec.OperatingLever = false

	v := Evaluate([]*Inspection{rec})
	want := []string{CheckCylinderNozzle, CheckOperatingLever, CheckPresenceOfRust, CheckDentOnBody}
	if !reflect.DeepEqual(v.Defects, want) {
		t.Fatalf("defect order: got %v, want %v", v.Defects, want)
	}
}

func TestEvaluateOverridesWaiveDefects(t *testing.T) {
	rec := cleanInspection("rec-1")
	rec.SafetyPin = false
	rec.PresenceOfRust = true
	rec.AdditionalInfo = map[string]any{
		CheckSafetyPin:      "pin replaced on site",
		CheckPresenceOfRust: false, // key presence waives, value is ignored
	}

	v := Evaluate([]*Inspection{rec})
	if v.NonCompliant || len(v.Defects) != 0 {
		t.Fatalf("expected waived defects, got %+v", v)
	}
}

func TestEvaluatePartialOverride(t *testing.T) {
	rec := cleanInspection("rec-1")
	rec.SafetyPin = false
	rec.DamagedCylinder = true
	rec.AdditionalInfo = map[string]any{CheckSafetyPin: "acknowledged"}

	v := Evaluate([]*Inspection{rec})
	if !reflect.DeepEqual(v.Defects, []string{CheckDamagedCylinder}) {
		t.Fatalf("unexpected defects: %v", v.Defects)
	}
}

func TestEvaluateOnlyLatestRecordCounts(t *testing.T) {
	bad := cleanInspection("rec-1")
	bad.DamagedCylinder = true
	good := cleanInspection("rec-2")

	v := Evaluate([]*Inspection{bad, good})
	if v.NonCompliant {
		t.Fatalf("older defects must not count: %+v", v)
	}
	if v.RecordID != "rec-2" {
		t.Fatalf("expected latest record id, got %q", v.RecordID)
	}

	v = Evaluate([]*Inspection{good, bad})
	if !v.NonCompliant || v.RecordID != "rec-1" {
		t.Fatalf("expected latest record to fail: %+v", v)
	}
}

func TestEvaluateUnknownOverrideKeyIgnored(t *testing.T) {
	rec := cleanInspection("rec-1")
	rec.SafetyPin = false
	rec.AdditionalInfo = map[string]any{"some_note": "unrelated"}

	v := Evaluate([]*Inspection{rec})
	if !reflect.DeepEqual(v.Defects, []string{CheckSafetyPin}) {
		t.Fatalf("unrelated keys must not waive: %v", v.Defects)
	}
}
