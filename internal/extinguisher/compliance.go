package extinguisher

import "fmt"

// Check names as they appear in defect lists and override keys.
const (
	CheckCylinderNozzle  = "cylinder_nozzle"
	CheckOperatingLever  = "operating_lever"
	CheckSafetyPin       = "safety_pin"
	CheckPressureGauge   = "pressure_gauge"
	CheckPaintPeeledOff  = "paint_peeled_off"
	CheckPresenceOfRust  = "presence_of_rust"
	CheckDamagedCylinder = "damaged_cylinder"
	CheckDentOnBody      = "dent_on_body"
)

// Verdict is the outcome of a compliance evaluation. It is computed
// from the inspection history on every read and never persisted.
type Verdict struct {
	NonCompliant bool
	NoHistory    bool
	RecordID     string
	Defects      []string
}

// ComplianceError reports unwaived defects on the latest inspection
// record. Handlers translate it into a structured client error.
type ComplianceError struct {
	RecordID string
	Defects  []string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("fire extinguisher not compliant with safety standards: %v", e.Defects)
}

// Violation converts a non-compliant verdict into an error, or nil when
// the unit passes. A missing history is flagged non-compliant but is
// never a hard failure.
func (v Verdict) Violation() error {
	if len(v.Defects) == 0 {
		return nil
	}
	return &ComplianceError{RecordID: v.RecordID, Defects: v.Defects}
}

// Evaluate applies the compliance rules to an inspection history,
// ordered oldest first. Only the latest record counts. The first four
// checks are components that must be present; the last four are damage
// conditions that must be absent. A defect is waived when its check
// name appears as a key in the record's override map, whatever the
// value. Defect order is fixed: presence failures first, damage
// findings second, each in declaration order.
func Evaluate(history []*Inspection) Verdict {
	if len(history) == 0 {
		return Verdict{NonCompliant: true, NoHistory: true}
	}
	last := history[len(history)-1]

	presence := []struct {
		name string
		ok   bool
	}{
		{CheckCylinderNozzle, last.CylinderNozzle},
		{CheckOperatingLever, last.OperatingLever},
		{CheckSafetyPin, last.SafetyPin},
		{CheckPressureGauge, last.PressureGauge},
	}
	damage := []struct {
		name  string
		found bool
	}{
		{CheckPaintPeeledOff, last.PaintPeeledOff},
		{CheckPresenceOfRust, last.PresenceOfRust},
		{CheckDamagedCylinder, last.DamagedCylinder},
		{CheckDentOnBody, last.DentOnBody},
	}

	var failed []string
	for _, c := range presence {
		if !c.ok {
			failed = append(failed, c.name)
		}
	}
	for _, c := range damage {
		if c.found {
			failed = append(failed, c.name)
		}
	}

	var defects []string
	for _, name := range failed {
		if _, waived := last.AdditionalInfo[name]; waived {
			continue
		}
		defects = append(defects, name)
	}

	if len(defects) == 0 {
		return Verdict{RecordID: last.ID}
	}
	return Verdict{NonCompliant: true, RecordID: last.ID, Defects: defects}
}
