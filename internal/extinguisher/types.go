// Package extinguisher holds the fire extinguisher registry: unit
// records, monthly inspection history and the compliance rules that
// interpret it.
package extinguisher

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar day without a time component. It marshals as
// YYYY-MM-DD and round-trips through database/sql.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{Time: v.UTC()}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// typeCodes maps the extinguisher type label to the short code embedded
// in the identification number.
var typeCodes = map[string]string{
	"Water Type":       "WAT",
	"Foam Type":        "FOT",
	"CO2 Type":         "COT",
	"DCP Type":         "DCT",
	"K Type kitchen":   "KIT",
	"Clean Agent Type": "CAT",
	"Water Mist Type":  "WMT",
}

// DeriveISNumber builds the identification number for a unit from its
// type label and cylinder number. Unrecognized type labels fall back to
// the UNK code; the derivation never fails.
func DeriveISNumber(typeOfExtinguisher, cylinderNumber string) string {
	code, ok := typeCodes[typeOfExtinguisher]
	if !ok {
		code = "UNK"
	}
	return fmt.Sprintf("ISN-%s-%s", code, cylinderNumber)
}

// Extinguisher is a registered fire extinguisher unit. The ISNumber is
// derived at registration and is the unit's public identity.
type Extinguisher struct {
	ID                 string `json:"id"`
	CylinderNumber     string `json:"cylinder_number"`
	TypeOfExtinguisher string `json:"type_of_extinguisher"`
	ISNumber           string `json:"is_number"`
	LocationTagNumber  string `json:"location_tag_number"`
	Location           string `json:"location"`
	ServiceProvider    string `json:"service_provider"`
	UOM                string `json:"uom"`
	NetWeight          string `json:"net_weight"`
	Capacity           string `json:"capacity"`
	DateOfRefilling    Date   `json:"date_of_refilling"`
	DueOfRefilling     Date   `json:"due_of_refilling"`
	DateOfHPT          Date   `json:"date_of_hpt"`
	DueOfHPT           Date   `json:"due_of_hpt"`
	ManufacturingDate  Date   `json:"manufacturing_date"`
	ExpiryDate         Date   `json:"expiry_date"`
	AdminID            string `json:"admin_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Inspection is one monthly inspection record for a unit. The eight
// check booleans feed the compliance evaluation; AdditionalInfo holds
// acknowledged-defect overrides keyed by check name.
type Inspection struct {
	ID             string `json:"id"`
	ISNumber       string `json:"is_number"`
	InspectionDate Date   `json:"inspection_date"`
	DueDate        Date   `json:"due_date"`
	CapacityUOM    string `json:"capacity_uom"`
	Weight         string `json:"weight"`
	Pressure       string `json:"pressure"`

	CylinderNozzle  bool `json:"cylinder_nozzle"`
	OperatingLever  bool `json:"operating_lever"`
	SafetyPin       bool `json:"safety_pin"`
	PressureGauge   bool `json:"pressure_gauge"`
	PaintPeeledOff  bool `json:"paint_peeled_off"`
	PresenceOfRust  bool `json:"presence_of_rust"`
	DamagedCylinder bool `json:"damaged_cylinder"`
	DentOnBody      bool `json:"dent_on_body"`

	Complaints     string         `json:"complaints,omitempty"`
	InspectorsName string         `json:"inspectors_name"`
	AdditionalInfo map[string]any `json:"additional_info"`

	CreatedAt time.Time `json:"created_at"`
}
