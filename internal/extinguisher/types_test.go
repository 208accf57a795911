package extinguisher

import (
	"encoding/json"
	"testing"
)

func TestDeriveISNumber(t *testing.T) {
	cases := []struct {
		typ      string
		cylinder string
		want     string
	}{
		{"Water Type", "C001", "ISN-WAT-C001"},
		{"Foam Type", "C002", "ISN-FOT-C002"},
		{"CO2 Type", "C003", "ISN-COT-C003"},
		{"DCP Type", "C004", "ISN-DCT-C004"},
		{"K Type kitchen", "C005", "ISN-KIT-C005"},
		{"Clean Agent Type", "C006", "ISN-CAT-C006"},
		{"Water Mist Type", "C007", "ISN-WMT-C007"},
		{"Halon Type", "C008", "ISN-UNK-C008"},
		{"", "C009", "ISN-UNK-C009"},
	}
	for _, tc := range cases {
		if got := DeriveISNumber(tc.typ, tc.cylinder); got != tc.want {
			t.Fatalf("DeriveISNumber(%q, %q) = %q, want %q", tc.typ, tc.cylinder, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2025-03-10" {
		t.Fatalf("round trip: %q", d.String())
	}
	for _, bad := range []string{"10-03-2025", "2025/03/10", "not-a-date", "2025-13-40"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 3, 10)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2025-03-10"` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}

	var zero Date
	data, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("Marshal zero: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("zero date should encode as null, got %s", data)
	}
}
