package extinguisher

import (
	"errors"
	"testing"
)

func TestCheckQuota(t *testing.T) {
	if err := CheckQuota(5, 4); err != nil {
		t.Fatalf("under limit: %v", err)
	}
	if err := CheckQuota(5, 5); err == nil {
		t.Fatal("at limit must fail")
	}
	if err := CheckQuota(5, 6); err == nil {
		t.Fatal("over limit must fail")
	}
	if err := CheckQuota(0, 0); err == nil {
		t.Fatal("zero licenses means no registrations at all")
	}
}

func TestQuotaErrorMessage(t *testing.T) {
	err := CheckQuota(3, 3)
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	want := "You have reached the limit of 3 fire extinguishers."
	if qe.Error() != want {
		t.Fatalf("message: got %q, want %q", qe.Error(), want)
	}
}
