package extinguisher

import "fmt"

// QuotaError indicates the admin's license limit is exhausted. The
// limit is the one carried by the caller's credential, not a fresh read
// of the admin record.
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("You have reached the limit of %d fire extinguishers.", e.Limit)
}

// CheckQuota fails once the owned count has reached the limit. The
// count is read before the insert, not atomically with it; concurrent
// registrations can land slightly over the limit.
func CheckQuota(limit, owned int) error {
	if owned >= limit {
		return &QuotaError{Limit: limit}
	}
	return nil
}
