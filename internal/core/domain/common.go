package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// DateRange bounds a report query. A nil bound leaves that end open.
// Both bounds are inclusive, matching the "timestamp <= as_of" convention
// used for historical balances.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Until builds a range that is open at the start and bounded by to.
func Until(to time.Time) DateRange {
	return DateRange{To: &to}
}

// Between builds a closed range.
func Between(from, to time.Time) DateRange {
	return DateRange{From: &from, To: &to}
}
