package apperrors

import (
	"errors"
	"fmt"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrDuplicate indicates an attempt to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConcurrentModification indicates that an account referenced by a
// transaction was deactivated between validation and posting.
var ErrConcurrentModification = errors.New("account modified concurrently")

// ErrReportPrecondition indicates that a report's precondition does not hold,
// e.g. a cash flow statement was requested with no cash-classified accounts.
var ErrReportPrecondition = errors.New("report precondition failed")

// RejectedError carries the full validation result of a rejected transaction
// so callers can render every violation at once. It is returned as a value,
// never panicked: domain violations are expected outcomes.
type RejectedError struct {
	Result domain.ValidationResult
}

func (e *RejectedError) Error() string {
	if len(e.Result.Violations) == 0 {
		return "transaction rejected"
	}
	return fmt.Sprintf("transaction rejected: %s", e.Result.Violations[0].String())
}

// NewRejectedError wraps a failed validation result.
func NewRejectedError(result domain.ValidationResult) *RejectedError {
	return &RejectedError{Result: result}
}

// AsRejected unwraps a RejectedError from an error chain.
func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	ok := errors.As(err, &rejected)
	return rejected, ok
}
