package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors for the exceptional failure classes. Infeasible plans
// and incomplete queries are response variants, never errors.
var (
	// ErrSessionUnknown means the caller presented a session id the
	// user-state provider does not know.
	ErrSessionUnknown = errors.New("unknown session")

	// ErrPlanNotFound covers both a missing plan and a plan owned by a
	// different session; callers cannot distinguish the two.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrDataIntegrity means a persisted record failed schema
	// re-validation on read. This is a bug or storage corruption, not a
	// user-correctable condition.
	ErrDataIntegrity = errors.New("data integrity error")
)

// FieldIssue is one field-level problem with a save request.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level issue found in a request.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d issue(s)", len(e.Issues))
}
