package repository

import (
	"context"
	"time"

	"planner-service/internal/domain/entity"
)

// SavedPlanRepository persists user-selected plans. Ownership is
// enforced at this layer: every session-scoped operation filters by
// session id, and visibility mutations are applied as one atomic
// per-record update so concurrent share/revoke calls cannot interleave.
type SavedPlanRepository interface {
	Insert(ctx context.Context, plan *entity.SavedPlan) error
	ListBySession(ctx context.Context, sessionID string) ([]entity.SavedPlan, error)
	GetByID(ctx context.Context, sessionID, id string) (*entity.SavedPlan, error)
	GetByShareToken(ctx context.Context, token string) (*entity.SavedPlan, error)
	// UpdateVisibility sets visibility and share token in a single
	// update and returns the record as written, or nil when no plan
	// matches the (sessionID, id) pair.
	UpdateVisibility(ctx context.Context, sessionID, id, visibility, shareToken string, at time.Time) (*entity.SavedPlan, error)
}
