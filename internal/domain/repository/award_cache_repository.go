package repository

import (
	"context"

	"planner-service/internal/domain/entity"
)

// AwardCacheRepository reads previously ingested inventory snapshots.
// Implementations are strictly read-only: the planner never writes to
// the cache and never resolves anything live.
type AwardCacheRepository interface {
	Read(ctx context.Context, query entity.TripQuery) (*entity.CacheReadResult, error)
}
