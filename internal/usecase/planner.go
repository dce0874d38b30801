package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"planner-service/internal/domain/entity"
	"planner-service/internal/domain/repository"
	"planner-service/pkg/logger"
	"planner-service/pkg/metrics"
)

// StaleAfter is how old the freshest matched cache row may be before
// the whole read counts as stale.
const StaleAfter = 45 * time.Minute

// Planner turns a trip query into a ranked, trust-annotated list of
// award options using only cached inventory. It owns the three-variant
// response contract: every outcome is one of ok, needs_input or
// no_feasible_plan, and only this type selects among them.
type Planner struct {
	cacheRepo   repository.AwardCacheRepository
	sessionRepo repository.SessionRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewPlanner creates a new planner.
func NewPlanner(
	cacheRepo repository.AwardCacheRepository,
	sessionRepo repository.SessionRepository,
	log logger.Logger,
	m *metrics.Metrics,
) *Planner {
	return &Planner{
		cacheRepo:   cacheRepo,
		sessionRepo: sessionRepo,
		logger:      log,
		metrics:     m,
		now:         time.Now,
	}
}

// Plan runs the planning pipeline: input check, cache read, staleness
// gate, constraint filtering, ranking. The only error it returns is a
// failed cache read; every legitimate "no plan" outcome is data.
func (p *Planner) Plan(ctx context.Context, sessionID, requestID string, q entity.TripQuery) (*entity.PlanResponse, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := p.logger.With("requestId", requestID)
	started := p.now()

	if q.Passengers <= 0 {
		q.Passengers = 1
	}

	if missing := q.MissingFields(); len(missing) > 0 {
		log.Info("Query incomplete", "missingFields", missing)
		return p.finish(started, &entity.PlanResponse{
			Status:        entity.StatusNeedsInput,
			RequestID:     requestID,
			MissingFields: missing,
		}), nil
	}

	read, err := p.cacheRepo.Read(ctx, q)
	if err != nil {
		log.Error("Cache read failed", "error", err)
		if p.metrics != nil {
			p.metrics.ErrorsCount.WithLabelValues("cache_read").Inc()
		}
		return nil, err
	}
	log.Info("Cache read complete", "consideredCount", read.ConsideredCount)

	if read.ConsideredCount == 0 {
		return p.finish(started, &entity.PlanResponse{
			Status:    entity.StatusNoFeasiblePlan,
			RequestID: requestID,
			Reasons: []entity.ConstraintViolation{{
				Code:    entity.CodeCacheEmpty,
				Message: "no cached inventory matches this query",
				Field:   "cache",
			}},
			CacheStatus: &entity.CacheStatus{Stale: true, ConsideredCount: 0},
		}), nil
	}

	// Staleness is always computed from the store's own timestamps,
	// never from when this process last looked.
	stale := read.FreshestAt == nil || p.now().Sub(*read.FreshestAt) > StaleAfter
	status := &entity.CacheStatus{
		FreshestAt:      read.FreshestAt,
		Stale:           stale,
		ConsideredCount: read.ConsideredCount,
	}
	if stale && !q.AllowStaleCache {
		log.Info("Cache stale and stale results not allowed", "freshestAt", read.FreshestAt)
		return p.finish(started, &entity.PlanResponse{
			Status:    entity.StatusNoFeasiblePlan,
			RequestID: requestID,
			Reasons: []entity.ConstraintViolation{{
				Code:    entity.CodeCacheStale,
				Message: "cached inventory is older than the freshness threshold",
				Field:   "cache",
			}},
			CacheStatus: status,
		}), nil
	}

	accepted, rejected := ApplyConstraints(read.Candidates, q)
	if len(accepted) == 0 {
		log.Info("No candidate survived constraints", "rejectedCount", len(rejected))
		return p.finish(started, &entity.PlanResponse{
			Status:      entity.StatusNoFeasiblePlan,
			RequestID:   requestID,
			Reasons:     rejected,
			CacheStatus: status,
		}), nil
	}

	options := Rank(accepted, RankContext{
		PreferredPrograms: p.preferredPrograms(ctx, sessionID, q, log),
		Now:               p.now(),
	})
	for i := range options {
		options[i].Verified = !stale
	}

	log.Info("Plan ready", "optionCount", len(options), "stale", stale)
	return p.finish(started, &entity.PlanResponse{
		Status:      entity.StatusOK,
		RequestID:   requestID,
		Query:       &q,
		Options:     options,
		CacheStatus: status,
	}), nil
}

// preferredPrograms prefers the query's own allow-list and falls back
// to the session's stored programs.
func (p *Planner) preferredPrograms(ctx context.Context, sessionID string, q entity.TripQuery, log logger.Logger) []string {
	if len(q.PreferredPrograms) > 0 {
		return q.PreferredPrograms
	}
	if sessionID == "" || p.sessionRepo == nil {
		return nil
	}
	programs, err := p.sessionRepo.GetPreferredPrograms(ctx, sessionID)
	if err != nil {
		log.Warn("Could not load preferred programs", "sessionId", sessionID, "error", err)
		return nil
	}
	return programs
}

func (p *Planner) finish(started time.Time, resp *entity.PlanResponse) *entity.PlanResponse {
	if p.metrics != nil {
		p.metrics.PlansComputed.WithLabelValues(resp.Status).Inc()
		p.metrics.PlanningTime.Observe(p.now().Sub(started).Seconds())
	}
	return resp
}
