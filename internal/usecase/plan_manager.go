package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planner-service/internal/domain/entity"
	"planner-service/internal/domain/repository"
	"planner-service/pkg/logger"
	"planner-service/pkg/metrics"
)

// DataSourceTag identifies the cache collection in provenance records.
const DataSourceTag = "award_cache"

const shareTokenBytes = 32

// SaveRequest is the payload for persisting a selected option.
type SaveRequest struct {
	Query          entity.TripQuery    `json:"query"`
	SelectedOption entity.RankedOption `json:"selectedOption"`
	Title          string              `json:"title,omitempty"`
	MakePublic     bool                `json:"makePublic,omitempty"`
}

// PlanDetail is a stored plan plus the current freshness of the cache
// behind its original query, so callers can tell whether the plan's
// data has gone stale since it was saved.
type PlanDetail struct {
	Plan               *entity.SavedPlan   `json:"plan"`
	CurrentCacheStatus *entity.CacheStatus `json:"currentCacheStatus,omitempty"`
}

// PlanManager owns the saved-plan lifecycle: persistence with a
// provenance record, public/private visibility and share tokens, and
// schema re-validation of everything read back from storage.
type PlanManager struct {
	planRepo       repository.SavedPlanRepository
	cacheRepo      repository.AwardCacheRepository
	sessionRepo    repository.SessionRepository
	logger         logger.Logger
	metrics        *metrics.Metrics
	shareBaseURL   string
	plannerVersion string
	now            func() time.Time
	newToken       func() (string, error)
}

// NewPlanManager creates a new plan manager.
func NewPlanManager(
	planRepo repository.SavedPlanRepository,
	cacheRepo repository.AwardCacheRepository,
	sessionRepo repository.SessionRepository,
	log logger.Logger,
	m *metrics.Metrics,
	shareBaseURL string,
	plannerVersion string,
) *PlanManager {
	return &PlanManager{
		planRepo:       planRepo,
		cacheRepo:      cacheRepo,
		sessionRepo:    sessionRepo,
		logger:         log,
		metrics:        m,
		shareBaseURL:   shareBaseURL,
		plannerVersion: plannerVersion,
		now:            time.Now,
		newToken:       newShareToken,
	}
}

// Save persists a selected option for the session. Provenance is
// recomputed from a fresh cache read at save time, never copied from
// the caller.
func (m *PlanManager) Save(ctx context.Context, sessionID string, req SaveRequest) (*entity.SavedPlan, string, error) {
	if err := m.requireSession(ctx, sessionID); err != nil {
		return nil, "", err
	}
	if issues := validateSaveRequest(req); len(issues) > 0 {
		return nil, "", &ValidationError{Issues: issues}
	}

	read, err := m.cacheRepo.Read(ctx, req.Query)
	if err != nil {
		m.logger.Error("Cache read for provenance failed", "error", err)
		return nil, "", err
	}
	now := m.now()
	stale := read.FreshestAt == nil || now.Sub(*read.FreshestAt) > StaleAfter

	plan := &entity.SavedPlan{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Title:          req.Title,
		Visibility:     entity.VisibilityPrivate,
		Query:          req.Query,
		SelectedOption: req.SelectedOption,
		Provenance: entity.Provenance{
			PlannerVersion:  m.plannerVersion,
			CacheFreshestAt: read.FreshestAt,
			CacheWasStale:   stale,
			ConsideredCount: read.ConsideredCount,
			DataSource:      DataSourceTag,
			ValidatedAt:     now,
		},
	}
	if req.MakePublic {
		token, err := m.newToken()
		if err != nil {
			return nil, "", fmt.Errorf("generating share token: %w", err)
		}
		plan.Visibility = entity.VisibilityPublic
		plan.ShareToken = token
	}

	if err := m.planRepo.Insert(ctx, plan); err != nil {
		if m.metrics != nil {
			m.metrics.ErrorsCount.WithLabelValues("plan_save").Inc()
		}
		return nil, "", err
	}
	if m.metrics != nil {
		m.metrics.PlansSaved.Inc()
	}
	m.logger.Info("Plan saved", "planId", plan.ID, "visibility", plan.Visibility)
	return plan, m.shareURL(plan.ShareToken), nil
}

// List returns the session's plans newest first. Every record is
// re-validated; a single corrupt record fails the whole read because
// corrupted persisted state must never reach a caller.
func (m *PlanManager) List(ctx context.Context, sessionID string) ([]entity.SavedPlan, error) {
	if err := m.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	plans, err := m.planRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if err := plans[i].Validate(); err != nil {
			m.logger.Error("Stored plan failed re-validation", "planId", plans[i].ID, "error", err)
			if m.metrics != nil {
				m.metrics.ErrorsCount.WithLabelValues("plan_integrity").Inc()
			}
			return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
		}
	}
	return plans, nil
}

// Get fetches one owned plan and recomputes the current cache status
// for its original query.
func (m *PlanManager) Get(ctx context.Context, sessionID, id string) (*PlanDetail, error) {
	if err := m.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	plan, err := m.planRepo.GetByID(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if err := plan.Validate(); err != nil {
		m.logger.Error("Stored plan failed re-validation", "planId", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}

	detail := &PlanDetail{Plan: plan}
	read, err := m.cacheRepo.Read(ctx, plan.Query)
	if err != nil {
		return nil, err
	}
	detail.CurrentCacheStatus = &entity.CacheStatus{
		FreshestAt:      read.FreshestAt,
		Stale:           read.FreshestAt == nil || m.now().Sub(*read.FreshestAt) > StaleAfter,
		ConsideredCount: read.ConsideredCount,
	}
	return detail, nil
}

// GetByShareToken resolves a public share link. The owning session id
// is redacted before the plan leaves this method.
func (m *PlanManager) GetByShareToken(ctx context.Context, token string) (*entity.SavedPlan, error) {
	if token == "" {
		return nil, ErrPlanNotFound
	}
	plan, err := m.planRepo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.Visibility != entity.VisibilityPublic {
		return nil, ErrPlanNotFound
	}
	if err := plan.Validate(); err != nil {
		m.logger.Error("Shared plan failed re-validation", "planId", plan.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	plan.SessionID = entity.RedactedSessionID
	return plan, nil
}

// MakePublic marks a plan public and always issues a fresh token, so a
// previously revoked link can never silently come back to life.
func (m *PlanManager) MakePublic(ctx context.Context, sessionID, id string) (*entity.SavedPlan, string, error) {
	if err := m.requireSession(ctx, sessionID); err != nil {
		return nil, "", err
	}
	token, err := m.newToken()
	if err != nil {
		return nil, "", fmt.Errorf("generating share token: %w", err)
	}
	plan, err := m.planRepo.UpdateVisibility(ctx, sessionID, id, entity.VisibilityPublic, token, m.now())
	if err != nil {
		return nil, "", err
	}
	if plan == nil {
		return nil, "", ErrPlanNotFound
	}
	m.logger.Info("Plan made public", "planId", id)
	return plan, m.shareURL(token), nil
}

// Revoke flips a plan back to private and clears its token, which
// immediately invalidates the old share link.
func (m *PlanManager) Revoke(ctx context.Context, sessionID, id string) (*entity.SavedPlan, error) {
	if err := m.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	plan, err := m.planRepo.UpdateVisibility(ctx, sessionID, id, entity.VisibilityPrivate, "", m.now())
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	m.logger.Info("Plan share revoked", "planId", id)
	return plan, nil
}

func (m *PlanManager) requireSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionUnknown
	}
	ok, err := m.sessionRepo.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionUnknown
	}
	return nil
}

func (m *PlanManager) shareURL(token string) string {
	if token == "" {
		return ""
	}
	return m.shareBaseURL + "/shared/" + token
}

func validateSaveRequest(req SaveRequest) []FieldIssue {
	var issues []FieldIssue
	for _, f := range req.Query.MissingFields() {
		issues = append(issues, FieldIssue{Field: "query." + f, Message: "required field is missing"})
	}
	if req.SelectedOption.Candidate.ID == "" {
		issues = append(issues, FieldIssue{Field: "selectedOption.candidate.id", Message: "selected option has no candidate id"})
	}
	if req.SelectedOption.Candidate.Origin == "" || req.SelectedOption.Candidate.Destination == "" {
		issues = append(issues, FieldIssue{Field: "selectedOption.candidate", Message: "selected option route is incomplete"})
	}
	return issues
}

// newShareToken returns 32 bytes from a secure random source encoded
// URL-safe. Uniqueness relies on entropy; storage does not enforce it.
func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
