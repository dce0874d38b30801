package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"planner-service/internal/domain/entity"
	"planner-service/pkg/logger"
)

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[string]entity.SavedPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]entity.SavedPlan)}
}

func (f *fakePlanRepo) Insert(_ context.Context, plan *entity.SavedPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[plan.ID] = *plan
	return nil
}

func (f *fakePlanRepo) ListBySession(_ context.Context, sessionID string) ([]entity.SavedPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.SavedPlan
	for _, p := range f.plans {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, sessionID, id string) (*entity.SavedPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.SessionID != sessionID {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePlanRepo) GetByShareToken(_ context.Context, token string) (*entity.SavedPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.ShareToken == token && p.Visibility == entity.VisibilityPublic {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakePlanRepo) UpdateVisibility(_ context.Context, sessionID, id, visibility, shareToken string, at time.Time) (*entity.SavedPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.SessionID != sessionID {
		return nil, nil
	}
	p.Visibility = visibility
	p.ShareToken = shareToken
	p.UpdatedAt = at
	f.plans[id] = p
	return &p, nil
}

func newTestPlanManager(t *testing.T) (*PlanManager, *fakePlanRepo, *fakeCacheRepo) {
	t.Helper()
	planRepo := newFakePlanRepo()
	cache := &fakeCacheRepo{result: readResultWith(matchingCandidate(plannerNow.Add(-1 * time.Minute)))}
	sessions := &fakeSessionRepo{sessions: map[string][]string{"sess-1": nil, "sess-2": nil}}

	m := NewPlanManager(planRepo, cache, sessions, logger.NewNop(), nil, "https://deals.example.com", "2.1.0")
	m.now = func() time.Time { return plannerNow }
	return m, planRepo, cache
}

func saveRequest() SaveRequest {
	return SaveRequest{
		Query:          baseQuery(),
		SelectedOption: entity.RankedOption{Candidate: matchingCandidate(plannerNow.Add(-1 * time.Minute)), Verified: true},
		Title:          "autumn trip",
	}
}

func TestSaveBuildsProvenance(t *testing.T) {
	m, _, _ := newTestPlanManager(t)

	plan, shareURL, err := m.Save(context.Background(), "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if shareURL != "" {
		t.Errorf("private save produced share URL %q", shareURL)
	}
	if plan.Visibility != entity.VisibilityPrivate || plan.ShareToken != "" {
		t.Errorf("plan = %s/%q, want private with no token", plan.Visibility, plan.ShareToken)
	}
	prov := plan.Provenance
	if prov.PlannerVersion != "2.1.0" || prov.DataSource != DataSourceTag {
		t.Errorf("provenance = %+v, want version 2.1.0 and source %s", prov, DataSourceTag)
	}
	if prov.CacheWasStale || prov.ConsideredCount != 1 || prov.CacheFreshestAt == nil {
		t.Errorf("provenance cache state = %+v, want fresh with one considered row", prov)
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("freshly saved plan fails its own validation: %v", err)
	}
}

func TestSavePublicIssuesToken(t *testing.T) {
	m, _, _ := newTestPlanManager(t)

	req := saveRequest()
	req.MakePublic = true
	plan, shareURL, err := m.Save(context.Background(), "sess-1", req)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	// 32 random bytes encode to 43 URL-safe characters.
	if len(plan.ShareToken) != 43 {
		t.Errorf("token length = %d, want 43", len(plan.ShareToken))
	}
	if strings.ContainsAny(plan.ShareToken, "+/=") {
		t.Errorf("token %q is not URL-safe", plan.ShareToken)
	}
	if want := "https://deals.example.com/shared/" + plan.ShareToken; shareURL != want {
		t.Errorf("share URL = %q, want %q", shareURL, want)
	}
}

func TestSaveUnknownSession(t *testing.T) {
	m, _, _ := newTestPlanManager(t)
	if _, _, err := m.Save(context.Background(), "nobody", saveRequest()); !errors.Is(err, ErrSessionUnknown) {
		t.Errorf("err = %v, want ErrSessionUnknown", err)
	}
}

func TestSaveValidation(t *testing.T) {
	m, _, _ := newTestPlanManager(t)

	req := saveRequest()
	req.Query.Origins = nil
	req.Query.Cabin = ""
	req.SelectedOption.Candidate.ID = ""

	_, _, err := m.Save(context.Background(), "sess-1", req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(vErr.Issues) != 3 {
		t.Errorf("issues = %v, want origins, cabin and candidate id", vErr.Issues)
	}
}

func TestShareTokenLifecycle(t *testing.T) {
	m, _, _ := newTestPlanManager(t)
	ctx := context.Background()

	plan, _, err := m.Save(ctx, "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	shared, shareURL, err := m.MakePublic(ctx, "sess-1", plan.ID)
	if err != nil {
		t.Fatalf("MakePublic returned error: %v", err)
	}
	token1 := shared.ShareToken
	if token1 == "" || !strings.HasSuffix(shareURL, token1) {
		t.Fatalf("token %q / url %q inconsistent", token1, shareURL)
	}

	got, err := m.GetByShareToken(ctx, token1)
	if err != nil {
		t.Fatalf("GetByShareToken returned error: %v", err)
	}
	if got.SessionID != entity.RedactedSessionID {
		t.Errorf("shared plan leaks session id %q", got.SessionID)
	}

	// Re-sharing rotates the token; the old link dies.
	reshared, _, err := m.MakePublic(ctx, "sess-1", plan.ID)
	if err != nil {
		t.Fatalf("second MakePublic returned error: %v", err)
	}
	token2 := reshared.ShareToken
	if token2 == token1 {
		t.Fatal("MakePublic reused the previous token")
	}
	if _, err := m.GetByShareToken(ctx, token1); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("old token still resolves: %v", err)
	}
	if _, err := m.GetByShareToken(ctx, token2); err != nil {
		t.Errorf("new token does not resolve: %v", err)
	}

	// Revoking kills the newest token too.
	revoked, err := m.Revoke(ctx, "sess-1", plan.ID)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if revoked.Visibility != entity.VisibilityPrivate || revoked.ShareToken != "" {
		t.Errorf("revoked plan = %s/%q, want private with no token", revoked.Visibility, revoked.ShareToken)
	}
	if _, err := m.GetByShareToken(ctx, token2); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("revoked token still resolves: %v", err)
	}
}

func TestPlanOwnership(t *testing.T) {
	m, _, _ := newTestPlanManager(t)
	ctx := context.Background()

	plan, _, err := m.Save(ctx, "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if _, err := m.Get(ctx, "sess-2", plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("foreign Get err = %v, want ErrPlanNotFound", err)
	}
	if _, _, err := m.MakePublic(ctx, "sess-2", plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("foreign MakePublic err = %v, want ErrPlanNotFound", err)
	}
	if _, err := m.Revoke(ctx, "sess-2", plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("foreign Revoke err = %v, want ErrPlanNotFound", err)
	}
}

func TestGetRecomputesCacheStatus(t *testing.T) {
	m, _, cache := newTestPlanManager(t)
	ctx := context.Background()

	plan, _, err := m.Save(ctx, "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	// The cache behind the plan's query has gone stale since the save.
	cache.result = readResultWith(matchingCandidate(plannerNow.Add(-3 * time.Hour)))

	detail, err := m.Get(ctx, "sess-1", plan.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if detail.CurrentCacheStatus == nil || !detail.CurrentCacheStatus.Stale {
		t.Errorf("current cache status = %+v, want stale", detail.CurrentCacheStatus)
	}
	if detail.Plan.Provenance.CacheWasStale {
		t.Error("provenance must keep the save-time state, not the current one")
	}
}

func TestListNewestFirstAndIntegrity(t *testing.T) {
	m, planRepo, _ := newTestPlanManager(t)
	ctx := context.Background()

	first, _, err := m.Save(ctx, "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	m.now = func() time.Time { return plannerNow.Add(time.Hour) }
	second, _, err := m.Save(ctx, "sess-1", saveRequest())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	plans, err := m.List(ctx, "sess-1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(plans) != 2 || plans[0].ID != second.ID || plans[1].ID != first.ID {
		t.Errorf("list order = %v, want newest first", plans)
	}

	// A corrupt stored record fails the whole read; it is never
	// silently dropped.
	corrupt := entity.SavedPlan{ID: "corrupt", SessionID: "sess-1", CreatedAt: plannerNow, Visibility: "nonsense"}
	planRepo.plans[corrupt.ID] = corrupt

	if _, err := m.List(ctx, "sess-1"); !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("List with corrupt record err = %v, want ErrDataIntegrity", err)
	}
}
