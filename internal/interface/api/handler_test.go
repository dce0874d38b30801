package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"planner-service/internal/domain/entity"
	"planner-service/internal/usecase"
	"planner-service/pkg/logger"
)

type stubCacheRepo struct {
	result *entity.CacheReadResult
}

func (s *stubCacheRepo) Read(_ context.Context, _ entity.TripQuery) (*entity.CacheReadResult, error) {
	if s.result == nil {
		return &entity.CacheReadResult{}, nil
	}
	return s.result, nil
}

type stubSessionRepo struct {
	known map[string]bool
}

func (s *stubSessionRepo) Exists(_ context.Context, id string) (bool, error) {
	return s.known[id], nil
}

func (s *stubSessionRepo) GetPreferredPrograms(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type stubPlanRepo struct {
	mu    sync.Mutex
	plans map[string]entity.SavedPlan
}

func (s *stubPlanRepo) Insert(_ context.Context, plan *entity.SavedPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = *plan
	return nil
}

func (s *stubPlanRepo) ListBySession(_ context.Context, sessionID string) ([]entity.SavedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.SavedPlan
	for _, p := range s.plans {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubPlanRepo) GetByID(_ context.Context, sessionID, id string) (*entity.SavedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok || p.SessionID != sessionID {
		return nil, nil
	}
	return &p, nil
}

func (s *stubPlanRepo) GetByShareToken(_ context.Context, token string) (*entity.SavedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ShareToken == token && p.Visibility == entity.VisibilityPublic {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubPlanRepo) UpdateVisibility(_ context.Context, sessionID, id, visibility, shareToken string, at time.Time) (*entity.SavedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok || p.SessionID != sessionID {
		return nil, nil
	}
	p.Visibility = visibility
	p.ShareToken = shareToken
	p.UpdatedAt = at
	s.plans[id] = p
	return &p, nil
}

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	updated := time.Now().Add(-1 * time.Minute)
	stops := 0
	cache := &stubCacheRepo{result: &entity.CacheReadResult{
		Candidates: []entity.CachedAwardCandidate{{
			ID:                "snap-1",
			Source:            "award_cache",
			Program:           "aeroplan",
			Cabin:             entity.CabinBusiness,
			Origin:            "JFK",
			Destination:       "LHR",
			Stops:             &stops,
			BookingLinkStatus: entity.BookingLinkCached,
			CacheUpdatedAt:    &updated,
			FetchedAt:         updated,
		}},
		FreshestAt:      &updated,
		ConsideredCount: 1,
	}}
	sessions := &stubSessionRepo{known: map[string]bool{"sess-1": true}}
	planRepo := &stubPlanRepo{plans: make(map[string]entity.SavedPlan)}
	log := logger.NewNop()

	planner := usecase.NewPlanner(cache, sessions, log, nil)
	plans := usecase.NewPlanManager(planRepo, cache, sessions, log, nil, "https://deals.example.com", "2.1.0")

	return NewHandler(Deps{Planner: planner, Plans: plans, Sessions: sessions, Logger: log})
}

func doJSON(t *testing.T, h http.Handler, method, path, body, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const planBody = `{
	"origins": ["JFK"],
	"destinations": ["LHR"],
	"dateFrom": "2026-09-01",
	"dateTo": "2026-09-07",
	"cabin": "business",
	"passengers": 1
}`

func TestPlanEndpointRequiresSession(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plan", planBody, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plan", planBody, "sess-unknown")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown session status = %d, want 401", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.ErrorCode != codeUnknownSess {
		t.Errorf("errorCode = %s, want UNKNOWN_SESSION", body.ErrorCode)
	}
}

func TestPlanEndpointVariants(t *testing.T) {
	h := setupHandler(t)

	t.Run("ok", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/plan", planBody, "sess-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp entity.PlanResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Status != entity.StatusOK || len(resp.Options) != 1 {
			t.Errorf("response = %s with %d options, want ok with 1", resp.Status, len(resp.Options))
		}
		if resp.RequestID == "" {
			t.Error("response carries no request id")
		}
		if rec.Header().Get("X-Request-ID") != resp.RequestID {
			t.Error("header and body request ids differ")
		}
	})

	t.Run("needs_input is still 200", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/plan", `{"origins": ["JFK"]}`, "sess-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp entity.PlanResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Status != entity.StatusNeedsInput || len(resp.MissingFields) != 3 {
			t.Errorf("response = %s missing %v, want needs_input with dateFrom/dateTo/cabin", resp.Status, resp.MissingFields)
		}
	})
}

func TestSavedPlanFlow(t *testing.T) {
	h := setupHandler(t)

	saveBody := `{
		"query": ` + planBody + `,
		"selectedOption": {
			"candidate": {"id": "snap-1", "source": "award_cache", "program": "aeroplan",
				"origin": "JFK", "destination": "LHR", "bookingLinkStatus": "cached",
				"fetchedAt": "2026-09-01T11:00:00Z"},
			"verified": true
		},
		"title": "autumn trip"
	}`

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans", saveBody, "sess-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var saved savedPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decoding save response: %v", err)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plans/"+saved.Plan.ID+"/share", "", "sess-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("share status = %d, want 200", rec.Code)
	}
	var shared savedPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &shared); err != nil {
		t.Fatalf("decoding share response: %v", err)
	}
	if shared.Plan.ShareToken == "" {
		t.Fatal("share response carries no token")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/shared/"+shared.Plan.ShareToken, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("shared lookup status = %d, want 200", rec.Code)
	}
	var public savedPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &public); err != nil {
		t.Fatalf("decoding shared response: %v", err)
	}
	if public.Plan.SessionID != entity.RedactedSessionID {
		t.Errorf("public view leaks session id %q", public.Plan.SessionID)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plans/"+saved.Plan.ID+"/revoke", "", "sess-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/shared/"+shared.Plan.ShareToken, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("revoked token status = %d, want 404", rec.Code)
	}
}

func TestSavedPlanValidationError(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans", `{"query": {"origins": []}}`, "sess-1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.ErrorCode != codeValidation || body.Issues == nil {
		t.Errorf("body = %+v, want VALIDATION_ERROR with issues", body)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	h := setupHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/plans/nonexistent", "", "sess-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.ErrorCode != codePlanNotFound {
		t.Errorf("errorCode = %s, want PLAN_NOT_FOUND", body.ErrorCode)
	}
}
