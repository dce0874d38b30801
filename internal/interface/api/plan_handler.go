package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"planner-service/internal/domain/entity"
	"planner-service/internal/usecase"
)

type savedPlanResponse struct {
	Plan     *entity.SavedPlan `json:"plan"`
	ShareURL string            `json:"shareUrl,omitempty"`
}

func handleSavePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, r, http.StatusBadRequest, codeValidation, "invalid request body: %v", err)
			return
		}

		plan, shareURL, err := deps.Plans.Save(r.Context(), sessionIDFrom(r.Context()), req)
		if err != nil {
			writePlanError(w, r, deps, "save", err)
			return
		}
		writeJSON(w, http.StatusCreated, savedPlanResponse{Plan: plan, ShareURL: shareURL})
	}
}

func handleListPlans(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := deps.Plans.List(r.Context(), sessionIDFrom(r.Context()))
		if err != nil {
			writePlanError(w, r, deps, "list", err)
			return
		}
		if plans == nil {
			plans = []entity.SavedPlan{}
		}
		writeJSON(w, http.StatusOK, plans)
	}
}

func handleGetPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := deps.Plans.Get(r.Context(), sessionIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writePlanError(w, r, deps, "get", err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func handleSharePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, shareURL, err := deps.Plans.MakePublic(r.Context(), sessionIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writePlanError(w, r, deps, "share", err)
			return
		}
		writeJSON(w, http.StatusOK, savedPlanResponse{Plan: plan, ShareURL: shareURL})
	}
}

func handleRevokePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := deps.Plans.Revoke(r.Context(), sessionIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writePlanError(w, r, deps, "revoke", err)
			return
		}
		writeJSON(w, http.StatusOK, savedPlanResponse{Plan: plan})
	}
}

// handleSharedPlan is the unauthenticated share-link lookup. The
// returned plan has its session id redacted by the manager.
func handleSharedPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := deps.Plans.GetByShareToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			writePlanError(w, r, deps, "shared", err)
			return
		}
		writeJSON(w, http.StatusOK, savedPlanResponse{Plan: plan})
	}
}

// writePlanError maps usecase errors onto the structured error body.
func writePlanError(w http.ResponseWriter, r *http.Request, deps Deps, op string, err error) {
	var vErr *usecase.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			ErrorCode: codeValidation,
			Message:   vErr.Error(),
			RequestID: requestIDFrom(r.Context()),
			Issues:    vErr.Issues,
		})
	case errors.Is(err, usecase.ErrSessionUnknown):
		httpError(w, r, http.StatusUnauthorized, codeUnknownSess, "unknown session")
	case errors.Is(err, usecase.ErrPlanNotFound):
		httpError(w, r, http.StatusNotFound, codePlanNotFound, "plan not found")
	case errors.Is(err, usecase.ErrDataIntegrity):
		deps.Logger.Error("Data integrity failure", "requestId", requestIDFrom(r.Context()), "operation", op, "error", err)
		httpError(w, r, http.StatusInternalServerError, codeDataIntegrity, "stored plan failed validation")
	default:
		deps.Logger.Error("Plan operation failed", "requestId", requestIDFrom(r.Context()), "operation", op, "error", err)
		httpError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
