package api

import (
	"encoding/json"
	"net/http"

	"planner-service/internal/domain/entity"
)

// handlePlan runs the planning pipeline. All three outcome variants
// are HTTP 200; the status field in the body carries the semantics.
func handlePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query entity.TripQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			httpError(w, r, http.StatusBadRequest, codeValidation, "invalid request body: %v", err)
			return
		}

		resp, err := deps.Planner.Plan(r.Context(), sessionIDFrom(r.Context()), requestIDFrom(r.Context()), query)
		if err != nil {
			deps.Logger.Error("Planning failed", "requestId", requestIDFrom(r.Context()), "error", err)
			httpError(w, r, http.StatusInternalServerError, codeInternal, "planning failed")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
