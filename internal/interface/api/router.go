package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"planner-service/internal/domain/repository"
	"planner-service/internal/usecase"
	"planner-service/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Planner  *usecase.Planner
	Plans    *usecase.PlanManager
	Sessions repository.SessionRepository
	Logger   logger.Logger
}

// NewHandler builds the HTTP routing tree. Session-scoped routes sit
// behind SessionAuth; the share-token lookup is deliberately public.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(SessionAuth(deps.Sessions, deps.Logger))
			r.Post("/plan", handlePlan(deps))
			r.Post("/plans", handleSavePlan(deps))
			r.Get("/plans", handleListPlans(deps))
			r.Get("/plans/{id}", handleGetPlan(deps))
			r.Post("/plans/{id}/share", handleSharePlan(deps))
			r.Post("/plans/{id}/revoke", handleRevokePlan(deps))
		})
		r.Get("/shared/{token}", handleSharedPlan(deps))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	return r
}
