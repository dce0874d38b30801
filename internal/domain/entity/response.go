package entity

// Response statuses form a closed set; the discriminator, not the HTTP
// status, carries the planning outcome.
const (
	StatusOK             = "ok"
	StatusNeedsInput     = "needs_input"
	StatusNoFeasiblePlan = "no_feasible_plan"
)

// PlanResponse is the single response shape of the planner. Exactly one
// variant is populated, selected by Status:
//
//	needs_input      — MissingFields
//	no_feasible_plan — Reasons (+ CacheStatus when a cache read happened)
//	ok               — Query, Options, CacheStatus
//
// RequestID is present on every variant.
type PlanResponse struct {
	Status        string                `json:"status"`
	RequestID     string                `json:"requestId"`
	MissingFields []string              `json:"missingFields,omitempty"`
	Reasons       []ConstraintViolation `json:"reasons,omitempty"`
	Query         *TripQuery            `json:"query,omitempty"`
	Options       []RankedOption        `json:"options,omitempty"`
	CacheStatus   *CacheStatus          `json:"cacheStatus,omitempty"`
}
