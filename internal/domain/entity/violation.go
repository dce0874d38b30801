package entity

// Constraint reason codes. Every evaluated rule emits exactly one of
// its codes per candidate: a pass code or a violation code, never both.
const (
	CodeCabinOK           = "CABIN_OK"
	CodeCabinMismatch     = "CABIN_MISMATCH"
	CodeStopsOK           = "STOPS_OK"
	CodeTooManyStops      = "TOO_MANY_STOPS"
	CodeStopsUnknown      = "STOPS_UNKNOWN"
	CodeRedeyeOK          = "REDEYE_OK"
	CodeRedeyeDisallowed  = "REDEYE_DISALLOWED"
	CodeRedeyeUnverified  = "REDEYE_UNVERIFIED"
	CodeSeatsOK           = "SEATS_OK"
	CodeInsufficientSeats = "INSUFFICIENT_SEATS"
	CodeSeatsUnverified   = "SEATS_UNVERIFIED"
)

// Query-level infeasibility codes.
const (
	CodeCacheEmpty = "CACHE_EMPTY"
	CodeCacheStale = "CACHE_STALE"
)

// ConstraintViolation explains why a candidate was rejected, or why a
// query could not produce a plan at all.
type ConstraintViolation struct {
	Code    string                 `json:"code" bson:"code"`
	Message string                 `json:"message" bson:"message"`
	Field   string                 `json:"field,omitempty" bson:"field,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
}
