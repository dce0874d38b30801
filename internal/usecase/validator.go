package usecase

import (
	"fmt"
	"strings"

	"planner-service/internal/domain/entity"
)

// ValidationOutcome is the verdict for one candidate against one query.
type ValidationOutcome struct {
	Passed      bool
	Violations  []entity.ConstraintViolation
	PassedCodes []string
}

// Validate evaluates every applicable constraint rule independently.
// The candidate passes only when no rule violates. Rules fail closed:
// whenever the data needed to decide is missing, the rule rejects
// rather than assuming compliance.
func Validate(c entity.CachedAwardCandidate, q entity.TripQuery) ValidationOutcome {
	var out ValidationOutcome

	pass := func(code string) {
		out.PassedCodes = append(out.PassedCodes, code)
	}
	fail := func(code, field, msg string, meta map[string]interface{}) {
		out.Violations = append(out.Violations, entity.ConstraintViolation{
			Code:    code,
			Message: msg,
			Field:   field,
			Meta:    meta,
		})
	}

	// Cabin. An unknown candidate cabin is treated as compatible.
	if q.Cabin != "" && c.Cabin != "" && !strings.EqualFold(c.Cabin, q.Cabin) {
		fail(entity.CodeCabinMismatch, "cabin",
			fmt.Sprintf("cabin %s does not match requested %s", c.Cabin, q.Cabin), nil)
	} else {
		pass(entity.CodeCabinOK)
	}

	// Stops, only when the query sets a ceiling.
	if q.MaxStops != nil {
		switch {
		case c.Stops == nil:
			fail(entity.CodeStopsUnknown, "stops",
				"stop count is not known for this cached offer", nil)
		case *c.Stops > *q.MaxStops:
			fail(entity.CodeTooManyStops, "stops",
				fmt.Sprintf("%d stops exceeds maximum of %d", *c.Stops, *q.MaxStops),
				map[string]interface{}{"stops": *c.Stops, "maxStops": *q.MaxStops})
		default:
			pass(entity.CodeStopsOK)
		}
	}

	// Red-eye, only when the query disallows them.
	if q.NoRedeyes {
		switch {
		case c.DepartAt == nil || c.ArriveAt == nil:
			fail(entity.CodeRedeyeUnverified, "departAt",
				"departure or arrival time is missing, cannot verify red-eye", nil)
		case isRedeye(c):
			fail(entity.CodeRedeyeDisallowed, "departAt",
				"flight is a red-eye and the query disallows red-eyes", nil)
		default:
			pass(entity.CodeRedeyeOK)
		}
	}

	// Seats, only when more than one passenger travels.
	if q.Passengers > 1 {
		switch {
		case c.SeatsAvailable == nil:
			fail(entity.CodeSeatsUnverified, "seatsAvailable",
				"seat availability is not known for this cached offer", nil)
		case *c.SeatsAvailable < q.Passengers:
			fail(entity.CodeInsufficientSeats, "seatsAvailable",
				fmt.Sprintf("only %d seats available for %d passengers", *c.SeatsAvailable, q.Passengers),
				map[string]interface{}{"seatsAvailable": *c.SeatsAvailable, "passengers": q.Passengers})
		default:
			pass(entity.CodeSeatsOK)
		}
	}

	out.Passed = len(out.Violations) == 0
	return out
}

// isRedeye reports whether a flight departs in the UTC window
// [22:00, 05:00) and arrives in [04:00, 08:00]. Both timestamps must be
// present; callers handle the missing case.
func isRedeye(c entity.CachedAwardCandidate) bool {
	dep := c.DepartAt.UTC().Hour()
	arr := c.ArriveAt.UTC().Hour()
	departsLate := dep >= 22 || dep < 5
	arrivesEarly := arr >= 4 && arr <= 8
	return departsLate && arrivesEarly
}

// ApplyConstraints partitions candidates into unscored accepted options
// and a flattened list of every violation across all rejected
// candidates. The flat list is what the planner reports when nothing
// survives filtering.
func ApplyConstraints(candidates []entity.CachedAwardCandidate, q entity.TripQuery) (accepted []entity.RankedOption, rejected []entity.ConstraintViolation) {
	for _, c := range candidates {
		outcome := Validate(c, q)
		if outcome.Passed {
			accepted = append(accepted, entity.RankedOption{
				Candidate:   c,
				PassedCodes: outcome.PassedCodes,
			})
			continue
		}
		rejected = append(rejected, outcome.Violations...)
	}
	return accepted, rejected
}
