package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"planner-service/internal/domain/entity"
)

// DefaultFreshnessWeight is the score decay per minute of cache age.
const DefaultFreshnessWeight = 0.1

// Score component keys, in breakdown order.
const (
	scorePoints    = "points"
	scoreStops     = "stops"
	scoreFreshness = "freshness"
	scoreProgram   = "program_match"
)

// RankContext carries the ranking inputs that do not live on the query.
type RankContext struct {
	PreferredPrograms []string
	FreshnessWeight   float64   // 0 means DefaultFreshnessWeight
	Now               time.Time // zero means time.Now
}

// Rank scores the accepted options and orders them deterministically.
// The sort key is (score desc, points cost asc with unknown last,
// cacheUpdatedAt desc, candidate id asc); the id tie-break guarantees a
// total order, so identical inputs always produce identical output.
func Rank(accepted []entity.RankedOption, rc RankContext) []entity.RankedOption {
	weight := rc.FreshnessWeight
	if weight == 0 {
		weight = DefaultFreshnessWeight
	}
	now := rc.Now
	if now.IsZero() {
		now = time.Now()
	}

	ranked := make([]entity.RankedOption, len(accepted))
	copy(ranked, accepted)

	for i := range ranked {
		ranked[i].Score, ranked[i].Breakdown = score(ranked[i].Candidate, rc.PreferredPrograms, weight, now)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if cmp := comparePoints(a.Candidate.PointsCost, b.Candidate.PointsCost); cmp != 0 {
			return cmp < 0
		}
		if cmp := compareUpdated(a.Candidate.CacheUpdatedAt, b.Candidate.CacheUpdatedAt); cmp != 0 {
			return cmp < 0
		}
		return a.Candidate.ID < b.Candidate.ID
	})
	return ranked
}

func score(c entity.CachedAwardCandidate, preferred []string, weight float64, now time.Time) (float64, []entity.ScoreComponent) {
	var breakdown []entity.ScoreComponent
	add := func(key string, value float64, rationale string) {
		breakdown = append(breakdown, entity.ScoreComponent{Key: key, Value: value, Rationale: rationale})
	}

	// Points: cheaper is better; unknown cost scores a neutral 50.
	if c.PointsCost != nil && *c.PointsCost > 0 {
		penalty := float64(*c.PointsCost) / 1000
		if penalty > 80 {
			penalty = 80
		}
		add(scorePoints, clampZero(100-penalty), fmt.Sprintf("%d points", *c.PointsCost))
	} else {
		add(scorePoints, 50, "points cost unknown, neutral default")
	}

	// Stops: unknown counts as 2 so it is penalized without zeroing out.
	stops := 2
	rationale := "stop count unknown, assuming 2"
	if c.Stops != nil {
		stops = *c.Stops
		rationale = fmt.Sprintf("%d stops", stops)
	}
	add(scoreStops, clampZero(30-float64(stops)*10), rationale)

	// Freshness: decays with cache age; a missing timestamp earns no
	// bonus beyond zero age.
	ageMinutes := 0.0
	if c.CacheUpdatedAt != nil {
		ageMinutes = now.Sub(*c.CacheUpdatedAt).Minutes()
	}
	add(scoreFreshness, clampZero(20-ageMinutes*weight), fmt.Sprintf("cache age %.0f min", ageMinutes))

	// Program match: flat bonus when the program is on the caller's list.
	programBonus := 0.0
	rationale = "program not in preferred list"
	for _, p := range preferred {
		if strings.EqualFold(p, c.Program) {
			programBonus = 10
			rationale = fmt.Sprintf("program %s is preferred", c.Program)
			break
		}
	}
	add(scoreProgram, programBonus, rationale)

	total := 0.0
	for _, comp := range breakdown {
		total += comp.Value
	}
	return total, breakdown
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// comparePoints orders ascending cost with unknown cost last.
func comparePoints(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// compareUpdated orders most-recently-updated first, unknown last.
func compareUpdated(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case a.Before(*b):
		return 1
	}
	return 0
}
