package entity

import (
	"fmt"
	"time"
)

// Plan visibility values.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// RedactedSessionID replaces the owning session id on publicly shared
// plans so a share link never leaks the owner.
const RedactedSessionID = "shared"

// Provenance records what cache state and planner version produced a
// saved plan's selected option.
type Provenance struct {
	PlannerVersion  string     `json:"plannerVersion" bson:"plannerVersion"`
	CacheFreshestAt *time.Time `json:"cacheFreshestAt,omitempty" bson:"cacheFreshestAt,omitempty"`
	CacheWasStale   bool       `json:"cacheWasStale" bson:"cacheWasStale"`
	ConsideredCount int        `json:"consideredCount" bson:"consideredCount"`
	DataSource      string     `json:"dataSource" bson:"dataSource"`
	ValidatedAt     time.Time  `json:"validatedAt" bson:"validatedAt"`
}

// SavedPlan is a user-selected ranked option persisted together with
// the query that produced it and a provenance record. Plans are owned
// by a session and never transferred; mutations only toggle visibility
// and the share token.
type SavedPlan struct {
	ID             string       `json:"id" bson:"_id"`
	SessionID      string       `json:"sessionId" bson:"sessionId"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updatedAt"`
	Title          string       `json:"title,omitempty" bson:"title,omitempty"`
	Visibility     string       `json:"visibility" bson:"visibility"`
	ShareToken     string       `json:"shareToken,omitempty" bson:"shareToken,omitempty"`
	Query          TripQuery    `json:"query" bson:"query"`
	SelectedOption RankedOption `json:"selectedOption" bson:"selectedOption"`
	Provenance     Provenance   `json:"provenance" bson:"provenance"`
}

// Validate re-checks a persisted plan against the canonical shape.
// A failure here means the stored record is corrupt; callers must treat
// it as a data-integrity error, never render the plan partially.
func (p *SavedPlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("saved plan: id is empty")
	}
	if p.SessionID == "" {
		return fmt.Errorf("saved plan %s: session id is empty", p.ID)
	}
	if p.Visibility != VisibilityPrivate && p.Visibility != VisibilityPublic {
		return fmt.Errorf("saved plan %s: invalid visibility %q", p.ID, p.Visibility)
	}
	if p.Visibility == VisibilityPublic && p.ShareToken == "" {
		return fmt.Errorf("saved plan %s: public plan has no share token", p.ID)
	}
	if !p.Query.Complete() {
		return fmt.Errorf("saved plan %s: stored query is incomplete: missing %v", p.ID, p.Query.MissingFields())
	}
	if err := p.SelectedOption.Validate(); err != nil {
		return fmt.Errorf("saved plan %s: %w", p.ID, err)
	}
	if p.Provenance.PlannerVersion == "" || p.Provenance.DataSource == "" {
		return fmt.Errorf("saved plan %s: provenance is incomplete", p.ID)
	}
	if p.Provenance.ValidatedAt.IsZero() {
		return fmt.Errorf("saved plan %s: provenance has no validation timestamp", p.ID)
	}
	return nil
}
