package entity

import (
	"errors"
)

// ScoreComponent is one addend of an option's score, kept so callers
// can show how a ranking came to be.
type ScoreComponent struct {
	Key       string  `json:"key" bson:"key"`
	Value     float64 `json:"value" bson:"value"`
	Rationale string  `json:"rationale" bson:"rationale"`
}

// RankedOption pairs a candidate with its score and the constraint
// codes it passed. Verified is set once by the orchestrator after the
// global staleness of the cache read is known; nothing else mutates an
// option after construction.
type RankedOption struct {
	Candidate   CachedAwardCandidate `json:"candidate" bson:"candidate"`
	Verified    bool                 `json:"verified" bson:"verified"`
	Score       float64              `json:"score" bson:"score"`
	Breakdown   []ScoreComponent     `json:"breakdown,omitempty" bson:"breakdown,omitempty"`
	PassedCodes []string             `json:"passedCodes,omitempty" bson:"passedCodes,omitempty"`
	FailedCodes []string             `json:"failedCodes,omitempty" bson:"failedCodes,omitempty"`
}

// Validate checks the shape of a stored option. Used when re-validating
// persisted plans on read.
func (o *RankedOption) Validate() error {
	if o.Candidate.ID == "" {
		return errors.New("ranked option: candidate id is empty")
	}
	if o.Candidate.Origin == "" || o.Candidate.Destination == "" {
		return errors.New("ranked option: candidate route is incomplete")
	}
	return nil
}
