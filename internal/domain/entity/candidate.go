package entity

import (
	"time"
)

// Booking link statuses for a normalized candidate. The cache never
// resolves live booking links, so these are the only two values.
const (
	BookingLinkCached      = "cached"
	BookingLinkUnavailable = "unavailable_in_cache"
)

// CachedAwardCandidate is one cached inventory row normalized into a
// comparable flight-offer shape. Nullable fields stay nil when the
// upstream snapshot did not capture them; absence must never collapse
// into a zero value.
type CachedAwardCandidate struct {
	ID                string     `json:"id" bson:"id"`
	Source            string     `json:"source" bson:"source"`
	Program           string     `json:"program" bson:"program"`
	Cabin             string     `json:"cabin,omitempty" bson:"cabin,omitempty"`
	Origin            string     `json:"origin" bson:"origin"`
	Destination       string     `json:"destination" bson:"destination"`
	DepartAt          *time.Time `json:"departAt,omitempty" bson:"departAt,omitempty"`
	ArriveAt          *time.Time `json:"arriveAt,omitempty" bson:"arriveAt,omitempty"`
	Stops             *int       `json:"stops,omitempty" bson:"stops,omitempty"`
	PointsCost        *int       `json:"pointsCost,omitempty" bson:"pointsCost,omitempty"`
	TaxesFees         *float64   `json:"taxesFees,omitempty" bson:"taxesFees,omitempty"`
	BookingURL        string     `json:"bookingUrl,omitempty" bson:"bookingUrl,omitempty"`
	BookingLinkStatus string     `json:"bookingLinkStatus" bson:"bookingLinkStatus"`
	CacheUpdatedAt    *time.Time `json:"cacheUpdatedAt,omitempty" bson:"cacheUpdatedAt,omitempty"`
	FetchedAt         time.Time  `json:"fetchedAt" bson:"fetchedAt"`
	SeatsAvailable    *int       `json:"seatsAvailable,omitempty" bson:"seatsAvailable,omitempty"`
}

// CacheReadResult is what one read over the award cache yields: the
// normalized candidates, the freshest cacheUpdatedAt among them (nil for
// an empty result) and the number of rows considered before filtering
// by constraints.
type CacheReadResult struct {
	Candidates      []CachedAwardCandidate
	FreshestAt      *time.Time
	ConsideredCount int
}

// CacheStatus summarizes the cache state behind a planning response.
type CacheStatus struct {
	FreshestAt      *time.Time `json:"freshestAt,omitempty" bson:"freshestAt,omitempty"`
	Stale           bool       `json:"stale" bson:"stale"`
	ConsideredCount int        `json:"consideredCount" bson:"consideredCount"`
}
