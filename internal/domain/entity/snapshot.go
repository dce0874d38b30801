package entity

import (
	"time"
)

// AwardSnapshot is a persisted flight-inventory row as ingested by the
// collectors. Fields mirror whatever the upstream source exposed, so
// most are optional.
type AwardSnapshot struct {
	ID             string      `bson:"_id,omitempty"`
	Source         string      `bson:"source"`
	Program        string      `bson:"program"`
	Cabin          string      `bson:"cabin,omitempty"`
	Origin         string      `bson:"origin"`
	Destination    string      `bson:"destination"`
	DepartDate     string      `bson:"departDate"` // yyyy-mm-dd, used for window filtering
	DepartAt       *time.Time  `bson:"departAt,omitempty"`
	ArriveAt       *time.Time  `bson:"arriveAt,omitempty"`
	Stops          *int        `bson:"stops,omitempty"`
	Raw            *RawOffer   `bson:"raw,omitempty"`
	PointsCost     *int        `bson:"pointsCost,omitempty"`
	TaxesFees      *float64    `bson:"taxesFees,omitempty"`
	BookingURL     string      `bson:"bookingUrl,omitempty"`
	Availability   interface{} `bson:"availability,omitempty"` // upstream type varies; only numeric values count
	CacheUpdatedAt time.Time   `bson:"cacheUpdatedAt"`
	FetchedAt      time.Time   `bson:"fetchedAt"`
	CreatedAt      time.Time   `bson:"createdAt"`
	ExpiresAt      *time.Time  `bson:"expiresAt,omitempty"`
}

// RawOffer is the subset of the upstream payload the planner cares
// about: the flight segments, when the source reported them.
type RawOffer struct {
	Segments []RawSegment `bson:"segments,omitempty"`
}

// RawSegment is one leg of a cached offer.
type RawSegment struct {
	Carrier      string `bson:"carrier,omitempty"`
	FlightNumber string `bson:"flightNumber,omitempty"`
	Origin       string `bson:"origin,omitempty"`
	Destination  string `bson:"destination,omitempty"`
}
