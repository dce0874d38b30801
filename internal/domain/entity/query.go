package entity

// Cabin classes as they appear in cached inventory rows.
const (
	CabinEconomy  = "economy"
	CabinPremium  = "premium_economy"
	CabinBusiness = "business"
	CabinFirst    = "first"
)

// TripQuery is the caller's award-flight search request. Optional
// constraints use pointers so that "not set" is distinguishable from zero.
type TripQuery struct {
	Origins           []string `json:"origins" bson:"origins"`
	Destinations      []string `json:"destinations,omitempty" bson:"destinations,omitempty"`
	Anywhere          bool     `json:"anywhere,omitempty" bson:"anywhere,omitempty"`
	DateFrom          string   `json:"dateFrom" bson:"dateFrom"`
	DateTo            string   `json:"dateTo" bson:"dateTo"`
	Cabin             string   `json:"cabin" bson:"cabin"`
	Passengers        int      `json:"passengers" bson:"passengers"`
	MaxStops          *int     `json:"maxStops,omitempty" bson:"maxStops,omitempty"`
	NoRedeyes         bool     `json:"noRedeyes,omitempty" bson:"noRedeyes,omitempty"`
	PreferredPrograms []string `json:"preferredPrograms,omitempty" bson:"preferredPrograms,omitempty"`
	MaxPoints         *int     `json:"maxPoints,omitempty" bson:"maxPoints,omitempty"`
	AllowStaleCache   bool     `json:"allowStaleCache,omitempty" bson:"allowStaleCache,omitempty"`
}

// MissingFields returns the names of required fields that are absent.
// A query with any missing field cannot reach the ranking stage.
func (q *TripQuery) MissingFields() []string {
	var missing []string
	if len(q.Origins) == 0 {
		missing = append(missing, "origins")
	}
	if q.DateFrom == "" {
		missing = append(missing, "dateFrom")
	}
	if q.DateTo == "" {
		missing = append(missing, "dateTo")
	}
	if q.Cabin == "" {
		missing = append(missing, "cabin")
	}
	return missing
}

// Complete reports whether the query carries every required field.
func (q *TripQuery) Complete() bool {
	return len(q.MissingFields()) == 0
}
