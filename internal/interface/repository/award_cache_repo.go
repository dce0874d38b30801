package repository

import (
	"context"
	"time"

	"planner-service/internal/domain/entity"
	"planner-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Row caps bound the candidate set per read. "Anywhere" searches match
// far more rows, so they get a smaller cap.
const (
	maxCacheRows         = 300
	maxCacheRowsAnywhere = 100
)

// MongoAwardCacheRepository implements AwardCacheRepository over the
// award_snapshots collection. It is strictly read-only.
type MongoAwardCacheRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoAwardCacheRepository creates a new award cache repository.
func NewMongoAwardCacheRepository(db *mongo.Database) repository.AwardCacheRepository {
	collection := db.Collection("award_snapshots")

	// Indexes matching the read path.
	ctx := context.Background()
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}, {Key: "departDate", Value: 1}},
	})
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "cacheUpdatedAt", Value: -1}},
	})

	return &MongoAwardCacheRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Read matches unexpired snapshots against the query and normalizes
// them into candidates. FreshestAt is the maximum cacheUpdatedAt across
// the returned rows, nil when nothing matched.
func (r *MongoAwardCacheRepository) Read(ctx context.Context, q entity.TripQuery) (*entity.CacheReadResult, error) {
	now := r.now()
	filter := bson.M{
		"origin":     bson.M{"$in": q.Origins},
		"departDate": bson.M{"$gte": q.DateFrom, "$lte": q.DateTo},
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$exists": false}},
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": now}},
		},
	}
	if !q.Anywhere && len(q.Destinations) > 0 {
		filter["destination"] = bson.M{"$in": q.Destinations}
	}
	if len(q.PreferredPrograms) > 0 {
		filter["program"] = bson.M{"$in": q.PreferredPrograms}
	}
	if q.MaxPoints != nil {
		filter["pointsCost"] = bson.M{"$lte": *q.MaxPoints}
	}
	if q.Cabin != "" {
		filter["cabin"] = q.Cabin
	}

	limit := int64(maxCacheRows)
	if q.Anywhere {
		limit = maxCacheRowsAnywhere
	}
	opts := options.Find().
		SetSort(bson.D{
			{Key: "cacheUpdatedAt", Value: -1},
			{Key: "pointsCost", Value: 1},
			{Key: "createdAt", Value: -1},
		}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []entity.AwardSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	result := &entity.CacheReadResult{ConsideredCount: len(snapshots)}
	for _, snap := range snapshots {
		candidate := normalizeSnapshot(snap)
		result.Candidates = append(result.Candidates, candidate)
		if candidate.CacheUpdatedAt != nil &&
			(result.FreshestAt == nil || candidate.CacheUpdatedAt.After(*result.FreshestAt)) {
			result.FreshestAt = candidate.CacheUpdatedAt
		}
	}
	return result, nil
}

// normalizeSnapshot converts a stored row into the candidate shape.
// Stop count comes from the raw segment list when present, then from
// the stored stops field, else stays unknown. Availability is copied
// through only when the upstream value is numeric.
func normalizeSnapshot(s entity.AwardSnapshot) entity.CachedAwardCandidate {
	c := entity.CachedAwardCandidate{
		ID:                s.ID,
		Source:            s.Source,
		Program:           s.Program,
		Cabin:             s.Cabin,
		Origin:            s.Origin,
		Destination:       s.Destination,
		DepartAt:          s.DepartAt,
		ArriveAt:          s.ArriveAt,
		PointsCost:        s.PointsCost,
		TaxesFees:         s.TaxesFees,
		BookingURL:        s.BookingURL,
		BookingLinkStatus: entity.BookingLinkUnavailable,
		FetchedAt:         s.FetchedAt,
	}

	if !s.CacheUpdatedAt.IsZero() {
		updated := s.CacheUpdatedAt
		c.CacheUpdatedAt = &updated
	}
	if s.BookingURL != "" {
		c.BookingLinkStatus = entity.BookingLinkCached
	}

	if s.Raw != nil && len(s.Raw.Segments) > 0 {
		stops := len(s.Raw.Segments) - 1
		c.Stops = &stops
	} else if s.Stops != nil {
		c.Stops = s.Stops
	}

	if seats, ok := numericSeats(s.Availability); ok {
		c.SeatsAvailable = &seats
	}
	return c
}

// numericSeats extracts a seat count from the untyped availability
// value. Upstream sources report it as a number, a string or not at
// all; only numeric values count.
func numericSeats(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
