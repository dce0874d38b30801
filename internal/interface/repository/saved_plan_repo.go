package repository

import (
	"context"
	"errors"
	"time"

	"planner-service/internal/domain/entity"
	"planner-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSavedPlanRepository implements SavedPlanRepository over the
// saved_plans collection.
type MongoSavedPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoSavedPlanRepository creates a new saved plan repository.
func NewMongoSavedPlanRepository(db *mongo.Database) repository.SavedPlanRepository {
	collection := db.Collection("saved_plans")

	ctx := context.Background()
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	// Share tokens are looked up directly; uniqueness rests on the 32
	// bytes of entropy, not on a constraint.
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"shareToken": 1},
		Options: options.Index().SetSparse(true),
	})

	return &MongoSavedPlanRepository{
		collection: collection,
	}
}

// Insert stores a new plan.
func (r *MongoSavedPlanRepository) Insert(ctx context.Context, plan *entity.SavedPlan) error {
	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

// ListBySession returns all plans owned by the session, newest first.
func (r *MongoSavedPlanRepository) ListBySession(ctx context.Context, sessionID string) ([]entity.SavedPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []entity.SavedPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetByID returns the plan only when the session owns it.
func (r *MongoSavedPlanRepository) GetByID(ctx context.Context, sessionID, id string) (*entity.SavedPlan, error) {
	var plan entity.SavedPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "sessionId": sessionID}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByShareToken resolves a token against public plans only.
func (r *MongoSavedPlanRepository) GetByShareToken(ctx context.Context, token string) (*entity.SavedPlan, error) {
	var plan entity.SavedPlan
	filter := bson.M{"shareToken": token, "visibility": entity.VisibilityPublic}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateVisibility applies the visibility and token change as one
// atomic ownership-filtered update and returns the record as written.
// A concurrent revoke and makePublic on the same plan therefore
// serialize at the document level; neither can half-apply.
func (r *MongoSavedPlanRepository) UpdateVisibility(ctx context.Context, sessionID, id, visibility, shareToken string, at time.Time) (*entity.SavedPlan, error) {
	update := bson.M{"$set": bson.M{
		"visibility": visibility,
		"shareToken": shareToken,
		"updatedAt":  at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var plan entity.SavedPlan
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "sessionId": sessionID}, update, opts).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
