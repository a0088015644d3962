package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// ActivityRepository is the MongoDB implementation of domain.ActivityRepository.
// The collection is append-only; entries are never updated or removed.
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	collection := db.Collection("rack_activity")

	repo := &ActivityRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ActivityRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "activityId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "rackId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Append records an activity entry
func (r *ActivityRepository) Append(ctx context.Context, activity *domain.RackActivity) error {
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// FindByRack retrieves a rack's activity, newest first
func (r *ActivityRepository) FindByRack(ctx context.Context, companyID, rackID string, pagination domain.Pagination) ([]*domain.RackActivity, error) {
	filter := bson.M{"companyId": companyID, "rackId": rackID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activity []*domain.RackActivity
	err = cursor.All(ctx, &activity)
	return activity, err
}
