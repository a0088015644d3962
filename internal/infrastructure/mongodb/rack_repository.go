package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// RackRepository is the MongoDB implementation of domain.RackRepository.
type RackRepository struct {
	collection *mongo.Collection
}

// NewRackRepository creates a new RackRepository
func NewRackRepository(db *mongo.Database) *RackRepository {
	collection := db.Collection("racks")

	repo := &RackRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *RackRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "rackId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "status", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save saves or updates a rack
func (r *RackRepository) Save(ctx context.Context, rack *domain.Rack) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"companyId": rack.CompanyID, "rackId": rack.RackID}
	update := bson.M{"$set": rack}
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByRackID retrieves a rack by its RackID within a company
func (r *RackRepository) FindByRackID(ctx context.Context, companyID, rackID string) (*domain.Rack, error) {
	var rack domain.Rack
	err := r.collection.FindOne(ctx, bson.M{"companyId": companyID, "rackId": rackID}).Decode(&rack)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &rack, err
}

// FindByCode retrieves a rack by its human code within a company
func (r *RackRepository) FindByCode(ctx context.Context, companyID, code string) (*domain.Rack, error) {
	var rack domain.Rack
	err := r.collection.FindOne(ctx, bson.M{"companyId": companyID, "code": code}).Decode(&rack)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &rack, err
}

// FindAll retrieves a company's racks ordered by code
func (r *RackRepository) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Rack, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, bson.M{"companyId": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var racks []*domain.Rack
	err = cursor.All(ctx, &racks)
	return racks, err
}

// Count returns the number of racks in a company
func (r *RackRepository) Count(ctx context.Context, companyID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"companyId": companyID})
}

// Delete removes a rack
func (r *RackRepository) Delete(ctx context.Context, companyID, rackID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"companyId": companyID, "rackId": rackID})
	return err
}
