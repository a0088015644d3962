package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// SettingsRepository is the MongoDB implementation of domain.SettingsRepository.
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	collection := db.Collection("shipment_settings")

	repo := &SettingsRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SettingsRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByCompany retrieves a company's settings, nil when absent
func (r *SettingsRepository) FindByCompany(ctx context.Context, companyID string) (*domain.ShipmentSettings, error) {
	var settings domain.ShipmentSettings
	err := r.collection.FindOne(ctx, bson.M{"companyId": companyID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &settings, err
}

// Save saves or updates settings
func (r *SettingsRepository) Save(ctx context.Context, settings *domain.ShipmentSettings) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"companyId": settings.CompanyID}
	update := bson.M{"$set": settings}
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Delete removes a company's settings so defaults apply again
func (r *SettingsRepository) Delete(ctx context.Context, companyID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"companyId": companyID})
	return err
}
