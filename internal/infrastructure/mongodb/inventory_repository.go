package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// InventoryRepository is the MongoDB implementation of domain.InventoryRepository.
// Entries whose quantity reaches zero are removed so the join only lists
// shipments actually occupying the rack.
type InventoryRepository struct {
	collection *mongo.Collection
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	collection := db.Collection("rack_inventory")

	repo := &InventoryRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *InventoryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "rackId", Value: 1}, {Key: "shipmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "shipmentId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// AdjustQuantity changes the recorded quantity by delta, creating the
// entry on first assignment and removing it once empty
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, companyID, rackID, shipmentID string, delta int) error {
	now := time.Now().UTC()
	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"companyId":  companyID,
		"rackId":     rackID,
		"shipmentId": shipmentID,
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return err
	}

	cleanup := bson.M{
		"companyId":  companyID,
		"rackId":     rackID,
		"shipmentId": shipmentID,
		"quantity":   bson.M{"$lte": 0},
	}
	_, err := r.collection.DeleteOne(ctx, cleanup)
	return err
}

// FindByRack retrieves the inventory entries of a rack
func (r *InventoryRepository) FindByRack(ctx context.Context, companyID, rackID string) ([]*domain.RackInventory, error) {
	filter := bson.M{"companyId": companyID, "rackId": rackID}
	opts := options.Find().SetSort(bson.D{{Key: "shipmentId", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var inventory []*domain.RackInventory
	err = cursor.All(ctx, &inventory)
	return inventory, err
}
