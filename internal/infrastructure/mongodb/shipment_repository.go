package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// ShipmentRepository is the MongoDB implementation of domain.ShipmentRepository.
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository creates a new ShipmentRepository
func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	collection := db.Collection("shipments")

	repo := &ShipmentRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ShipmentRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "shipmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "profileId", Value: 1}}},
		{Keys: bson.D{{Key: "masterQr", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save saves or updates a shipment
func (r *ShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"companyId": shipment.CompanyID, "shipmentId": shipment.ShipmentID}
	update := bson.M{"$set": shipment}
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByShipmentID retrieves a shipment within a company
func (r *ShipmentRepository) FindByShipmentID(ctx context.Context, companyID, shipmentID string) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.collection.FindOne(ctx, bson.M{"companyId": companyID, "shipmentId": shipmentID}).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &shipment, err
}

// FindByStatus retrieves a company's shipments by status, newest first
func (r *ShipmentRepository) FindByStatus(ctx context.Context, companyID string, status domain.ShipmentStatus, pagination domain.Pagination) ([]*domain.Shipment, error) {
	filter := bson.M{"companyId": companyID, "status": status}
	return r.find(ctx, filter, pagination)
}

// FindAll retrieves a company's shipments, newest first
func (r *ShipmentRepository) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Shipment, error) {
	return r.find(ctx, bson.M{"companyId": companyID}, pagination)
}

func (r *ShipmentRepository) find(ctx context.Context, filter bson.M, pagination domain.Pagination) ([]*domain.Shipment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	err = cursor.All(ctx, &shipments)
	return shipments, err
}

// Delete removes a shipment
func (r *ShipmentRepository) Delete(ctx context.Context, companyID, shipmentID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"companyId": companyID, "shipmentId": shipmentID})
	return err
}
