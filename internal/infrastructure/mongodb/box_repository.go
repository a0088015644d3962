package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storage-platform/storage-service/internal/domain"
)

// BoxRepository is the MongoDB implementation of domain.BoxRepository.
// Assignment and release are bulk conditional updates so a box that has
// already left the eligible state is silently skipped rather than
// double-transitioned.
type BoxRepository struct {
	collection *mongo.Collection
}

// NewBoxRepository creates a new BoxRepository
func NewBoxRepository(db *mongo.Database) *BoxRepository {
	collection := db.Collection("shipment_boxes")

	repo := &BoxRepository{
		collection: collection,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *BoxRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "shipmentId", Value: 1}, {Key: "boxNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "rackId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "companyId", Value: 1}, {Key: "shipmentId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "qrCode", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// CreateBatch inserts a shipment's boxes
func (r *BoxRepository) CreateBatch(ctx context.Context, boxes []*domain.ShipmentBox) error {
	if len(boxes) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(boxes))
	for _, box := range boxes {
		docs = append(docs, box)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByShipment retrieves all boxes of a shipment ordered by box number
func (r *BoxRepository) FindByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	filter := bson.M{"companyId": companyID, "shipmentId": shipmentID}
	return r.find(ctx, filter)
}

// FindStoredByShipment retrieves a shipment's boxes currently in storage
func (r *BoxRepository) FindStoredByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	filter := bson.M{
		"companyId":  companyID,
		"shipmentId": shipmentID,
		"status":     domain.BoxStatusInStorage,
	}
	return r.find(ctx, filter)
}

// FindStoredByRack retrieves all boxes currently stored on a rack
func (r *BoxRepository) FindStoredByRack(ctx context.Context, companyID, rackID string) ([]*domain.ShipmentBox, error) {
	filter := bson.M{
		"companyId": companyID,
		"rackId":    rackID,
		"status":    domain.BoxStatusInStorage,
	}
	return r.find(ctx, filter)
}

func (r *BoxRepository) find(ctx context.Context, filter bson.M) ([]*domain.ShipmentBox, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shipmentId", Value: 1}, {Key: "boxNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var boxes []*domain.ShipmentBox
	err = cursor.All(ctx, &boxes)
	return boxes, err
}

// AssignToRack moves the matching boxes of a shipment onto a rack. Only
// boxes not already released match, so repeating an assignment request
// is harmless.
func (r *BoxRepository) AssignToRack(ctx context.Context, companyID, shipmentID string, boxNumbers []int, rackID string, at time.Time) (int, error) {
	filter := bson.M{
		"companyId":  companyID,
		"shipmentId": shipmentID,
		"boxNumber":  bson.M{"$in": boxNumbers},
		"status":     bson.M{"$ne": domain.BoxStatusReleased},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.BoxStatusInStorage,
			"rackId":     rackID,
			"assignedAt": at,
			"updatedAt":  at,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return int(result.ModifiedCount), nil
}

// Release transitions the matching in-storage boxes to released and
// clears their rack reference. Boxes already released do not match.
func (r *BoxRepository) Release(ctx context.Context, companyID, shipmentID string, boxNumbers []int, at time.Time) (int, error) {
	filter := bson.M{
		"companyId":  companyID,
		"shipmentId": shipmentID,
		"boxNumber":  bson.M{"$in": boxNumbers},
		"status":     domain.BoxStatusInStorage,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.BoxStatusReleased,
			"releasedAt": at,
			"updatedAt":  at,
		},
		"$unset": bson.M{"rackId": ""},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return int(result.ModifiedCount), nil
}

// DeleteByShipment removes all boxes of a shipment
func (r *BoxRepository) DeleteByShipment(ctx context.Context, companyID, shipmentID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"companyId": companyID, "shipmentId": shipmentID})
	return err
}
