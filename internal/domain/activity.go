package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType classifies a capacity-changing operation against a rack.
type ActivityType string

const (
	ActivityAssign  ActivityType = "assign"
	ActivityRelease ActivityType = "release"
)

// RackActivity is an immutable audit entry recorded for every
// capacity-changing operation. Entries are never mutated or deleted.
type RackActivity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActivityID string             `bson:"activityId" json:"activityId"`
	RackID     string             `bson:"rackId" json:"rackId"`
	CompanyID  string             `bson:"companyId" json:"companyId"`
	UserID     string             `bson:"userId" json:"userId"`
	Type       ActivityType       `bson:"type" json:"type"`
	ItemDetail string             `bson:"itemDetail" json:"itemDetail"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewRackActivity creates an audit entry for a rack mutation.
func NewRackActivity(activityID, rackID, companyID, userID string, activityType ActivityType, itemDetail string, quantity int) *RackActivity {
	return &RackActivity{
		ID:         primitive.NewObjectID(),
		ActivityID: activityID,
		RackID:     rackID,
		CompanyID:  companyID,
		UserID:     userID,
		Type:       activityType,
		ItemDetail: itemDetail,
		Quantity:   quantity,
		CreatedAt:  time.Now().UTC(),
	}
}

// RackInventory is a denormalized join recording that a shipment occupies
// a rack with a current quantity.
type RackInventory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RackID     string             `bson:"rackId" json:"rackId"`
	CompanyID  string             `bson:"companyId" json:"companyId"`
	ShipmentID string             `bson:"shipmentId" json:"shipmentId"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
