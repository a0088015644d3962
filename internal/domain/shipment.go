package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shipment errors
var (
	ErrShipmentNotFound        = errors.New("shipment not found")
	ErrInvalidBoxCount         = errors.New("total box count must be a positive integer")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrBoxAlreadyReleased      = errors.New("box already released")
	ErrBoxNotStored            = errors.New("box is not in storage")
	ErrShipmentHoldsBoxes      = errors.New("shipment still has boxes on record")
	ErrProfileNotFound         = errors.New("company profile not found")
)

// ShipmentType distinguishes personal from commercial consignments.
type ShipmentType string

const (
	ShipmentTypePersonal   ShipmentType = "personal"
	ShipmentTypeCommercial ShipmentType = "commercial"
)

// IsValid checks if the shipment type is valid.
func (t ShipmentType) IsValid() bool {
	switch t {
	case ShipmentTypePersonal, ShipmentTypeCommercial:
		return true
	default:
		return false
	}
}

// ShipmentStatus represents the storage lifecycle of a shipment.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusInStorage ShipmentStatus = "in_storage"
	ShipmentStatusPartial   ShipmentStatus = "partial"
	ShipmentStatusReleased  ShipmentStatus = "released"
)

// BoxStatus represents the storage lifecycle of a single box.
type BoxStatus string

const (
	BoxStatusPending   BoxStatus = "pending"
	BoxStatusInStorage BoxStatus = "in_storage"
	BoxStatusReleased  BoxStatus = "released"
)

// Shipment is a customer consignment tracked as individually addressable
// boxes. CurrentBoxCount always equals the count of boxes not yet
// released.
type Shipment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID       string             `bson:"shipmentId" json:"shipmentId"`
	CompanyID        string             `bson:"companyId" json:"companyId"`
	ProfileID        string             `bson:"profileId,omitempty" json:"profileId,omitempty"`
	ClientName       string             `bson:"clientName" json:"clientName"`
	ClientEmail      string             `bson:"clientEmail,omitempty" json:"clientEmail,omitempty"`
	ClientPhone      string             `bson:"clientPhone,omitempty" json:"clientPhone,omitempty"`
	ReferenceID      string             `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	Type             ShipmentType       `bson:"type" json:"type"`
	OriginalBoxCount int                `bson:"originalBoxCount" json:"originalBoxCount"`
	CurrentBoxCount  int                `bson:"currentBoxCount" json:"currentBoxCount"`
	PalletCount      int                `bson:"palletCount,omitempty" json:"palletCount,omitempty"`
	BoxesPerPallet   int                `bson:"boxesPerPallet,omitempty" json:"boxesPerPallet,omitempty"`
	EstimatedValue   int64              `bson:"estimatedValueCents,omitempty" json:"estimatedValueCents,omitempty"`
	Status           ShipmentStatus     `bson:"status" json:"status"`
	MasterQR         string             `bson:"masterQr" json:"masterQr"`
	ArrivalDate      time.Time          `bson:"arrivalDate" json:"arrivalDate"`
	StoredAt         *time.Time         `bson:"storedAt,omitempty" json:"storedAt,omitempty"`
	ReleasedAt       *time.Time         `bson:"releasedAt,omitempty" json:"releasedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents     []DomainEvent      `bson:"-" json:"-"`
}

// ShipmentBox is one physical box of a shipment. Its rack reference is
// non-empty exactly when the box is in storage.
type ShipmentBox struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID string             `bson:"shipmentId" json:"shipmentId"`
	CompanyID  string             `bson:"companyId" json:"companyId"`
	BoxNumber  int                `bson:"boxNumber" json:"boxNumber"`
	QRCode     string             `bson:"qrCode" json:"qrCode"`
	PieceMeta  string             `bson:"pieceMeta,omitempty" json:"pieceMeta,omitempty"`
	Status     BoxStatus          `bson:"status" json:"status"`
	RackID     string             `bson:"rackId,omitempty" json:"rackId,omitempty"`
	AssignedAt *time.Time         `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	ReleasedAt *time.Time         `bson:"releasedAt,omitempty" json:"releasedAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewShipment creates a shipment in pending status with its full box
// complement still unreleased.
func NewShipment(shipmentID, companyID string, shipmentType ShipmentType, totalBoxes int, masterQR string, arrival time.Time) (*Shipment, error) {
	if totalBoxes <= 0 {
		return nil, ErrInvalidBoxCount
	}
	if !shipmentType.IsValid() {
		shipmentType = ShipmentTypePersonal
	}

	now := time.Now().UTC()
	return &Shipment{
		ID:               primitive.NewObjectID(),
		ShipmentID:       shipmentID,
		CompanyID:        companyID,
		Type:             shipmentType,
		OriginalBoxCount: totalBoxes,
		CurrentBoxCount:  totalBoxes,
		Status:           ShipmentStatusPending,
		MasterQR:         masterQR,
		ArrivalDate:      arrival,
		CreatedAt:        now,
		UpdatedAt:        now,
		DomainEvents:     make([]DomainEvent, 0),
	}, nil
}

// MaterializeBoxes creates the shipment's box records numbered 1..N. When
// rackID is non-empty the boxes are created directly in storage on that
// rack, as happens on intake with an immediate assignment.
func (s *Shipment) MaterializeBoxes(rackID string) []*ShipmentBox {
	now := time.Now().UTC()
	boxes := make([]*ShipmentBox, 0, s.OriginalBoxCount)

	for n := 1; n <= s.OriginalBoxCount; n++ {
		box := &ShipmentBox{
			ID:         primitive.NewObjectID(),
			ShipmentID: s.ShipmentID,
			CompanyID:  s.CompanyID,
			BoxNumber:  n,
			QRCode:     BoxQR(s.MasterQR, n, s.OriginalBoxCount),
			Status:     BoxStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if rackID != "" {
			box.Status = BoxStatusInStorage
			box.RackID = rackID
			box.AssignedAt = &now
		}
		boxes = append(boxes, box)
	}

	return boxes
}

// MarkStored transitions the shipment to in_storage once every box has a
// rack reference.
func (s *Shipment) MarkStored() error {
	if s.Status != ShipmentStatusPending && s.Status != ShipmentStatusPartial {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	s.Status = ShipmentStatusInStorage
	s.StoredAt = &now
	s.UpdatedAt = now
	return nil
}

// ApplyRelease records the outcome of a release: the remaining stored box
// count decides whether the shipment is fully released or partial.
// ReleasedAt is stamped only on full release.
func (s *Shipment) ApplyRelease(remaining int) {
	now := time.Now().UTC()
	s.CurrentBoxCount = remaining
	if remaining == 0 {
		s.Status = ShipmentStatusReleased
		s.ReleasedAt = &now
	} else {
		s.Status = ShipmentStatusPartial
	}
	s.UpdatedAt = now
}

// RecordProvisioned captures the provisioning event once intake has
// succeeded, including the immediate rack when one was used.
func (s *Shipment) RecordProvisioned(rackID string) {
	s.addDomainEvent(&ShipmentProvisionedEvent{
		ShipmentID: s.ShipmentID,
		CompanyID:  s.CompanyID,
		TotalBoxes: s.OriginalBoxCount,
		RackID:     rackID,
		MasterQR:   s.MasterQR,
		CreatedAt:  s.CreatedAt,
	})
}

// addDomainEvent adds a domain event.
func (s *Shipment) addDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// GetDomainEvents returns all domain events.
func (s *Shipment) GetDomainEvents() []DomainEvent {
	return s.DomainEvents
}

// ClearDomainEvents clears all domain events.
func (s *Shipment) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}

// fallbackQRPrefix is used when a company disables QR auto-generation but
// a master token is still required for box derivation.
const fallbackQRPrefix = "SHP"

// MasterQR composes the master QR token for a shipment: prefix, intake
// timestamp, optional pallet geometry and the total box count.
func MasterQR(settings *ShipmentSettings, palletCount, boxesPerPallet, totalBoxes int, at time.Time) string {
	prefix := fallbackQRPrefix
	if settings != nil && settings.AutoGenerateQR && settings.QRPrefix != "" {
		prefix = settings.QRPrefix
	}

	token := fmt.Sprintf("%s-%d", prefix, at.UTC().Unix())
	if palletCount > 0 && boxesPerPallet > 0 {
		token = fmt.Sprintf("%s-P%dX%d", token, palletCount, boxesPerPallet)
	}
	return fmt.Sprintf("%s-%d", token, totalBoxes)
}

// BoxQR derives a per-box QR token embedding the master token, the box
// number and the total.
func BoxQR(masterQR string, boxNumber, totalBoxes int) string {
	return fmt.Sprintf("%s-BOX-%d-OF-%d", masterQR, boxNumber, totalBoxes)
}
