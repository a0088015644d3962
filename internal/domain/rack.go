package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rack errors
var (
	ErrRackNotFound        = errors.New("rack not found")
	ErrRackCodeRequired    = errors.New("rack code is required")
	ErrRackCodeTaken       = errors.New("rack code already exists")
	ErrInvalidRackType     = errors.New("invalid rack type")
	ErrInvalidCapacity     = errors.New("rack capacity must be positive")
	ErrRackHoldsBoxes      = errors.New("rack still holds boxes in storage")
	ErrNegativeUsage       = errors.New("pallet usage cannot be negative")
)

// RackType represents the kind of storage a rack provides.
type RackType string

const (
	RackTypeStorage   RackType = "storage"
	RackTypeMaterials RackType = "materials"
	RackTypeEquipment RackType = "equipment"
)

// IsValid checks if the rack type is valid.
func (t RackType) IsValid() bool {
	switch t {
	case RackTypeStorage, RackTypeMaterials, RackTypeEquipment:
		return true
	default:
		return false
	}
}

// RackStatus represents the capacity status of a rack.
type RackStatus string

const (
	RackStatusActive RackStatus = "active"
	RackStatusFull   RackStatus = "full"
)

// Rack is a capacity-bounded physical storage location addressed in
// pallet slots. CapacityUsed caches the pallet usage of the boxes
// currently stored on the rack; it is rewritten from a recomputation on
// every capacity-affecting write and reconciled again on every read, so
// the cached figure is never trusted across concurrent mutation.
type Rack struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RackID         string             `bson:"rackId" json:"rackId"`
	Code           string             `bson:"code" json:"code"`
	CompanyID      string             `bson:"companyId" json:"companyId"`
	Type           RackType           `bson:"type" json:"type"`
	CapacityTotal  int                `bson:"capacityTotal" json:"capacityTotal"`
	CapacityUsed   int                `bson:"capacityUsed" json:"capacityUsed"`
	Status         RackStatus         `bson:"status" json:"status"`
	LastActivityAt *time.Time         `bson:"lastActivityAt,omitempty" json:"lastActivityAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents   []DomainEvent      `bson:"-" json:"-"`
}

// NewRack creates a new rack with zero usage.
func NewRack(rackID, code, companyID string, rackType RackType, capacityTotal int) (*Rack, error) {
	if code == "" {
		return nil, ErrRackCodeRequired
	}
	if !rackType.IsValid() {
		return nil, ErrInvalidRackType
	}
	if capacityTotal <= 0 {
		return nil, ErrInvalidCapacity
	}

	now := time.Now().UTC()
	return &Rack{
		ID:            primitive.NewObjectID(),
		RackID:        rackID,
		Code:          code,
		CompanyID:     companyID,
		Type:          rackType,
		CapacityTotal: capacityTotal,
		CapacityUsed:  0,
		Status:        RackStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		DomainEvents:  make([]DomainEvent, 0),
	}, nil
}

// ApplyUsage rewrites the cached capacity counter from a recomputed
// pallet usage and stamps the activity time.
func (r *Rack) ApplyUsage(palletUsage int) error {
	if palletUsage < 0 {
		return ErrNegativeUsage
	}

	now := time.Now().UTC()
	r.CapacityUsed = palletUsage
	r.Status = r.DerivedStatus(palletUsage)
	r.LastActivityAt = &now
	r.UpdatedAt = now

	r.addDomainEvent(&RackCapacityChangedEvent{
		RackID:        r.RackID,
		CompanyID:     r.CompanyID,
		CapacityUsed:  r.CapacityUsed,
		CapacityTotal: r.CapacityTotal,
		Status:        string(r.Status),
		ChangedAt:     now,
	})

	return nil
}

// DerivedStatus returns the status implied by a pallet usage figure:
// full when usage has reached the total, otherwise the stored status
// (defaulting to active).
func (r *Rack) DerivedStatus(palletUsage int) RackStatus {
	if palletUsage >= r.CapacityTotal {
		return RackStatusFull
	}
	if r.Status == "" || r.Status == RackStatusFull {
		return RackStatusActive
	}
	return r.Status
}

// AvailableCapacity returns the remaining pallet slots.
func (r *Rack) AvailableCapacity() int {
	remaining := r.CapacityTotal - r.CapacityUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Utilization returns the used fraction of the rack for a usage figure.
func (r *Rack) Utilization(palletUsage int) float64 {
	if r.CapacityTotal == 0 {
		return 0
	}
	return float64(palletUsage) / float64(r.CapacityTotal)
}

// addDomainEvent adds a domain event.
func (r *Rack) addDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

// GetDomainEvents returns all domain events.
func (r *Rack) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}

// ClearDomainEvents clears all domain events.
func (r *Rack) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}
