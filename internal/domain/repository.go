package domain

import (
	"context"
	"time"
)

// RackRepository defines the interface for rack persistence
type RackRepository interface {
	// Save persists a rack (upsert)
	Save(ctx context.Context, rack *Rack) error

	// FindByRackID retrieves a rack by its RackID within a company
	FindByRackID(ctx context.Context, companyID, rackID string) (*Rack, error)

	// FindByCode retrieves a rack by its human code within a company
	FindByCode(ctx context.Context, companyID, code string) (*Rack, error)

	// FindAll retrieves a company's racks
	FindAll(ctx context.Context, companyID string, pagination Pagination) ([]*Rack, error)

	// Count returns the number of racks in a company
	Count(ctx context.Context, companyID string) (int64, error)

	// Delete removes a rack
	Delete(ctx context.Context, companyID, rackID string) error
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// Save persists a shipment (upsert)
	Save(ctx context.Context, shipment *Shipment) error

	// FindByShipmentID retrieves a shipment within a company
	FindByShipmentID(ctx context.Context, companyID, shipmentID string) (*Shipment, error)

	// FindByStatus retrieves a company's shipments by status
	FindByStatus(ctx context.Context, companyID string, status ShipmentStatus, pagination Pagination) ([]*Shipment, error)

	// FindAll retrieves a company's shipments
	FindAll(ctx context.Context, companyID string, pagination Pagination) ([]*Shipment, error)

	// Delete removes a shipment
	Delete(ctx context.Context, companyID, shipmentID string) error
}

// BoxRepository defines the interface for shipment box persistence.
// Boxes are created once as a batch and mutated only through the
// assignment and release transitions.
type BoxRepository interface {
	// CreateBatch inserts a shipment's boxes
	CreateBatch(ctx context.Context, boxes []*ShipmentBox) error

	// FindByShipment retrieves all boxes of a shipment
	FindByShipment(ctx context.Context, companyID, shipmentID string) ([]*ShipmentBox, error)

	// FindStoredByShipment retrieves a shipment's boxes currently in storage
	FindStoredByShipment(ctx context.Context, companyID, shipmentID string) ([]*ShipmentBox, error)

	// FindStoredByRack retrieves all boxes currently stored on a rack
	FindStoredByRack(ctx context.Context, companyID, rackID string) ([]*ShipmentBox, error)

	// AssignToRack moves the matching boxes of a shipment onto a rack
	// and returns the number updated
	AssignToRack(ctx context.Context, companyID, shipmentID string, boxNumbers []int, rackID string, at time.Time) (int, error)

	// Release transitions the matching in-storage boxes to released,
	// clears their rack reference and returns the number updated
	Release(ctx context.Context, companyID, shipmentID string, boxNumbers []int, at time.Time) (int, error)

	// DeleteByShipment removes all boxes of a shipment
	DeleteByShipment(ctx context.Context, companyID, shipmentID string) error
}

// SettingsRepository defines the interface for per-company settings
type SettingsRepository interface {
	// FindByCompany retrieves a company's settings, nil when absent
	FindByCompany(ctx context.Context, companyID string) (*ShipmentSettings, error)

	// Save persists settings (upsert)
	Save(ctx context.Context, settings *ShipmentSettings) error

	// Delete removes a company's settings so defaults apply again
	Delete(ctx context.Context, companyID string) error
}

// ActivityRepository defines the interface for the append-only rack audit trail
type ActivityRepository interface {
	// Append records an activity entry
	Append(ctx context.Context, activity *RackActivity) error

	// FindByRack retrieves a rack's activity, newest first
	FindByRack(ctx context.Context, companyID, rackID string, pagination Pagination) ([]*RackActivity, error)
}

// InventoryRepository defines the interface for the denormalized rack inventory join
type InventoryRepository interface {
	// AdjustQuantity changes the recorded quantity by delta
	AdjustQuantity(ctx context.Context, companyID, rackID, shipmentID string, delta int) error

	// FindByRack retrieves the inventory entries of a rack
	FindByRack(ctx context.Context, companyID, rackID string) ([]*RackInventory, error)
}

// ProfileResolver checks that a company profile reference resolves within
// the caller's company. Profiles are owned by a collaborating service;
// provisioning only needs existence.
type ProfileResolver interface {
	Exists(ctx context.Context, companyID, profileID string) (bool, error)
}

// UnitOfWork runs a function so that every write made through the passed
// context commits or aborts as one atomic unit.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Photo is a binary attachment captured as assignment or release evidence.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// PhotoStore stores photo attachments and returns stable relative paths.
type PhotoStore interface {
	Store(ctx context.Context, kind, shipmentID string, photos []Photo) ([]string, error)
}

// Notifier delivers a message to a client phone. Implementations are
// fire-and-forget; failures never roll back the operation that triggered
// the notification.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish publishes a domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll publishes multiple domain events
	PublishAll(ctx context.Context, events []DomainEvent) error
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}
