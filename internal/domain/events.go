package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ShipmentProvisionedEvent is emitted when a shipment and its boxes are created
type ShipmentProvisionedEvent struct {
	ShipmentID string    `json:"shipmentId"`
	CompanyID  string    `json:"companyId"`
	TotalBoxes int       `json:"totalBoxes"`
	RackID     string    `json:"rackId,omitempty"`
	MasterQR   string    `json:"masterQr"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *ShipmentProvisionedEvent) EventType() string     { return "storage.shipment.provisioned" }
func (e *ShipmentProvisionedEvent) OccurredAt() time.Time { return e.CreatedAt }

// BoxesAssignedEvent is emitted when boxes are placed on a rack
type BoxesAssignedEvent struct {
	ShipmentID    string    `json:"shipmentId"`
	CompanyID     string    `json:"companyId"`
	RackID        string    `json:"rackId"`
	AssignedCount int       `json:"assignedCount"`
	PalletUsage   int       `json:"palletUsage"`
	FullyStored   bool      `json:"fullyStored"`
	AssignedAt    time.Time `json:"assignedAt"`
}

func (e *BoxesAssignedEvent) EventType() string     { return "storage.boxes.assigned" }
func (e *BoxesAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// BoxesReleasedEvent is emitted when boxes leave storage
type BoxesReleasedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	CompanyID      string    `json:"companyId"`
	RackIDs        []string  `json:"rackIds"`
	ReleasedCount  int       `json:"releasedCount"`
	RemainingCount int       `json:"remainingCount"`
	Status         string    `json:"status"`
	ReleasedAt     time.Time `json:"releasedAt"`
}

func (e *BoxesReleasedEvent) EventType() string     { return "storage.boxes.released" }
func (e *BoxesReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// RackCapacityChangedEvent is emitted whenever a rack's reconciled usage is persisted
type RackCapacityChangedEvent struct {
	RackID        string    `json:"rackId"`
	CompanyID     string    `json:"companyId"`
	CapacityUsed  int       `json:"capacityUsed"`
	CapacityTotal int       `json:"capacityTotal"`
	Status        string    `json:"status"`
	ChangedAt     time.Time `json:"changedAt"`
}

func (e *RackCapacityChangedEvent) EventType() string     { return "storage.rack.capacity_changed" }
func (e *RackCapacityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
