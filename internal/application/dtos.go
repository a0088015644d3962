package application

import (
	"github.com/storage-platform/storage-service/internal/domain"
)

// RackView is a rack with its usage reconciled from the boxes actually
// stored on it. CapacityUsed here is always the recomputed figure, never
// the cached counter.
type RackView struct {
	Rack              *domain.Rack            `json:"rack"`
	CapacityUsed      int                     `json:"capacityUsed"`
	AvailableCapacity int                     `json:"availableCapacity"`
	Utilization       float64                 `json:"utilization"`
	Status            domain.RackStatus       `json:"status"`
	Inventory         []*domain.RackInventory `json:"inventory,omitempty"`
}

// RackListResult is a reconciled page of racks.
type RackListResult struct {
	Racks      []*RackView `json:"racks"`
	TotalItems int64       `json:"totalItems"`
}

// ShipmentDetail is a shipment with its boxes.
type ShipmentDetail struct {
	Shipment *domain.Shipment      `json:"shipment"`
	Boxes    []*domain.ShipmentBox `json:"boxes"`
}

// AssignResult reports the outcome of a box assignment.
type AssignResult struct {
	AssignedCount int      `json:"assignedCount"`
	PhotoPaths    []string `json:"photoPaths,omitempty"`
	RackUsage     int      `json:"rackUsage"`
	FullyStored   bool     `json:"fullyStored"`
}

// ReleaseResult reports the outcome of a box release.
type ReleaseResult struct {
	ReleasedCount  int                    `json:"releasedCount"`
	RemainingCount int                    `json:"remainingCount"`
	Status         domain.ShipmentStatus  `json:"status"`
	Charges        *domain.ReleaseCharges `json:"charges,omitempty"`
	PhotoPaths     []string               `json:"photoPaths,omitempty"`
	Notified       bool                   `json:"notified"`
}
