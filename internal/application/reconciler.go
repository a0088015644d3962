package application

import (
	"context"

	"github.com/storage-platform/storage-service/internal/domain"
)

// usageReconciler derives a rack's pallet usage from the boxes currently
// stored on it. This is the authoritative path; the rack's cached counter
// is rewritten from it on every capacity-affecting write and bypassed on
// every read.
type usageReconciler struct {
	boxRepo      domain.BoxRepository
	shipmentRepo domain.ShipmentRepository
}

// recompute returns PalletUsage over the rack's stored boxes, resolving
// each box's boxes-per-pallet from its owning shipment. Boxes whose
// shipment record cannot be resolved fall into the shared
// unknown-shipment group.
func (r usageReconciler) recompute(ctx context.Context, companyID, rackID string) (int, error) {
	boxes, err := r.boxRepo.FindStoredByRack(ctx, companyID, rackID)
	if err != nil {
		return 0, err
	}
	if len(boxes) == 0 {
		return 0, nil
	}

	type shipmentInfo struct {
		found          bool
		boxesPerPallet int
	}

	shipments := make(map[string]shipmentInfo)
	for _, box := range boxes {
		if _, seen := shipments[box.ShipmentID]; seen {
			continue
		}

		shipment, err := r.shipmentRepo.FindByShipmentID(ctx, companyID, box.ShipmentID)
		if err != nil {
			return 0, err
		}
		if shipment == nil {
			shipments[box.ShipmentID] = shipmentInfo{}
			continue
		}
		shipments[box.ShipmentID] = shipmentInfo{found: true, boxesPerPallet: shipment.BoxesPerPallet}
	}

	views := make([]domain.BoxView, 0, len(boxes))
	for _, box := range boxes {
		info := shipments[box.ShipmentID]
		view := domain.BoxView{
			ShipmentID:     box.ShipmentID,
			BoxesPerPallet: info.boxesPerPallet,
			BoxNumber:      box.BoxNumber,
			PieceMeta:      box.PieceMeta,
		}
		if !info.found {
			view.ShipmentID = ""
		}
		views = append(views, view)
	}

	return domain.PalletUsage(views), nil
}
