package domain

import "fmt"

// unknownShipmentKey groups boxes whose shipment reference cannot be
// resolved. They share one placeholder group rather than one slot each;
// this may undercount distinct unknown-shipment pallets but keeps the
// calculator total stable for a given input set.
const unknownShipmentKey = "unknown-shipment"

// BoxView is the projection of a box the pallet calculator needs.
type BoxView struct {
	ShipmentID     string
	BoxesPerPallet int
	BoxNumber      int
	PieceMeta      string
}

// PalletUsage returns the number of distinct pallet slots a set of boxes
// occupies. The result is deterministic and independent of input order.
//
// Grouping rules, per box:
//   - loose boxes consume no slot at all
//   - an explicit pallet number groups the box as (shipment, pallet N)
//   - otherwise the box falls on pallet ceil(boxNumber/boxesPerPallet),
//     with boxesPerPallet defaulting to 1 when absent or non-positive
//
// Malformed piece metadata never fails; it falls back to the computed
// index branch.
func PalletUsage(boxes []BoxView) int {
	slots := make(map[string]struct{}, len(boxes))

	for _, box := range boxes {
		meta := ParsePieceMeta(box.PieceMeta)
		if meta.Kind == PieceLoose {
			continue
		}

		shipmentKey := box.ShipmentID
		if shipmentKey == "" {
			shipmentKey = unknownShipmentKey
		}

		var key string
		if meta.Kind == PieceExplicitPallet {
			key = fmt.Sprintf("%s/p%d", shipmentKey, meta.PalletNumber)
		} else {
			perPallet := box.BoxesPerPallet
			if perPallet <= 0 {
				perPallet = 1
			}
			index := (box.BoxNumber + perPallet - 1) / perPallet
			if index < 1 {
				index = 1
			}
			key = fmt.Sprintf("%s/i%d", shipmentKey, index)
		}

		slots[key] = struct{}{}
	}

	return len(slots)
}

// BoxViews converts stored boxes into calculator input. boxesPerPallet
// comes from the owning shipment; callers pass a lookup so a mixed set of
// boxes from several shipments resolves each one correctly.
func BoxViews(boxes []*ShipmentBox, boxesPerPallet func(shipmentID string) int) []BoxView {
	views := make([]BoxView, 0, len(boxes))
	for _, box := range boxes {
		views = append(views, BoxView{
			ShipmentID:     box.ShipmentID,
			BoxesPerPallet: boxesPerPallet(box.ShipmentID),
			BoxNumber:      box.BoxNumber,
			PieceMeta:      box.PieceMeta,
		})
	}
	return views
}
