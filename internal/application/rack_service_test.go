package application

import (
	"context"
	"strings"
	"testing"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
)

func TestRackService_CreateRack(t *testing.T) {
	t.Run("creates rack with generated id", func(t *testing.T) {
		env := newTestEnv()

		rack, err := env.racks.CreateRack(context.Background(), CreateRackCommand{
			CompanyID:     "company-1",
			Code:          "A-01",
			Type:          "storage",
			CapacityTotal: 50,
		})
		if err != nil {
			t.Fatalf("CreateRack() error = %v", err)
		}

		if !strings.HasPrefix(rack.RackID, "RCK-") {
			t.Errorf("RackID = %q, want RCK- prefix", rack.RackID)
		}
		if rack.CapacityUsed != 0 {
			t.Errorf("CapacityUsed = %v, want 0", rack.CapacityUsed)
		}

		persisted, _ := env.rackRepo.FindByRackID(context.Background(), "company-1", rack.RackID)
		if persisted == nil {
			t.Fatal("rack not persisted")
		}
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		env := newTestEnv()
		env.addRack(t, "company-1", "RCK-1", "A-01", 50)

		_, err := env.racks.CreateRack(context.Background(), CreateRackCommand{
			CompanyID:     "company-1",
			Code:          "A-01",
			Type:          "storage",
			CapacityTotal: 50,
		})

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeConflict {
			t.Errorf("CreateRack() error = %v, want conflict", err)
		}
	})

	t.Run("same code allowed across companies", func(t *testing.T) {
		env := newTestEnv()
		env.addRack(t, "company-1", "RCK-1", "A-01", 50)

		if _, err := env.racks.CreateRack(context.Background(), CreateRackCommand{
			CompanyID:     "company-2",
			Code:          "A-01",
			Type:          "storage",
			CapacityTotal: 50,
		}); err != nil {
			t.Errorf("CreateRack() error = %v, want nil", err)
		}
	})

	t.Run("invalid rack rejected", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.racks.CreateRack(context.Background(), CreateRackCommand{
			CompanyID:     "company-1",
			Code:          "A-01",
			Type:          "freezer",
			CapacityTotal: 50,
		})

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeValidationError {
			t.Errorf("CreateRack() error = %v, want validation error", err)
		}
	})
}

func TestRackService_GetRackView(t *testing.T) {
	t.Run("usage is reconciled from stored boxes, not the counter", func(t *testing.T) {
		env := newTestEnv()
		rack := env.addRack(t, "company-1", "RCK-1", "A-01", 10)
		shipment := provisionTestShipment(t, env, "company-1", 2, 5)

		if _, err := env.storage.AssignBoxes(context.Background(), AssignBoxesCommand{
			CompanyID:  "company-1",
			UserID:     "user-1",
			ShipmentID: shipment.ShipmentID,
			RackID:     "RCK-1",
			BoxNumbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}); err != nil {
			t.Fatalf("AssignBoxes() error = %v", err)
		}

		// Corrupt the cached counter; the read path must not trust it.
		rack.CapacityUsed = 99

		view, err := env.racks.GetRackView(context.Background(), "company-1", "RCK-1")
		if err != nil {
			t.Fatalf("GetRackView() error = %v", err)
		}

		if view.CapacityUsed != 2 {
			t.Errorf("CapacityUsed = %v, want 2", view.CapacityUsed)
		}
		if view.AvailableCapacity != 8 {
			t.Errorf("AvailableCapacity = %v, want 8", view.AvailableCapacity)
		}
		if view.Utilization != 0.2 {
			t.Errorf("Utilization = %v, want 0.2", view.Utilization)
		}
		if view.Status != domain.RackStatusActive {
			t.Errorf("Status = %v, want active", view.Status)
		}
		if len(view.Inventory) != 1 || view.Inventory[0].Quantity != 10 {
			t.Errorf("Inventory = %+v, want single entry of 10 boxes", view.Inventory)
		}

		// Reading never persists the corrected figure.
		if rack.CapacityUsed != 99 {
			t.Errorf("read path persisted CapacityUsed = %v", rack.CapacityUsed)
		}
	})

	t.Run("missing rack returns not found", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.racks.GetRackView(context.Background(), "company-1", "RCK-missing")

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeNotFound {
			t.Errorf("GetRackView() error = %v, want not found", err)
		}
	})
}

func TestRackService_ListRacks(t *testing.T) {
	env := newTestEnv()
	env.addRack(t, "company-1", "RCK-1", "A-01", 10)
	env.addRack(t, "company-1", "RCK-2", "B-01", 20)
	env.addRack(t, "company-2", "RCK-3", "A-01", 10)

	result, err := env.racks.ListRacks(context.Background(), "company-1", domain.Pagination{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListRacks() error = %v", err)
	}

	if result.TotalItems != 2 {
		t.Errorf("TotalItems = %v, want 2", result.TotalItems)
	}
	if len(result.Racks) != 2 {
		t.Fatalf("got %d racks, want 2", len(result.Racks))
	}
	if result.Racks[0].Rack.Code != "A-01" || result.Racks[1].Rack.Code != "B-01" {
		t.Errorf("racks not sorted by code: %s, %s", result.Racks[0].Rack.Code, result.Racks[1].Rack.Code)
	}
	for _, view := range result.Racks {
		if view.CapacityUsed != 0 {
			t.Errorf("rack %s CapacityUsed = %v, want 0", view.Rack.Code, view.CapacityUsed)
		}
	}
}

func TestRackService_RecomputeUsage(t *testing.T) {
	t.Run("corrects and persists a stale counter", func(t *testing.T) {
		env := newTestEnv()
		rack := env.addRack(t, "company-1", "RCK-1", "A-01", 10)
		shipment := provisionTestShipment(t, env, "company-1", 2, 5)

		if _, err := env.storage.AssignBoxes(context.Background(), AssignBoxesCommand{
			CompanyID:  "company-1",
			UserID:     "user-1",
			ShipmentID: shipment.ShipmentID,
			RackID:     "RCK-1",
			BoxNumbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}); err != nil {
			t.Fatalf("AssignBoxes() error = %v", err)
		}

		rack.CapacityUsed = 99

		corrected, err := env.racks.RecomputeUsage(context.Background(), "company-1", "RCK-1")
		if err != nil {
			t.Fatalf("RecomputeUsage() error = %v", err)
		}
		if corrected.CapacityUsed != 2 {
			t.Errorf("CapacityUsed = %v, want 2", corrected.CapacityUsed)
		}

		persisted, _ := env.rackRepo.FindByRackID(context.Background(), "company-1", "RCK-1")
		if persisted.CapacityUsed != 2 {
			t.Errorf("persisted CapacityUsed = %v, want 2", persisted.CapacityUsed)
		}
	})

	t.Run("missing rack returns not found", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.racks.RecomputeUsage(context.Background(), "company-1", "RCK-missing")

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeNotFound {
			t.Errorf("RecomputeUsage() error = %v, want not found", err)
		}
	})
}

func TestRackService_DeleteRack(t *testing.T) {
	t.Run("rejected while rack holds boxes", func(t *testing.T) {
		env := newTestEnv()
		env.addRack(t, "company-1", "RCK-1", "A-01", 10)
		shipment := provisionTestShipment(t, env, "company-1", 1, 5)

		if _, err := env.storage.AssignBoxes(context.Background(), AssignBoxesCommand{
			CompanyID:  "company-1",
			UserID:     "user-1",
			ShipmentID: shipment.ShipmentID,
			RackID:     "RCK-1",
			BoxNumbers: []int{1, 2, 3, 4, 5},
		}); err != nil {
			t.Fatalf("AssignBoxes() error = %v", err)
		}

		err := env.racks.DeleteRack(context.Background(), "company-1", "RCK-1")

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeConflict {
			t.Errorf("DeleteRack() error = %v, want conflict", err)
		}
	})

	t.Run("allowed once boxes are released", func(t *testing.T) {
		env := newTestEnv()
		env.addRack(t, "company-1", "RCK-1", "A-01", 10)
		shipment := provisionTestShipment(t, env, "company-1", 1, 5)

		if _, err := env.storage.AssignBoxes(context.Background(), AssignBoxesCommand{
			CompanyID:  "company-1",
			UserID:     "user-1",
			ShipmentID: shipment.ShipmentID,
			RackID:     "RCK-1",
			BoxNumbers: []int{1, 2, 3, 4, 5},
		}); err != nil {
			t.Fatalf("AssignBoxes() error = %v", err)
		}
		if _, err := env.storage.ReleaseBoxes(context.Background(), ReleaseBoxesCommand{
			CompanyID:   "company-1",
			UserID:      "user-1",
			ShipmentID:  shipment.ShipmentID,
			ReleaseAll:  true,
			CollectorID: "DL-998877",
		}); err != nil {
			t.Fatalf("ReleaseBoxes() error = %v", err)
		}

		if err := env.racks.DeleteRack(context.Background(), "company-1", "RCK-1"); err != nil {
			t.Fatalf("DeleteRack() error = %v", err)
		}

		if gone, _ := env.rackRepo.FindByRackID(context.Background(), "company-1", "RCK-1"); gone != nil {
			t.Error("rack still present after delete")
		}
	})

	t.Run("missing rack returns not found", func(t *testing.T) {
		env := newTestEnv()

		err := env.racks.DeleteRack(context.Background(), "company-1", "RCK-missing")

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeNotFound {
			t.Errorf("DeleteRack() error = %v, want not found", err)
		}
	})
}

func TestRackService_GetRackActivity(t *testing.T) {
	t.Run("returns the rack's trail", func(t *testing.T) {
		env := newTestEnv()
		env.addRack(t, "company-1", "RCK-1", "A-01", 10)
		shipment := provisionTestShipment(t, env, "company-1", 1, 5)

		if _, err := env.storage.AssignBoxes(context.Background(), AssignBoxesCommand{
			CompanyID:  "company-1",
			UserID:     "user-1",
			ShipmentID: shipment.ShipmentID,
			RackID:     "RCK-1",
			BoxNumbers: []int{1, 2, 3, 4, 5},
		}); err != nil {
			t.Fatalf("AssignBoxes() error = %v", err)
		}

		activity, err := env.racks.GetRackActivity(context.Background(), "company-1", "RCK-1", domain.Pagination{Page: 1, PageSize: 20})
		if err != nil {
			t.Fatalf("GetRackActivity() error = %v", err)
		}
		if len(activity) != 1 {
			t.Fatalf("got %d activity entries, want 1", len(activity))
		}
		if activity[0].Type != domain.ActivityAssign || activity[0].UserID != "user-1" {
			t.Errorf("activity = %+v, want assign by user-1", activity[0])
		}
	})

	t.Run("missing rack returns not found", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.racks.GetRackActivity(context.Background(), "company-1", "RCK-missing", domain.Pagination{Page: 1, PageSize: 20})

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeNotFound {
			t.Errorf("GetRackActivity() error = %v, want not found", err)
		}
	})
}
