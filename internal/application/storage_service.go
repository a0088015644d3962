package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// StorageService implements the capacity-changing operations: placing
// boxes on racks and releasing them from storage.
type StorageService struct {
	shipmentRepo    domain.ShipmentRepository
	boxRepo         domain.BoxRepository
	rackRepo        domain.RackRepository
	settingsRepo    domain.SettingsRepository
	inventoryRepo   domain.InventoryRepository
	activityRepo    domain.ActivityRepository
	uow             domain.UnitOfWork
	photoStore      domain.PhotoStore
	notifier        domain.Notifier
	publisher       domain.EventPublisher
	businessMetrics *middleware.BusinessMetrics
	reconciler      usageReconciler
	logger          *logging.Logger
}

// NewStorageService creates a new StorageService
func NewStorageService(
	shipmentRepo domain.ShipmentRepository,
	boxRepo domain.BoxRepository,
	rackRepo domain.RackRepository,
	settingsRepo domain.SettingsRepository,
	inventoryRepo domain.InventoryRepository,
	activityRepo domain.ActivityRepository,
	uow domain.UnitOfWork,
	photoStore domain.PhotoStore,
	notifier domain.Notifier,
	publisher domain.EventPublisher,
	businessMetrics *middleware.BusinessMetrics,
	logger *logging.Logger,
) *StorageService {
	return &StorageService{
		shipmentRepo:    shipmentRepo,
		boxRepo:         boxRepo,
		rackRepo:        rackRepo,
		settingsRepo:    settingsRepo,
		inventoryRepo:   inventoryRepo,
		activityRepo:    activityRepo,
		uow:             uow,
		photoStore:      photoStore,
		notifier:        notifier,
		publisher:       publisher,
		businessMetrics: businessMetrics,
		reconciler:      usageReconciler{boxRepo: boxRepo, shipmentRepo: shipmentRepo},
		logger:          logger,
	}
}

// AssignBoxesCommand represents the command to place boxes on a rack
type AssignBoxesCommand struct {
	CompanyID  string
	UserID     string
	ShipmentID string
	RackID     string
	BoxNumbers []int
	Photos     []domain.Photo
}

// AssignBoxes places a batch of a shipment's boxes on a rack. The rack's
// capacity counter is rewritten from a recomputation inside the same
// transaction, and the shipment transitions to in_storage when its last
// box is racked.
func (s *StorageService) AssignBoxes(ctx context.Context, cmd AssignBoxesCommand) (*AssignResult, error) {
	if cmd.RackID == "" {
		return nil, errors.ErrValidation("rack id is required").WithDetail("rackId", "is required")
	}
	if len(cmd.BoxNumbers) == 0 {
		return nil, errors.ErrValidation("box numbers are required").WithDetail("boxNumbers", "is required")
	}

	shipment, err := s.shipmentRepo.FindByShipmentID(ctx, cmd.CompanyID, cmd.ShipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find shipment").Wrap(err)
	}
	if shipment == nil {
		return nil, errors.ErrNotFoundWithID("shipment", cmd.ShipmentID)
	}

	rack, err := s.rackRepo.FindByRackID(ctx, cmd.CompanyID, cmd.RackID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find rack").Wrap(err)
	}
	if rack == nil {
		return nil, errors.ErrNotFoundWithID("rack", cmd.RackID)
	}

	photoPaths, err := s.storePhotos(ctx, "assign", cmd.ShipmentID, cmd.Photos)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var assigned int
	var fullyStored bool

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		var err error
		assigned, err = s.boxRepo.AssignToRack(txCtx, cmd.CompanyID, cmd.ShipmentID, cmd.BoxNumbers, cmd.RackID, now)
		if err != nil {
			return err
		}
		if assigned == 0 {
			return domain.ErrBoxNotStored
		}

		usage, err := s.reconciler.recompute(txCtx, cmd.CompanyID, cmd.RackID)
		if err != nil {
			return err
		}
		if err := rack.ApplyUsage(usage); err != nil {
			return err
		}
		if err := s.rackRepo.Save(txCtx, rack); err != nil {
			return err
		}

		boxes, err := s.boxRepo.FindByShipment(txCtx, cmd.CompanyID, cmd.ShipmentID)
		if err != nil {
			return err
		}
		fullyStored = allRacked(boxes)
		if fullyStored && shipment.Status == domain.ShipmentStatusPending {
			if err := shipment.MarkStored(); err != nil {
				return err
			}
			if err := s.shipmentRepo.Save(txCtx, shipment); err != nil {
				return err
			}
		}

		if err := s.inventoryRepo.AdjustQuantity(txCtx, cmd.CompanyID, cmd.RackID, cmd.ShipmentID, assigned); err != nil {
			return err
		}

		activity := domain.NewRackActivity(
			uuid.New().String(),
			cmd.RackID,
			cmd.CompanyID,
			cmd.UserID,
			domain.ActivityAssign,
			fmt.Sprintf("shipment %s: %d boxes assigned (%d photos)", cmd.ShipmentID, assigned, len(photoPaths)),
			assigned,
		)
		return s.activityRepo.Append(txCtx, activity)
	})
	if err != nil {
		if err == domain.ErrBoxNotStored {
			return nil, errors.ErrValidation("no matching boxes to assign").Wrap(err)
		}
		s.logger.WithError(err).Error("Failed to assign boxes",
			"shipmentId", cmd.ShipmentID,
			"rackId", cmd.RackID,
		)
		return nil, errors.ErrInternal("failed to assign boxes").Wrap(err)
	}

	s.businessMetrics.RecordBoxesAssigned(string(rack.Type), assigned)
	s.businessMetrics.RecordRackUtilization(rack.RackID, rack.Utilization(rack.CapacityUsed))

	s.publishEvents(ctx, rack.GetDomainEvents())
	rack.ClearDomainEvents()
	s.publishEvents(ctx, []domain.DomainEvent{&domain.BoxesAssignedEvent{
		ShipmentID:    cmd.ShipmentID,
		CompanyID:     cmd.CompanyID,
		RackID:        cmd.RackID,
		AssignedCount: assigned,
		PalletUsage:   rack.CapacityUsed,
		FullyStored:   fullyStored,
		AssignedAt:    now,
	}})

	s.logger.Info("Assigned boxes to rack",
		"shipmentId", cmd.ShipmentID,
		"rackId", cmd.RackID,
		"assignedCount", assigned,
		"rackUsage", rack.CapacityUsed,
		"fullyStored", fullyStored,
	)

	return &AssignResult{
		AssignedCount: assigned,
		PhotoPaths:    photoPaths,
		RackUsage:     rack.CapacityUsed,
		FullyStored:   fullyStored,
	}, nil
}

// ReleaseBoxesCommand represents the command to release boxes from storage
type ReleaseBoxesCommand struct {
	CompanyID  string
	UserID     string
	ShipmentID string
	ReleaseAll bool
	BoxNumbers []int

	// CollectorID identifies the person collecting the boxes when the
	// company requires ID verification.
	CollectorID string
	Photos      []domain.Photo
}

// ReleaseBoxes releases all or a subset of a shipment's stored boxes.
// Policy gates come from the company's settings; the release set is the
// intersection of the request with boxes currently in storage, so
// releasing an already-released box is a no-op. Each affected rack's
// counter is rewritten from a recomputation inside the transaction.
func (s *StorageService) ReleaseBoxes(ctx context.Context, cmd ReleaseBoxesCommand) (*ReleaseResult, error) {
	settings, err := loadSettings(ctx, s.settingsRepo, cmd.CompanyID)
	if err != nil {
		return nil, err
	}

	if settings.RequireIDVerification && cmd.CollectorID == "" {
		return nil, errors.ErrValidation("collector ID verification is required").WithDetail("collectorId", "is required")
	}
	if settings.RequireReleasePhotos && len(cmd.Photos) == 0 {
		return nil, errors.ErrValidation("release photos are required").WithDetail("photos", "is required")
	}
	if !cmd.ReleaseAll {
		if !settings.AllowPartialRelease {
			return nil, errors.ErrValidation("partial release is not allowed for this company")
		}
		if len(cmd.BoxNumbers) < settings.PartialReleaseMinBoxes {
			return nil, errors.ErrValidation(
				fmt.Sprintf("minimum %d boxes required for partial release", settings.PartialReleaseMinBoxes),
			).WithDetail("boxNumbers", fmt.Sprintf("at least %d required", settings.PartialReleaseMinBoxes))
		}
	}

	shipment, err := s.shipmentRepo.FindByShipmentID(ctx, cmd.CompanyID, cmd.ShipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find shipment").Wrap(err)
	}
	if shipment == nil {
		return nil, errors.ErrNotFoundWithID("shipment", cmd.ShipmentID)
	}

	stored, err := s.boxRepo.FindStoredByShipment(ctx, cmd.CompanyID, cmd.ShipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load stored boxes").Wrap(err)
	}

	releaseSet := resolveReleaseSet(stored, cmd.ReleaseAll, cmd.BoxNumbers)
	if len(releaseSet) == 0 {
		return nil, errors.ErrValidation("no boxes in storage match the release request")
	}

	photoPaths, err := s.storePhotos(ctx, "release", cmd.ShipmentID, cmd.Photos)
	if err != nil {
		return nil, err
	}

	releaseNumbers := make([]int, 0, len(releaseSet))
	rackCounts := make(map[string]int)
	for _, box := range releaseSet {
		releaseNumbers = append(releaseNumbers, box.BoxNumber)
		rackCounts[box.RackID]++
	}

	now := time.Now().UTC()
	var released, remaining int

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		var err error
		released, err = s.boxRepo.Release(txCtx, cmd.CompanyID, cmd.ShipmentID, releaseNumbers, now)
		if err != nil {
			return err
		}

		for rackID, count := range rackCounts {
			rack, err := s.rackRepo.FindByRackID(txCtx, cmd.CompanyID, rackID)
			if err != nil {
				return err
			}
			if rack == nil {
				continue
			}

			usage, err := s.reconciler.recompute(txCtx, cmd.CompanyID, rackID)
			if err != nil {
				return err
			}
			if err := rack.ApplyUsage(usage); err != nil {
				return err
			}
			if err := s.rackRepo.Save(txCtx, rack); err != nil {
				return err
			}

			if err := s.inventoryRepo.AdjustQuantity(txCtx, cmd.CompanyID, rackID, cmd.ShipmentID, -count); err != nil {
				return err
			}

			activity := domain.NewRackActivity(
				uuid.New().String(),
				rackID,
				cmd.CompanyID,
				cmd.UserID,
				domain.ActivityRelease,
				fmt.Sprintf("shipment %s: %d boxes released (%d photos)", cmd.ShipmentID, count, len(photoPaths)),
				count,
			)
			if err := s.activityRepo.Append(txCtx, activity); err != nil {
				return err
			}
		}

		remainingBoxes, err := s.boxRepo.FindStoredByShipment(txCtx, cmd.CompanyID, cmd.ShipmentID)
		if err != nil {
			return err
		}
		remaining = len(remainingBoxes)

		shipment.ApplyRelease(remaining)
		return s.shipmentRepo.Save(txCtx, shipment)
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to release boxes", "shipmentId", cmd.ShipmentID)
		return nil, errors.ErrInternal("failed to release boxes").Wrap(err)
	}

	var charges *domain.ReleaseCharges
	if settings.GenerateReleaseInvoice {
		charges, err = domain.NewChargeCalculator(&settings.Pricing).Calculate(shipment.ArrivalDate, now, released)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to compute release charges", "shipmentId", cmd.ShipmentID)
			charges = nil
		}
	}

	outcome := "partial"
	if remaining == 0 {
		outcome = "full"
	}
	s.businessMetrics.RecordBoxesReleased(outcome, released)

	notified := s.notifyRelease(ctx, settings, shipment, released, remaining)

	rackIDs := make([]string, 0, len(rackCounts))
	for rackID := range rackCounts {
		rackIDs = append(rackIDs, rackID)
	}
	s.publishEvents(ctx, []domain.DomainEvent{&domain.BoxesReleasedEvent{
		ShipmentID:     cmd.ShipmentID,
		CompanyID:      cmd.CompanyID,
		RackIDs:        rackIDs,
		ReleasedCount:  released,
		RemainingCount: remaining,
		Status:         string(shipment.Status),
		ReleasedAt:     now,
	}})

	s.logger.Audit(ctx, "release", "shipment", cmd.ShipmentID, cmd.UserID, map[string]any{
		"releasedCount":  released,
		"remainingCount": remaining,
		"status":         shipment.Status,
		"collectorId":    cmd.CollectorID,
	})

	return &ReleaseResult{
		ReleasedCount:  released,
		RemainingCount: remaining,
		Status:         shipment.Status,
		Charges:        charges,
		PhotoPaths:     photoPaths,
		Notified:       notified,
	}, nil
}

// resolveReleaseSet returns the stored boxes covered by the request:
// everything in storage for a full release, otherwise the intersection
// with the requested box numbers.
func resolveReleaseSet(stored []*domain.ShipmentBox, releaseAll bool, boxNumbers []int) []*domain.ShipmentBox {
	if releaseAll {
		return stored
	}

	requested := make(map[int]bool, len(boxNumbers))
	for _, n := range boxNumbers {
		requested[n] = true
	}

	set := make([]*domain.ShipmentBox, 0, len(boxNumbers))
	for _, box := range stored {
		if requested[box.BoxNumber] {
			set = append(set, box)
		}
	}
	return set
}

func allRacked(boxes []*domain.ShipmentBox) bool {
	if len(boxes) == 0 {
		return false
	}
	for _, box := range boxes {
		if box.Status != domain.BoxStatusReleased && box.RackID == "" {
			return false
		}
	}
	return true
}

func (s *StorageService) storePhotos(ctx context.Context, kind, shipmentID string, photos []domain.Photo) ([]string, error) {
	if len(photos) == 0 || s.photoStore == nil {
		return nil, nil
	}
	paths, err := s.photoStore.Store(ctx, kind, shipmentID, photos)
	if err != nil {
		return nil, errors.ErrInternal("failed to store photos").Wrap(err)
	}
	return paths, nil
}

// notifyRelease invokes the notification boundary when enabled. Failures
// are logged and never roll back the release.
func (s *StorageService) notifyRelease(ctx context.Context, settings *domain.ShipmentSettings, shipment *domain.Shipment, released, remaining int) bool {
	if !settings.NotifyClientOnRelease || shipment.ClientPhone == "" || s.notifier == nil {
		return false
	}

	message := fmt.Sprintf("%d of your stored boxes have been released.", released)
	if remaining == 0 {
		message = "All of your stored boxes have been released."
	}

	if err := s.notifier.Notify(ctx, shipment.ClientPhone, message); err != nil {
		s.logger.WithError(err).Warn("Failed to send release notification",
			"shipmentId", shipment.ShipmentID,
		)
		return false
	}
	return true
}

func (s *StorageService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
