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

// ShipmentService implements the application layer for shipment intake
// and queries.
type ShipmentService struct {
	shipmentRepo    domain.ShipmentRepository
	boxRepo         domain.BoxRepository
	rackRepo        domain.RackRepository
	settingsRepo    domain.SettingsRepository
	inventoryRepo   domain.InventoryRepository
	activityRepo    domain.ActivityRepository
	profiles        domain.ProfileResolver
	uow             domain.UnitOfWork
	publisher       domain.EventPublisher
	businessMetrics *middleware.BusinessMetrics
	reconciler      usageReconciler
	logger          *logging.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipmentRepo domain.ShipmentRepository,
	boxRepo domain.BoxRepository,
	rackRepo domain.RackRepository,
	settingsRepo domain.SettingsRepository,
	inventoryRepo domain.InventoryRepository,
	activityRepo domain.ActivityRepository,
	profiles domain.ProfileResolver,
	uow domain.UnitOfWork,
	publisher domain.EventPublisher,
	businessMetrics *middleware.BusinessMetrics,
	logger *logging.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo:    shipmentRepo,
		boxRepo:         boxRepo,
		rackRepo:        rackRepo,
		settingsRepo:    settingsRepo,
		inventoryRepo:   inventoryRepo,
		activityRepo:    activityRepo,
		profiles:        profiles,
		uow:             uow,
		publisher:       publisher,
		businessMetrics: businessMetrics,
		reconciler:      usageReconciler{boxRepo: boxRepo, shipmentRepo: shipmentRepo},
		logger:          logger,
	}
}

// ProvisionShipmentCommand represents the command to register a shipment
// and materialize its boxes.
type ProvisionShipmentCommand struct {
	CompanyID   string
	UserID      string
	ClientName  string
	ClientEmail string
	ClientPhone string
	ProfileID   string
	ReferenceID string
	Type        string

	PalletCount         int
	BoxesPerPallet      int
	OriginalBoxCount    int
	EstimatedValueCents int64
	ArrivalDate         time.Time

	// RackID requests an immediate assignment of every box at intake.
	RackID string
}

// ProvisionShipment validates the intake against company policy, creates
// the shipment and its boxes, and optionally places every box on a rack.
// All writes commit or abort as one unit.
func (s *ShipmentService) ProvisionShipment(ctx context.Context, cmd ProvisionShipmentCommand) (*domain.Shipment, error) {
	settings, err := loadSettings(ctx, s.settingsRepo, cmd.CompanyID)
	if err != nil {
		return nil, err
	}

	totalBoxes := cmd.OriginalBoxCount
	if totalBoxes <= 0 {
		totalBoxes = cmd.PalletCount * cmd.BoxesPerPallet
	}
	if totalBoxes <= 0 {
		return nil, errors.ErrValidation("total box count must be a positive integer").
			WithDetail("originalBoxCount", "provide a box count or pallet count with boxes per pallet")
	}

	if settings.RequireClientEmail && cmd.ClientEmail == "" {
		return nil, errors.ErrValidation("client email is required").WithDetail("clientEmail", "is required")
	}
	if settings.RequireClientPhone && cmd.ClientPhone == "" {
		return nil, errors.ErrValidation("client phone is required").WithDetail("clientPhone", "is required")
	}
	if settings.RequireEstimatedValue && cmd.EstimatedValueCents <= 0 {
		return nil, errors.ErrValidation("estimated value is required").WithDetail("estimatedValueCents", "is required")
	}
	if settings.RequireRackAssignment && cmd.RackID == "" {
		return nil, errors.ErrValidation("rack assignment is required at intake").WithDetail("rackId", "is required")
	}

	if cmd.ProfileID != "" {
		ok, err := s.profiles.Exists(ctx, cmd.CompanyID, cmd.ProfileID)
		if err != nil {
			return nil, errors.ErrInternal("failed to resolve company profile").Wrap(err)
		}
		if !ok {
			return nil, errors.ErrNotFoundWithID("company profile", cmd.ProfileID)
		}
	}

	arrival := cmd.ArrivalDate
	if arrival.IsZero() {
		arrival = time.Now().UTC()
	}

	shipmentID := fmt.Sprintf("SHP-%s", uuid.New().String()[:8])
	masterQR := domain.MasterQR(settings, cmd.PalletCount, cmd.BoxesPerPallet, totalBoxes, arrival)

	shipment, err := domain.NewShipment(shipmentID, cmd.CompanyID, domain.ShipmentType(cmd.Type), totalBoxes, masterQR, arrival)
	if err != nil {
		return nil, errors.ErrValidation("invalid shipment").Wrap(err)
	}
	shipment.ClientName = cmd.ClientName
	shipment.ClientEmail = cmd.ClientEmail
	shipment.ClientPhone = cmd.ClientPhone
	shipment.ProfileID = cmd.ProfileID
	shipment.ReferenceID = cmd.ReferenceID
	shipment.PalletCount = cmd.PalletCount
	shipment.BoxesPerPallet = cmd.BoxesPerPallet
	shipment.EstimatedValue = cmd.EstimatedValueCents

	var rack *domain.Rack
	if cmd.RackID != "" {
		rack, err = s.rackRepo.FindByRackID(ctx, cmd.CompanyID, cmd.RackID)
		if err != nil {
			return nil, errors.ErrInternal("failed to find rack").Wrap(err)
		}
		if rack == nil {
			return nil, errors.ErrNotFoundWithID("rack", cmd.RackID)
		}
	}

	boxes := shipment.MaterializeBoxes(cmd.RackID)
	if cmd.RackID != "" {
		if err := shipment.MarkStored(); err != nil {
			return nil, errors.ErrInternal("failed to mark shipment stored").Wrap(err)
		}
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := s.shipmentRepo.Save(txCtx, shipment); err != nil {
			return err
		}
		if err := s.boxRepo.CreateBatch(txCtx, boxes); err != nil {
			return err
		}

		if rack == nil {
			return nil
		}

		usage, err := s.reconciler.recompute(txCtx, cmd.CompanyID, rack.RackID)
		if err != nil {
			return err
		}
		if err := rack.ApplyUsage(usage); err != nil {
			return err
		}
		if err := s.rackRepo.Save(txCtx, rack); err != nil {
			return err
		}

		if err := s.inventoryRepo.AdjustQuantity(txCtx, cmd.CompanyID, rack.RackID, shipment.ShipmentID, totalBoxes); err != nil {
			return err
		}

		activity := domain.NewRackActivity(
			uuid.New().String(),
			rack.RackID,
			cmd.CompanyID,
			cmd.UserID,
			domain.ActivityAssign,
			fmt.Sprintf("shipment %s: %d boxes provisioned onto rack", shipment.ShipmentID, totalBoxes),
			totalBoxes,
		)
		return s.activityRepo.Append(txCtx, activity)
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to provision shipment", "shipmentId", shipmentID)
		return nil, errors.ErrInternal("failed to provision shipment").Wrap(err)
	}

	s.businessMetrics.RecordShipmentProvisioned(string(shipment.Type))

	shipment.RecordProvisioned(cmd.RackID)
	s.publishEvents(ctx, shipment.GetDomainEvents())
	shipment.ClearDomainEvents()
	if rack != nil {
		s.publishEvents(ctx, rack.GetDomainEvents())
		rack.ClearDomainEvents()
	}

	s.logger.Info("Provisioned shipment",
		"shipmentId", shipment.ShipmentID,
		"totalBoxes", totalBoxes,
		"rackId", cmd.RackID,
		"masterQr", shipment.MasterQR,
	)

	return shipment, nil
}

// GetShipment retrieves a shipment with its boxes
func (s *ShipmentService) GetShipment(ctx context.Context, companyID, shipmentID string) (*ShipmentDetail, error) {
	shipment, err := s.shipmentRepo.FindByShipmentID(ctx, companyID, shipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find shipment").Wrap(err)
	}
	if shipment == nil {
		return nil, errors.ErrNotFoundWithID("shipment", shipmentID)
	}

	boxes, err := s.boxRepo.FindByShipment(ctx, companyID, shipmentID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load shipment boxes").Wrap(err)
	}

	return &ShipmentDetail{Shipment: shipment, Boxes: boxes}, nil
}

// ListShipments retrieves a company's shipments, optionally by status
func (s *ShipmentService) ListShipments(ctx context.Context, companyID string, status domain.ShipmentStatus, pagination domain.Pagination) ([]*domain.Shipment, error) {
	if status != "" {
		return s.shipmentRepo.FindByStatus(ctx, companyID, status, pagination)
	}
	return s.shipmentRepo.FindAll(ctx, companyID, pagination)
}

// DeleteShipment removes a shipment and its box records. Rejected while
// any box is still in storage.
func (s *ShipmentService) DeleteShipment(ctx context.Context, companyID, shipmentID string) error {
	shipment, err := s.shipmentRepo.FindByShipmentID(ctx, companyID, shipmentID)
	if err != nil {
		return errors.ErrInternal("failed to find shipment").Wrap(err)
	}
	if shipment == nil {
		return errors.ErrNotFoundWithID("shipment", shipmentID)
	}

	stored, err := s.boxRepo.FindStoredByShipment(ctx, companyID, shipmentID)
	if err != nil {
		return errors.ErrInternal("failed to check shipment boxes").Wrap(err)
	}
	if len(stored) > 0 {
		return errors.ErrConflict("shipment still has boxes in storage").WithDetail("boxes", fmt.Sprintf("%d", len(stored)))
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := s.boxRepo.DeleteByShipment(txCtx, companyID, shipmentID); err != nil {
			return err
		}
		return s.shipmentRepo.Delete(txCtx, companyID, shipmentID)
	})
	if err != nil {
		return errors.ErrInternal("failed to delete shipment").Wrap(err)
	}

	s.logger.Info("Deleted shipment", "shipmentId", shipmentID)
	return nil
}

// publishEvents publishes domain events after commit. Publishing is
// best-effort; a broker failure never fails the operation.
func (s *ShipmentService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
