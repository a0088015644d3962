package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
)

// RackService implements the application layer for rack administration
// and the reconciled capacity read path.
type RackService struct {
	rackRepo      domain.RackRepository
	boxRepo       domain.BoxRepository
	shipmentRepo  domain.ShipmentRepository
	inventoryRepo domain.InventoryRepository
	activityRepo  domain.ActivityRepository
	uow           domain.UnitOfWork
	reconciler    usageReconciler
	logger        *logging.Logger
}

// NewRackService creates a new RackService
func NewRackService(
	rackRepo domain.RackRepository,
	boxRepo domain.BoxRepository,
	shipmentRepo domain.ShipmentRepository,
	inventoryRepo domain.InventoryRepository,
	activityRepo domain.ActivityRepository,
	uow domain.UnitOfWork,
	logger *logging.Logger,
) *RackService {
	return &RackService{
		rackRepo:      rackRepo,
		boxRepo:       boxRepo,
		shipmentRepo:  shipmentRepo,
		inventoryRepo: inventoryRepo,
		activityRepo:  activityRepo,
		uow:           uow,
		reconciler:    usageReconciler{boxRepo: boxRepo, shipmentRepo: shipmentRepo},
		logger:        logger,
	}
}

// CreateRackCommand represents the command to create a rack
type CreateRackCommand struct {
	CompanyID     string
	Code          string
	Type          string
	CapacityTotal int
}

// CreateRack creates a new rack with a company-unique code
func (s *RackService) CreateRack(ctx context.Context, cmd CreateRackCommand) (*domain.Rack, error) {
	existing, err := s.rackRepo.FindByCode(ctx, cmd.CompanyID, cmd.Code)
	if err != nil {
		return nil, errors.ErrInternal("failed to check rack code").Wrap(err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("rack code already exists").WithDetail("code", cmd.Code)
	}

	rackID := fmt.Sprintf("RCK-%s", uuid.New().String()[:8])
	rack, err := domain.NewRack(rackID, cmd.Code, cmd.CompanyID, domain.RackType(cmd.Type), cmd.CapacityTotal)
	if err != nil {
		return nil, errors.ErrValidation("invalid rack").Wrap(err)
	}

	if err := s.rackRepo.Save(ctx, rack); err != nil {
		s.logger.WithError(err).Error("Failed to save rack", "code", cmd.Code)
		return nil, errors.ErrInternal("failed to save rack").Wrap(err)
	}

	s.logger.Info("Created rack",
		"rackId", rack.RackID,
		"code", rack.Code,
		"type", rack.Type,
		"capacityTotal", rack.CapacityTotal,
	)

	return rack, nil
}

// GetRackView retrieves a rack with its usage reconciled from the boxes
// stored on it. The cached counter never reaches the caller.
func (s *RackService) GetRackView(ctx context.Context, companyID, rackID string) (*RackView, error) {
	rack, err := s.rackRepo.FindByRackID(ctx, companyID, rackID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find rack").Wrap(err)
	}
	if rack == nil {
		return nil, errors.ErrNotFoundWithID("rack", rackID)
	}

	usage, err := s.reconciler.recompute(ctx, companyID, rackID)
	if err != nil {
		return nil, errors.ErrInternal("failed to recompute rack usage").Wrap(err)
	}

	inventory, err := s.inventoryRepo.FindByRack(ctx, companyID, rackID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load rack inventory").Wrap(err)
	}

	return s.buildView(rack, usage, inventory), nil
}

// ListRacks retrieves a company's racks, each with reconciled usage
func (s *RackService) ListRacks(ctx context.Context, companyID string, pagination domain.Pagination) (*RackListResult, error) {
	racks, err := s.rackRepo.FindAll(ctx, companyID, pagination)
	if err != nil {
		return nil, errors.ErrInternal("failed to list racks").Wrap(err)
	}

	total, err := s.rackRepo.Count(ctx, companyID)
	if err != nil {
		return nil, errors.ErrInternal("failed to count racks").Wrap(err)
	}

	views := make([]*RackView, 0, len(racks))
	for _, rack := range racks {
		usage, err := s.reconciler.recompute(ctx, companyID, rack.RackID)
		if err != nil {
			return nil, errors.ErrInternal("failed to recompute rack usage").Wrap(err)
		}
		views = append(views, s.buildView(rack, usage, nil))
	}

	return &RackListResult{Racks: views, TotalItems: total}, nil
}

// RecomputeUsage reconciles a rack's persisted counter against the boxes
// stored on it, transactionally, and returns the corrected rack.
func (s *RackService) RecomputeUsage(ctx context.Context, companyID, rackID string) (*domain.Rack, error) {
	var rack *domain.Rack

	err := s.uow.Execute(ctx, func(txCtx context.Context) error {
		var err error
		rack, err = s.rackRepo.FindByRackID(txCtx, companyID, rackID)
		if err != nil {
			return err
		}
		if rack == nil {
			return domain.ErrRackNotFound
		}

		usage, err := s.reconciler.recompute(txCtx, companyID, rackID)
		if err != nil {
			return err
		}

		if err := rack.ApplyUsage(usage); err != nil {
			return err
		}
		return s.rackRepo.Save(txCtx, rack)
	})
	if err != nil {
		if err == domain.ErrRackNotFound {
			return nil, errors.ErrNotFoundWithID("rack", rackID)
		}
		return nil, errors.ErrInternal("failed to recompute rack usage").Wrap(err)
	}

	s.logger.Info("Reconciled rack usage",
		"rackId", rackID,
		"capacityUsed", rack.CapacityUsed,
		"status", rack.Status,
	)

	return rack, nil
}

// DeleteRack removes a rack. Rejected while the rack still holds boxes.
func (s *RackService) DeleteRack(ctx context.Context, companyID, rackID string) error {
	rack, err := s.rackRepo.FindByRackID(ctx, companyID, rackID)
	if err != nil {
		return errors.ErrInternal("failed to find rack").Wrap(err)
	}
	if rack == nil {
		return errors.ErrNotFoundWithID("rack", rackID)
	}

	stored, err := s.boxRepo.FindStoredByRack(ctx, companyID, rackID)
	if err != nil {
		return errors.ErrInternal("failed to check rack contents").Wrap(err)
	}
	if len(stored) > 0 {
		return errors.ErrConflict("rack still holds boxes in storage").WithDetail("boxes", fmt.Sprintf("%d", len(stored)))
	}

	if err := s.rackRepo.Delete(ctx, companyID, rackID); err != nil {
		return errors.ErrInternal("failed to delete rack").Wrap(err)
	}

	s.logger.Info("Deleted rack", "rackId", rackID, "code", rack.Code)
	return nil
}

// GetRackActivity retrieves a rack's audit trail, newest first
func (s *RackService) GetRackActivity(ctx context.Context, companyID, rackID string, pagination domain.Pagination) ([]*domain.RackActivity, error) {
	rack, err := s.rackRepo.FindByRackID(ctx, companyID, rackID)
	if err != nil {
		return nil, errors.ErrInternal("failed to find rack").Wrap(err)
	}
	if rack == nil {
		return nil, errors.ErrNotFoundWithID("rack", rackID)
	}

	activity, err := s.activityRepo.FindByRack(ctx, companyID, rackID, pagination)
	if err != nil {
		return nil, errors.ErrInternal("failed to load rack activity").Wrap(err)
	}
	return activity, nil
}

func (s *RackService) buildView(rack *domain.Rack, usage int, inventory []*domain.RackInventory) *RackView {
	available := rack.CapacityTotal - usage
	if available < 0 {
		available = 0
	}

	return &RackView{
		Rack:              rack,
		CapacityUsed:      usage,
		AvailableCapacity: available,
		Utilization:       rack.Utilization(usage),
		Status:            rack.DerivedStatus(usage),
		Inventory:         inventory,
	}
}
