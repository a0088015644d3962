package application

import (
	"context"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
)

// SettingsService administers per-company shipment settings.
type SettingsService struct {
	settingsRepo domain.SettingsRepository
	logger       *logging.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo domain.SettingsRepository, logger *logging.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// loadSettings fetches a company's settings, creating the defaults on
// first access. Shared by every service that consumes settings so the
// lazy-default behavior is uniform.
func loadSettings(ctx context.Context, repo domain.SettingsRepository, companyID string) (*domain.ShipmentSettings, error) {
	settings, err := repo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load settings").Wrap(err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = domain.DefaultSettings(companyID)
	if err := repo.Save(ctx, settings); err != nil {
		return nil, errors.ErrInternal("failed to save default settings").Wrap(err)
	}
	return settings, nil
}

// GetSettings returns a company's settings, creating defaults if absent
func (s *SettingsService) GetSettings(ctx context.Context, companyID string) (*domain.ShipmentSettings, error) {
	return loadSettings(ctx, s.settingsRepo, companyID)
}

// UpdateSettingsCommand carries a full settings replacement
type UpdateSettingsCommand struct {
	CompanyID string

	RequireClientEmail    bool
	RequireClientPhone    bool
	RequireEstimatedValue bool
	RequireRackAssignment bool
	DefaultStorageType    string

	AutoGenerateQR bool
	QRPrefix       string

	AllowPartialRelease    bool
	PartialReleaseMinBoxes int
	RequireReleaseApproval bool
	RequireIDVerification  bool
	RequireReleasePhotos   bool
	RequireSignature       bool

	GenerateReleaseInvoice bool
	NotifyClientOnRelease  bool
	Pricing                domain.PricingSchedule
}

// UpdateSettings replaces a company's settings
func (s *SettingsService) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (*domain.ShipmentSettings, error) {
	storageType := domain.RackType(cmd.DefaultStorageType)
	if cmd.DefaultStorageType != "" && !storageType.IsValid() {
		return nil, errors.ErrValidation("invalid default storage type")
	}
	if cmd.PartialReleaseMinBoxes < 0 {
		return nil, errors.ErrValidation("partial release minimum must not be negative")
	}

	settings, err := loadSettings(ctx, s.settingsRepo, cmd.CompanyID)
	if err != nil {
		return nil, err
	}

	settings.RequireClientEmail = cmd.RequireClientEmail
	settings.RequireClientPhone = cmd.RequireClientPhone
	settings.RequireEstimatedValue = cmd.RequireEstimatedValue
	settings.RequireRackAssignment = cmd.RequireRackAssignment
	if cmd.DefaultStorageType != "" {
		settings.DefaultStorageType = storageType
	}
	settings.AutoGenerateQR = cmd.AutoGenerateQR
	settings.QRPrefix = cmd.QRPrefix
	settings.AllowPartialRelease = cmd.AllowPartialRelease
	settings.PartialReleaseMinBoxes = cmd.PartialReleaseMinBoxes
	settings.RequireReleaseApproval = cmd.RequireReleaseApproval
	settings.RequireIDVerification = cmd.RequireIDVerification
	settings.RequireReleasePhotos = cmd.RequireReleasePhotos
	settings.RequireSignature = cmd.RequireSignature
	settings.GenerateReleaseInvoice = cmd.GenerateReleaseInvoice
	settings.NotifyClientOnRelease = cmd.NotifyClientOnRelease
	settings.Pricing = cmd.Pricing

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		s.logger.WithError(err).Error("Failed to save settings", "companyId", cmd.CompanyID)
		return nil, errors.ErrInternal("failed to save settings").Wrap(err)
	}

	s.logger.Info("Updated shipment settings", "companyId", cmd.CompanyID)
	return settings, nil
}

// ResetSettings restores a company's settings to the defaults
func (s *SettingsService) ResetSettings(ctx context.Context, companyID string) (*domain.ShipmentSettings, error) {
	if err := s.settingsRepo.Delete(ctx, companyID); err != nil {
		return nil, errors.ErrInternal("failed to reset settings").Wrap(err)
	}

	settings := domain.DefaultSettings(companyID)
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, errors.ErrInternal("failed to save default settings").Wrap(err)
	}

	s.logger.Info("Reset shipment settings to defaults", "companyId", companyID)
	return settings, nil
}
