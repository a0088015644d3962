package application

import (
	"context"
	"testing"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
)

func TestSettingsService_GetSettings(t *testing.T) {
	t.Run("creates defaults on first access", func(t *testing.T) {
		env := newTestEnv()

		settings, err := env.settings.GetSettings(context.Background(), "company-1")
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}

		if settings.CompanyID != "company-1" {
			t.Errorf("CompanyID = %q, want company-1", settings.CompanyID)
		}
		if !settings.AutoGenerateQR || settings.QRPrefix != "SHP" {
			t.Errorf("QR defaults = %v/%q, want true/SHP", settings.AutoGenerateQR, settings.QRPrefix)
		}
		if !settings.AllowPartialRelease || settings.PartialReleaseMinBoxes != 1 {
			t.Errorf("partial release defaults = %v/%d, want true/1", settings.AllowPartialRelease, settings.PartialReleaseMinBoxes)
		}
		if settings.Pricing.Currency != "USD" {
			t.Errorf("Pricing.Currency = %q, want USD", settings.Pricing.Currency)
		}

		// The lazily created document is persisted, not recreated per call.
		if env.settingsRepo.settings["company-1"] == nil {
			t.Fatal("defaults not persisted")
		}
		again, err := env.settings.GetSettings(context.Background(), "company-1")
		if err != nil {
			t.Fatalf("second GetSettings() error = %v", err)
		}
		if again != settings {
			t.Error("second read returned a different document")
		}
	})
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	t.Run("replaces the stored policy", func(t *testing.T) {
		env := newTestEnv()

		updated, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsCommand{
			CompanyID:              "company-1",
			RequireClientEmail:     true,
			RequireClientPhone:     false,
			DefaultStorageType:     "materials",
			AutoGenerateQR:         true,
			QRPrefix:               "ACME",
			AllowPartialRelease:    true,
			PartialReleaseMinBoxes: 3,
			RequireIDVerification:  false,
			GenerateReleaseInvoice: true,
			NotifyClientOnRelease:  false,
			Pricing: domain.PricingSchedule{
				Currency:               "EUR",
				StorageRatePerDayCents: 150,
				MinimumChargeDays:      2,
			},
		})
		if err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}

		if !updated.RequireClientEmail || updated.RequireClientPhone {
			t.Errorf("intake flags = %v/%v, want true/false", updated.RequireClientEmail, updated.RequireClientPhone)
		}
		if updated.DefaultStorageType != domain.RackTypeMaterials {
			t.Errorf("DefaultStorageType = %v, want materials", updated.DefaultStorageType)
		}
		if updated.QRPrefix != "ACME" {
			t.Errorf("QRPrefix = %q, want ACME", updated.QRPrefix)
		}
		if updated.PartialReleaseMinBoxes != 3 {
			t.Errorf("PartialReleaseMinBoxes = %v, want 3", updated.PartialReleaseMinBoxes)
		}
		if updated.Pricing.Currency != "EUR" || updated.Pricing.StorageRatePerDayCents != 150 {
			t.Errorf("Pricing = %+v, want EUR at 150/day", updated.Pricing)
		}

		persisted := env.settingsRepo.settings["company-1"]
		if persisted == nil || persisted.QRPrefix != "ACME" {
			t.Errorf("update not persisted: %+v", persisted)
		}
	})

	t.Run("empty storage type keeps the existing default", func(t *testing.T) {
		env := newTestEnv()

		updated, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsCommand{
			CompanyID: "company-1",
			QRPrefix:  "ACME",
		})
		if err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}
		if updated.DefaultStorageType != domain.RackTypeStorage {
			t.Errorf("DefaultStorageType = %v, want storage", updated.DefaultStorageType)
		}
	})

	t.Run("invalid storage type rejected", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsCommand{
			CompanyID:          "company-1",
			DefaultStorageType: "freezer",
		})

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeValidationError {
			t.Errorf("UpdateSettings() error = %v, want validation error", err)
		}
	})

	t.Run("negative partial release minimum rejected", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsCommand{
			CompanyID:              "company-1",
			PartialReleaseMinBoxes: -1,
		})

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.CodeValidationError {
			t.Errorf("UpdateSettings() error = %v, want validation error", err)
		}
	})
}

func TestSettingsService_ResetSettings(t *testing.T) {
	env := newTestEnv()

	if _, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsCommand{
		CompanyID: "company-1",
		QRPrefix:  "ACME",
	}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	reset, err := env.settings.ResetSettings(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("ResetSettings() error = %v", err)
	}

	if reset.QRPrefix != "SHP" {
		t.Errorf("QRPrefix = %q, want default SHP", reset.QRPrefix)
	}
	if !reset.RequireClientPhone || !reset.RequireIDVerification {
		t.Errorf("reset flags = %v/%v, want defaults true/true", reset.RequireClientPhone, reset.RequireIDVerification)
	}
}
