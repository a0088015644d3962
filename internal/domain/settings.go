package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricingSchedule holds the storage and release rates for a company. All
// amounts are in cents of the schedule currency.
type PricingSchedule struct {
	Currency                string `bson:"currency" json:"currency"`
	StorageRatePerDayCents  int64  `bson:"storageRatePerDayCents" json:"storageRatePerDayCents"`
	StorageRatePerBoxCents  int64  `bson:"storageRatePerBoxCents" json:"storageRatePerBoxCents"`
	MinimumChargeDays       int    `bson:"minimumChargeDays" json:"minimumChargeDays"`
	ReleaseHandlingFeeCents int64  `bson:"releaseHandlingFeeCents" json:"releaseHandlingFeeCents"`
	ReleasePerBoxFeeCents   int64  `bson:"releasePerBoxFeeCents" json:"releasePerBoxFeeCents"`
	ReleaseTransportFeeCents int64 `bson:"releaseTransportFeeCents" json:"releaseTransportFeeCents"`
}

// ShipmentSettings is the per-company policy configuration consumed by
// provisioning and release. A company without stored settings gets the
// defaults, created lazily on first access.
type ShipmentSettings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID string             `bson:"companyId" json:"companyId"`

	// Intake requirements
	RequireClientEmail    bool     `bson:"requireClientEmail" json:"requireClientEmail"`
	RequireClientPhone    bool     `bson:"requireClientPhone" json:"requireClientPhone"`
	RequireEstimatedValue bool     `bson:"requireEstimatedValue" json:"requireEstimatedValue"`
	RequireRackAssignment bool     `bson:"requireRackAssignment" json:"requireRackAssignment"`
	DefaultStorageType    RackType `bson:"defaultStorageType" json:"defaultStorageType"`

	// QR generation
	AutoGenerateQR bool   `bson:"autoGenerateQr" json:"autoGenerateQr"`
	QRPrefix       string `bson:"qrPrefix" json:"qrPrefix"`

	// Release policy
	AllowPartialRelease    bool `bson:"allowPartialRelease" json:"allowPartialRelease"`
	PartialReleaseMinBoxes int  `bson:"partialReleaseMinBoxes" json:"partialReleaseMinBoxes"`
	RequireReleaseApproval bool `bson:"requireReleaseApproval" json:"requireReleaseApproval"`
	RequireIDVerification  bool `bson:"requireIdVerification" json:"requireIdVerification"`
	RequireReleasePhotos   bool `bson:"requireReleasePhotos" json:"requireReleasePhotos"`
	RequireSignature       bool `bson:"requireSignature" json:"requireSignature"`

	// Billing and notification
	GenerateReleaseInvoice bool            `bson:"generateReleaseInvoice" json:"generateReleaseInvoice"`
	NotifyClientOnRelease  bool            `bson:"notifyClientOnRelease" json:"notifyClientOnRelease"`
	Pricing                PricingSchedule `bson:"pricing" json:"pricing"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings returns the settings a company starts with.
func DefaultSettings(companyID string) *ShipmentSettings {
	now := time.Now().UTC()
	return &ShipmentSettings{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,

		RequireClientEmail:    false,
		RequireClientPhone:    true,
		RequireEstimatedValue: false,
		RequireRackAssignment: false,
		DefaultStorageType:    RackTypeStorage,

		AutoGenerateQR: true,
		QRPrefix:       "SHP",

		AllowPartialRelease:    true,
		PartialReleaseMinBoxes: 1,
		RequireReleaseApproval: false,
		RequireIDVerification:  true,
		RequireReleasePhotos:   false,
		RequireSignature:       false,

		GenerateReleaseInvoice: true,
		NotifyClientOnRelease:  true,
		Pricing: PricingSchedule{
			Currency:                 "USD",
			StorageRatePerDayCents:   200,
			StorageRatePerBoxCents:   100,
			MinimumChargeDays:        1,
			ReleaseHandlingFeeCents:  500,
			ReleasePerBoxFeeCents:    50,
			ReleaseTransportFeeCents: 0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
