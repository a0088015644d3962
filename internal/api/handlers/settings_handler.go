package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// SettingsHandler handles HTTP requests for company shipment settings
type SettingsHandler struct {
	service *application.SettingsService
	logger  *logging.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *application.SettingsService, logger *logging.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// GetSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.GetSettings(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// UpdateSettings handles PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		RequireClientEmail    bool   `json:"requireClientEmail"`
		RequireClientPhone    bool   `json:"requireClientPhone"`
		RequireEstimatedValue bool   `json:"requireEstimatedValue"`
		RequireRackAssignment bool   `json:"requireRackAssignment"`
		DefaultStorageType    string `json:"defaultStorageType" validate:"omitempty,rack_type"`

		AutoGenerateQR bool   `json:"autoGenerateQr"`
		QRPrefix       string `json:"qrPrefix" validate:"omitempty,qr_prefix"`

		AllowPartialRelease    bool `json:"allowPartialRelease"`
		PartialReleaseMinBoxes int  `json:"partialReleaseMinBoxes" validate:"gte=0"`
		RequireReleaseApproval bool `json:"requireReleaseApproval"`
		RequireIDVerification  bool `json:"requireIdVerification"`
		RequireReleasePhotos   bool `json:"requireReleasePhotos"`
		RequireSignature       bool `json:"requireSignature"`

		GenerateReleaseInvoice bool                   `json:"generateReleaseInvoice"`
		NotifyClientOnRelease  bool                   `json:"notifyClientOnRelease"`
		Pricing                domain.PricingSchedule `json:"pricing"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.UpdateSettingsCommand{
		CompanyID:              middleware.GetCompanyID(c),
		RequireClientEmail:     req.RequireClientEmail,
		RequireClientPhone:     req.RequireClientPhone,
		RequireEstimatedValue:  req.RequireEstimatedValue,
		RequireRackAssignment:  req.RequireRackAssignment,
		DefaultStorageType:     req.DefaultStorageType,
		AutoGenerateQR:         req.AutoGenerateQR,
		QRPrefix:               req.QRPrefix,
		AllowPartialRelease:    req.AllowPartialRelease,
		PartialReleaseMinBoxes: req.PartialReleaseMinBoxes,
		RequireReleaseApproval: req.RequireReleaseApproval,
		RequireIDVerification:  req.RequireIDVerification,
		RequireReleasePhotos:   req.RequireReleasePhotos,
		RequireSignature:       req.RequireSignature,
		GenerateReleaseInvoice: req.GenerateReleaseInvoice,
		NotifyClientOnRelease:  req.NotifyClientOnRelease,
		Pricing:                req.Pricing,
	}

	result, err := h.service.UpdateSettings(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ResetSettings handles POST /api/v1/settings/reset
func (h *SettingsHandler) ResetSettings(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.ResetSettings(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
