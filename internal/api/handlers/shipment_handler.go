package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/api"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// ShipmentHandler handles HTTP requests for shipment intake and queries
type ShipmentHandler struct {
	service *application.ShipmentService
	logger  *logging.Logger
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(service *application.ShipmentService, logger *logging.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
		logger:  logger,
	}
}

// ProvisionShipment handles POST /api/v1/shipments
func (h *ShipmentHandler) ProvisionShipment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		ClientName          string `json:"clientName" validate:"required,safe_string"`
		ClientEmail         string `json:"clientEmail" validate:"omitempty,email"`
		ClientPhone         string `json:"clientPhone" validate:"omitempty,phone"`
		ProfileID           string `json:"profileId"`
		ReferenceID         string `json:"referenceId" validate:"omitempty,safe_string"`
		Type                string `json:"type" validate:"omitempty,shipment_type"`
		PalletCount         int    `json:"palletCount" validate:"omitempty,gte=0"`
		BoxesPerPallet      int    `json:"boxesPerPallet" validate:"omitempty,gte=0"`
		OriginalBoxCount    int    `json:"originalBoxCount" validate:"omitempty,gte=0"`
		EstimatedValueCents int64  `json:"estimatedValueCents" validate:"omitempty,gte=0"`
		ArrivalDate         string `json:"arrivalDate"`
		RackID              string `json:"rackId"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	var arrival time.Time
	if req.ArrivalDate != "" {
		var err error
		arrival, err = time.Parse(time.RFC3339, req.ArrivalDate)
		if err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid arrivalDate format"))
			return
		}
	}

	cmd := application.ProvisionShipmentCommand{
		CompanyID:           middleware.GetCompanyID(c),
		UserID:              middleware.GetUserID(c),
		ClientName:          req.ClientName,
		ClientEmail:         req.ClientEmail,
		ClientPhone:         req.ClientPhone,
		ProfileID:           req.ProfileID,
		ReferenceID:         req.ReferenceID,
		Type:                req.Type,
		PalletCount:         req.PalletCount,
		BoxesPerPallet:      req.BoxesPerPallet,
		OriginalBoxCount:    req.OriginalBoxCount,
		EstimatedValueCents: req.EstimatedValueCents,
		ArrivalDate:         arrival,
		RackID:              req.RackID,
	}

	result, err := h.service.ProvisionShipment(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetShipment handles GET /api/v1/shipments/:shipmentId
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.GetShipment(c.Request.Context(), middleware.GetCompanyID(c), c.Param("shipmentId"))
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

// ListShipments handles GET /api/v1/shipments
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	page := api.ParsePagination(c)
	pagination := domain.Pagination{Page: page.Page, PageSize: page.PageSize}
	status := domain.ShipmentStatus(c.Query("status"))

	result, err := h.service.ListShipments(c.Request.Context(), middleware.GetCompanyID(c), status, pagination)
	if err != nil {
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DeleteShipment handles DELETE /api/v1/shipments/:shipmentId
func (h *ShipmentHandler) DeleteShipment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.service.DeleteShipment(c.Request.Context(), middleware.GetCompanyID(c), c.Param("shipmentId")); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
