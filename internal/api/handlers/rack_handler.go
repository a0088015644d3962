package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/api"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// RackHandler handles HTTP requests for rack administration
type RackHandler struct {
	service *application.RackService
	logger  *logging.Logger
}

// NewRackHandler creates a new RackHandler
func NewRackHandler(service *application.RackService, logger *logging.Logger) *RackHandler {
	return &RackHandler{
		service: service,
		logger:  logger,
	}
}

// CreateRack handles POST /api/v1/racks
func (h *RackHandler) CreateRack(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Code          string `json:"code" validate:"required,rack_code"`
		Type          string `json:"type" validate:"required,rack_type"`
		CapacityTotal int    `json:"capacityTotal" validate:"required,gt=0"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.CreateRackCommand{
		CompanyID:     middleware.GetCompanyID(c),
		Code:          req.Code,
		Type:          req.Type,
		CapacityTotal: req.CapacityTotal,
	}

	result, err := h.service.CreateRack(c.Request.Context(), cmd)
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

// GetRack handles GET /api/v1/racks/:rackId
func (h *RackHandler) GetRack(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.GetRackView(c.Request.Context(), middleware.GetCompanyID(c), c.Param("rackId"))
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

// ListRacks handles GET /api/v1/racks
func (h *RackHandler) ListRacks(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	page := api.ParsePagination(c)
	pagination := domain.Pagination{Page: page.Page, PageSize: page.PageSize}

	result, err := h.service.ListRacks(c.Request.Context(), middleware.GetCompanyID(c), pagination)
	if err != nil {
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, api.NewPageResponse(result.Racks, page.Page, page.PageSize, result.TotalItems))
}

// RecomputeRack handles POST /api/v1/racks/:rackId/recompute
func (h *RackHandler) RecomputeRack(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.RecomputeUsage(c.Request.Context(), middleware.GetCompanyID(c), c.Param("rackId"))
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

// DeleteRack handles DELETE /api/v1/racks/:rackId
func (h *RackHandler) DeleteRack(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.service.DeleteRack(c.Request.Context(), middleware.GetCompanyID(c), c.Param("rackId")); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetRackActivity handles GET /api/v1/racks/:rackId/activity
func (h *RackHandler) GetRackActivity(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	page := api.ParsePagination(c)
	pagination := domain.Pagination{Page: page.Page, PageSize: page.PageSize}

	result, err := h.service.GetRackActivity(c.Request.Context(), middleware.GetCompanyID(c), c.Param("rackId"), pagination)
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
