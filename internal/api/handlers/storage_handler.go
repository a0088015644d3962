package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/errors"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// maxPhotoBytes bounds a single evidence photo upload.
const maxPhotoBytes = 10 << 20

// StorageHandler handles the capacity-changing operations: assignment
// and release. Both accept multipart forms so evidence photos ride along
// with the operation, and plain JSON when there are none.
type StorageHandler struct {
	service *application.StorageService
	logger  *logging.Logger
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(service *application.StorageService, logger *logging.Logger) *StorageHandler {
	return &StorageHandler{
		service: service,
		logger:  logger,
	}
}

// AssignBoxes handles POST /api/v1/shipments/:shipmentId/assign
func (h *StorageHandler) AssignBoxes(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.AssignBoxesCommand{
		CompanyID:  middleware.GetCompanyID(c),
		UserID:     middleware.GetUserID(c),
		ShipmentID: c.Param("shipmentId"),
	}

	if isMultipart(c) {
		rackID, boxNumbers, _, appErr := parseOperationForm(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		photos, appErr := collectPhotos(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.RackID = rackID
		cmd.BoxNumbers = boxNumbers
		cmd.Photos = photos
	} else {
		var req struct {
			RackID     string `json:"rackId" validate:"required"`
			BoxNumbers []int  `json:"boxNumbers" validate:"required,min=1,dive,gt=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.RackID = req.RackID
		cmd.BoxNumbers = req.BoxNumbers
	}

	result, err := h.service.AssignBoxes(c.Request.Context(), cmd)
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

// ReleaseBoxes handles POST /api/v1/shipments/:shipmentId/release
func (h *StorageHandler) ReleaseBoxes(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.ReleaseBoxesCommand{
		CompanyID:  middleware.GetCompanyID(c),
		UserID:     middleware.GetUserID(c),
		ShipmentID: c.Param("shipmentId"),
	}

	if isMultipart(c) {
		_, boxNumbers, form, appErr := parseOperationForm(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		photos, appErr := collectPhotos(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.BoxNumbers = boxNumbers
		cmd.ReleaseAll = formBool(form, "releaseAll")
		cmd.CollectorID = formValue(form, "collectorId")
		cmd.Photos = photos
	} else {
		var req struct {
			ReleaseAll  bool   `json:"releaseAll"`
			BoxNumbers  []int  `json:"boxNumbers" validate:"omitempty,dive,gt=0"`
			CollectorID string `json:"collectorId"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.ReleaseAll = req.ReleaseAll
		cmd.BoxNumbers = req.BoxNumbers
		cmd.CollectorID = req.CollectorID
	}

	// A release must name its scope. An omitted box set is ambiguous, not
	// a full release.
	if !cmd.ReleaseAll && len(cmd.BoxNumbers) == 0 {
		responder.RespondWithAppError(errors.ErrValidation("box numbers are required unless releaseAll is set").
			WithDetail("boxNumbers", "is required unless releaseAll is true"))
		return
	}

	result, err := h.service.ReleaseBoxes(c.Request.Context(), cmd)
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

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// parseOperationForm extracts the shared operation fields from a
// multipart form. Box numbers arrive either as repeated boxNumbers
// fields or a single comma-separated value.
func parseOperationForm(c *gin.Context) (rackID string, boxNumbers []int, form *multipart.Form, appErr *errors.AppError) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, nil, errors.ErrBadRequest("invalid multipart form").Wrap(err)
	}

	rackID = formValue(form, "rackId")

	for _, raw := range form.Value["boxNumbers"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n <= 0 {
				return "", nil, nil, errors.ErrValidation("box numbers must be positive integers").
					WithDetail("boxNumbers", raw)
			}
			boxNumbers = append(boxNumbers, n)
		}
	}

	return rackID, boxNumbers, form, nil
}

// collectPhotos reads the uploaded photo files into memory
func collectPhotos(c *gin.Context) ([]domain.Photo, *errors.AppError) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.ErrBadRequest("invalid multipart form").Wrap(err)
	}

	files := form.File["photos"]
	if len(files) == 0 {
		return nil, nil
	}

	photos := make([]domain.Photo, 0, len(files))
	for _, header := range files {
		if header.Size > maxPhotoBytes {
			return nil, errors.ErrValidation("photo exceeds maximum size").WithDetail("photo", header.Filename)
		}

		file, err := header.Open()
		if err != nil {
			return nil, errors.ErrBadRequest("failed to read photo upload").Wrap(err)
		}
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
		file.Close()
		if err != nil {
			return nil, errors.ErrBadRequest("failed to read photo upload").Wrap(err)
		}

		photos = append(photos, domain.Photo{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return photos, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func formBool(form *multipart.Form, key string) bool {
	v, _ := strconv.ParseBool(formValue(form, key))
	return v
}
