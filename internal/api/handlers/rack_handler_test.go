package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

type fakeRackRepo struct {
	saveFn       func(context.Context, *domain.Rack) error
	findByIDFn   func(context.Context, string, string) (*domain.Rack, error)
	findByCodeFn func(context.Context, string, string) (*domain.Rack, error)
	findAllFn    func(context.Context, string, domain.Pagination) ([]*domain.Rack, error)
	deleteFn     func(context.Context, string, string) error
}

func (f *fakeRackRepo) Save(ctx context.Context, rack *domain.Rack) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, rack)
	}
	return nil
}

func (f *fakeRackRepo) FindByRackID(ctx context.Context, companyID, rackID string) (*domain.Rack, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, rackID)
	}
	return nil, nil
}

func (f *fakeRackRepo) FindByCode(ctx context.Context, companyID, code string) (*domain.Rack, error) {
	if f.findByCodeFn != nil {
		return f.findByCodeFn(ctx, companyID, code)
	}
	return nil, nil
}

func (f *fakeRackRepo) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Rack, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, companyID, pagination)
	}
	return nil, nil
}

func (f *fakeRackRepo) Count(ctx context.Context, companyID string) (int64, error) {
	return 0, nil
}

func (f *fakeRackRepo) Delete(ctx context.Context, companyID, rackID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, rackID)
	}
	return nil
}

type fakeBoxRepo struct {
	findStoredByRackFn     func(context.Context, string, string) ([]*domain.ShipmentBox, error)
	findStoredByShipmentFn func(context.Context, string, string) ([]*domain.ShipmentBox, error)
	releaseFn              func(context.Context, string, string, []int, time.Time) (int, error)
}

func (f *fakeBoxRepo) CreateBatch(ctx context.Context, boxes []*domain.ShipmentBox) error {
	return nil
}

func (f *fakeBoxRepo) FindByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	return nil, nil
}

func (f *fakeBoxRepo) FindStoredByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	if f.findStoredByShipmentFn != nil {
		return f.findStoredByShipmentFn(ctx, companyID, shipmentID)
	}
	return nil, nil
}

func (f *fakeBoxRepo) FindStoredByRack(ctx context.Context, companyID, rackID string) ([]*domain.ShipmentBox, error) {
	if f.findStoredByRackFn != nil {
		return f.findStoredByRackFn(ctx, companyID, rackID)
	}
	return nil, nil
}

func (f *fakeBoxRepo) AssignToRack(ctx context.Context, companyID, shipmentID string, boxNumbers []int, rackID string, at time.Time) (int, error) {
	return 0, nil
}

func (f *fakeBoxRepo) Release(ctx context.Context, companyID, shipmentID string, boxNumbers []int, at time.Time) (int, error) {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, companyID, shipmentID, boxNumbers, at)
	}
	return 0, nil
}

func (f *fakeBoxRepo) DeleteByShipment(ctx context.Context, companyID, shipmentID string) error {
	return nil
}

type fakeShipmentRepo struct {
	findByIDFn func(context.Context, string, string) (*domain.Shipment, error)
}

func (f *fakeShipmentRepo) Save(ctx context.Context, shipment *domain.Shipment) error {
	return nil
}

func (f *fakeShipmentRepo) FindByShipmentID(ctx context.Context, companyID, shipmentID string) (*domain.Shipment, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, shipmentID)
	}
	return nil, nil
}

func (f *fakeShipmentRepo) FindByStatus(ctx context.Context, companyID string, status domain.ShipmentStatus, pagination domain.Pagination) ([]*domain.Shipment, error) {
	return nil, nil
}

func (f *fakeShipmentRepo) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Shipment, error) {
	return nil, nil
}

func (f *fakeShipmentRepo) Delete(ctx context.Context, companyID, shipmentID string) error {
	return nil
}

type fakeInventoryRepo struct{}

func (f *fakeInventoryRepo) AdjustQuantity(ctx context.Context, companyID, rackID, shipmentID string, delta int) error {
	return nil
}

func (f *fakeInventoryRepo) FindByRack(ctx context.Context, companyID, rackID string) ([]*domain.RackInventory, error) {
	return nil, nil
}

type fakeActivityRepo struct {
	findByRackFn func(context.Context, string, string, domain.Pagination) ([]*domain.RackActivity, error)
}

func (f *fakeActivityRepo) Append(ctx context.Context, activity *domain.RackActivity) error {
	return nil
}

func (f *fakeActivityRepo) FindByRack(ctx context.Context, companyID, rackID string, pagination domain.Pagination) ([]*domain.RackActivity, error) {
	if f.findByRackFn != nil {
		return f.findByRackFn(ctx, companyID, rackID, pagination)
	}
	return nil, nil
}

type fakeUnitOfWork struct{}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("rack-handler-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func makeRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.HeaderUserID, "user-1")
	req.Header.Set(middleware.HeaderUserRole, middleware.RoleManager)
	req.Header.Set(middleware.HeaderCompanyID, "company-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRouter(rackRepo domain.RackRepository, boxRepo domain.BoxRepository, shipmentRepo domain.ShipmentRepository, activityRepo domain.ActivityRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()

	service := application.NewRackService(rackRepo, boxRepo, shipmentRepo, &fakeInventoryRepo{}, activityRepo, &fakeUnitOfWork{}, testLogger())
	handler := NewRackHandler(service, testLogger())

	router := gin.New()
	v1 := router.Group("/api/v1", middleware.Identity())
	v1.POST("/racks", handler.CreateRack)
	v1.GET("/racks", handler.ListRacks)
	v1.GET("/racks/:rackId", handler.GetRack)
	v1.POST("/racks/:rackId/recompute", handler.RecomputeRack)
	v1.DELETE("/racks/:rackId", handler.DeleteRack)
	v1.GET("/racks/:rackId/activity", handler.GetRackActivity)
	return router
}

func TestRackHandlerCreateRack(t *testing.T) {
	router := newRouter(&fakeRackRepo{}, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodPost, "/api/v1/racks", map[string]interface{}{
		"code":          "A-01",
		"type":          "storage",
		"capacityTotal": 10,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = makeRequest(router, http.MethodPost, "/api/v1/racks", map[string]interface{}{
		"code": "A-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = makeRequest(router, http.MethodPost, "/api/v1/racks", map[string]interface{}{
		"code":          "A-01",
		"type":          "freezer",
		"capacityTotal": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRackHandlerCreateRackDuplicateCode(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByCodeFn: func(_ context.Context, _, code string) (*domain.Rack, error) {
			rack, _ := domain.NewRack("RCK-001", code, "company-1", domain.RackTypeStorage, 10)
			return rack, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodPost, "/api/v1/racks", map[string]interface{}{
		"code":          "A-01",
		"type":          "storage",
		"capacityTotal": 10,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRackHandlerCreateRackRepoError(t *testing.T) {
	rackRepo := &fakeRackRepo{
		saveFn: func(_ context.Context, _ *domain.Rack) error {
			return assert.AnError
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodPost, "/api/v1/racks", map[string]interface{}{
		"code":          "A-01",
		"type":          "storage",
		"capacityTotal": 10,
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRackHandlerGetRack(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByIDFn: func(_ context.Context, _, rackID string) (*domain.Rack, error) {
			if rackID == "RCK-001" {
				rack, _ := domain.NewRack("RCK-001", "A-01", "company-1", domain.RackTypeStorage, 10)
				return rack, nil
			}
			return nil, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodGet, "/api/v1/racks/RCK-001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = makeRequest(router, http.MethodGet, "/api/v1/racks/RCK-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRackHandlerListRacks(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findAllFn: func(_ context.Context, _ string, _ domain.Pagination) ([]*domain.Rack, error) {
			rack, _ := domain.NewRack("RCK-001", "A-01", "company-1", domain.RackTypeStorage, 10)
			return []*domain.Rack{rack}, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodGet, "/api/v1/racks?page=1&pageSize=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRackHandlerRecomputeRack(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByIDFn: func(_ context.Context, _, rackID string) (*domain.Rack, error) {
			if rackID == "RCK-001" {
				rack, _ := domain.NewRack("RCK-001", "A-01", "company-1", domain.RackTypeStorage, 10)
				return rack, nil
			}
			return nil, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodPost, "/api/v1/racks/RCK-001/recompute", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = makeRequest(router, http.MethodPost, "/api/v1/racks/RCK-404/recompute", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRackHandlerDeleteRack(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByIDFn: func(_ context.Context, _, rackID string) (*domain.Rack, error) {
			rack, _ := domain.NewRack(rackID, "A-01", "company-1", domain.RackTypeStorage, 10)
			return rack, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodDelete, "/api/v1/racks/RCK-001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRackHandlerDeleteRackHoldingBoxes(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByIDFn: func(_ context.Context, _, rackID string) (*domain.Rack, error) {
			rack, _ := domain.NewRack(rackID, "A-01", "company-1", domain.RackTypeStorage, 10)
			return rack, nil
		},
	}
	boxRepo := &fakeBoxRepo{
		findStoredByRackFn: func(_ context.Context, _, _ string) ([]*domain.ShipmentBox, error) {
			return []*domain.ShipmentBox{{BoxNumber: 1, Status: domain.BoxStatusInStorage}}, nil
		},
	}
	router := newRouter(rackRepo, boxRepo, &fakeShipmentRepo{}, &fakeActivityRepo{})

	rec := makeRequest(router, http.MethodDelete, "/api/v1/racks/RCK-001", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRackHandlerGetRackActivity(t *testing.T) {
	rackRepo := &fakeRackRepo{
		findByIDFn: func(_ context.Context, _, rackID string) (*domain.Rack, error) {
			rack, _ := domain.NewRack(rackID, "A-01", "company-1", domain.RackTypeStorage, 10)
			return rack, nil
		},
	}
	activityRepo := &fakeActivityRepo{
		findByRackFn: func(_ context.Context, _, rackID string, _ domain.Pagination) ([]*domain.RackActivity, error) {
			return []*domain.RackActivity{
				domain.NewRackActivity("ACT-001", rackID, "company-1", "user-1", domain.ActivityAssign, "boxes assigned", 5),
			}, nil
		},
	}
	router := newRouter(rackRepo, &fakeBoxRepo{}, &fakeShipmentRepo{}, activityRepo)

	rec := makeRequest(router, http.MethodGet, "/api/v1/racks/RCK-001/activity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRackHandlerMissingIdentity(t *testing.T) {
	router := newRouter(&fakeRackRepo{}, &fakeBoxRepo{}, &fakeShipmentRepo{}, &fakeActivityRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/racks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
