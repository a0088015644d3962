package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/metrics"
	"github.com/storage-platform/storage-service/pkg/middleware"
)

// In-memory fakes shared by the service tests. They implement the real
// transition semantics (conditional assignment and release) so the
// services are exercised against realistic repository behavior.

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("application-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func scopedKey(parts ...string) string {
	key := parts[0]
	for _, p := range parts[1:] {
		key += "/" + p
	}
	return key
}

type fakeRackRepo struct {
	racks   map[string]*domain.Rack
	saveErr error
	findErr error
}

func newFakeRackRepo() *fakeRackRepo {
	return &fakeRackRepo{racks: make(map[string]*domain.Rack)}
}

func (f *fakeRackRepo) Save(ctx context.Context, rack *domain.Rack) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.racks[scopedKey(rack.CompanyID, rack.RackID)] = rack
	return nil
}

func (f *fakeRackRepo) FindByRackID(ctx context.Context, companyID, rackID string) (*domain.Rack, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.racks[scopedKey(companyID, rackID)], nil
}

func (f *fakeRackRepo) FindByCode(ctx context.Context, companyID, code string) (*domain.Rack, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, rack := range f.racks {
		if rack.CompanyID == companyID && rack.Code == code {
			return rack, nil
		}
	}
	return nil, nil
}

func (f *fakeRackRepo) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Rack, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var result []*domain.Rack
	for _, rack := range f.racks {
		if rack.CompanyID == companyID {
			result = append(result, rack)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (f *fakeRackRepo) Count(ctx context.Context, companyID string) (int64, error) {
	var count int64
	for _, rack := range f.racks {
		if rack.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRackRepo) Delete(ctx context.Context, companyID, rackID string) error {
	delete(f.racks, scopedKey(companyID, rackID))
	return nil
}

type fakeShipmentRepo struct {
	shipments map[string]*domain.Shipment
	saveErr   error
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{shipments: make(map[string]*domain.Shipment)}
}

func (f *fakeShipmentRepo) Save(ctx context.Context, shipment *domain.Shipment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.shipments[scopedKey(shipment.CompanyID, shipment.ShipmentID)] = shipment
	return nil
}

func (f *fakeShipmentRepo) FindByShipmentID(ctx context.Context, companyID, shipmentID string) (*domain.Shipment, error) {
	return f.shipments[scopedKey(companyID, shipmentID)], nil
}

func (f *fakeShipmentRepo) FindByStatus(ctx context.Context, companyID string, status domain.ShipmentStatus, pagination domain.Pagination) ([]*domain.Shipment, error) {
	var result []*domain.Shipment
	for _, s := range f.shipments {
		if s.CompanyID == companyID && s.Status == status {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeShipmentRepo) FindAll(ctx context.Context, companyID string, pagination domain.Pagination) ([]*domain.Shipment, error) {
	var result []*domain.Shipment
	for _, s := range f.shipments {
		if s.CompanyID == companyID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeShipmentRepo) Delete(ctx context.Context, companyID, shipmentID string) error {
	delete(f.shipments, scopedKey(companyID, shipmentID))
	return nil
}

type fakeBoxRepo struct {
	boxes []*domain.ShipmentBox
}

func newFakeBoxRepo() *fakeBoxRepo {
	return &fakeBoxRepo{}
}

func (f *fakeBoxRepo) CreateBatch(ctx context.Context, boxes []*domain.ShipmentBox) error {
	f.boxes = append(f.boxes, boxes...)
	return nil
}

func (f *fakeBoxRepo) FindByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	var result []*domain.ShipmentBox
	for _, box := range f.boxes {
		if box.CompanyID == companyID && box.ShipmentID == shipmentID {
			result = append(result, box)
		}
	}
	return result, nil
}

func (f *fakeBoxRepo) FindStoredByShipment(ctx context.Context, companyID, shipmentID string) ([]*domain.ShipmentBox, error) {
	var result []*domain.ShipmentBox
	for _, box := range f.boxes {
		if box.CompanyID == companyID && box.ShipmentID == shipmentID && box.Status == domain.BoxStatusInStorage {
			result = append(result, box)
		}
	}
	return result, nil
}

func (f *fakeBoxRepo) FindStoredByRack(ctx context.Context, companyID, rackID string) ([]*domain.ShipmentBox, error) {
	var result []*domain.ShipmentBox
	for _, box := range f.boxes {
		if box.CompanyID == companyID && box.RackID == rackID && box.Status == domain.BoxStatusInStorage {
			result = append(result, box)
		}
	}
	return result, nil
}

func (f *fakeBoxRepo) AssignToRack(ctx context.Context, companyID, shipmentID string, boxNumbers []int, rackID string, at time.Time) (int, error) {
	requested := make(map[int]bool, len(boxNumbers))
	for _, n := range boxNumbers {
		requested[n] = true
	}

	count := 0
	for _, box := range f.boxes {
		if box.CompanyID != companyID || box.ShipmentID != shipmentID {
			continue
		}
		if !requested[box.BoxNumber] || box.Status == domain.BoxStatusReleased {
			continue
		}
		box.Status = domain.BoxStatusInStorage
		box.RackID = rackID
		assignedAt := at
		box.AssignedAt = &assignedAt
		box.UpdatedAt = at
		count++
	}
	return count, nil
}

func (f *fakeBoxRepo) Release(ctx context.Context, companyID, shipmentID string, boxNumbers []int, at time.Time) (int, error) {
	requested := make(map[int]bool, len(boxNumbers))
	for _, n := range boxNumbers {
		requested[n] = true
	}

	count := 0
	for _, box := range f.boxes {
		if box.CompanyID != companyID || box.ShipmentID != shipmentID {
			continue
		}
		if !requested[box.BoxNumber] || box.Status != domain.BoxStatusInStorage {
			continue
		}
		box.Status = domain.BoxStatusReleased
		box.RackID = ""
		releasedAt := at
		box.ReleasedAt = &releasedAt
		box.UpdatedAt = at
		count++
	}
	return count, nil
}

func (f *fakeBoxRepo) DeleteByShipment(ctx context.Context, companyID, shipmentID string) error {
	kept := f.boxes[:0]
	for _, box := range f.boxes {
		if box.CompanyID != companyID || box.ShipmentID != shipmentID {
			kept = append(kept, box)
		}
	}
	f.boxes = kept
	return nil
}

type fakeSettingsRepo struct {
	settings map[string]*domain.ShipmentSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*domain.ShipmentSettings)}
}

func (f *fakeSettingsRepo) FindByCompany(ctx context.Context, companyID string) (*domain.ShipmentSettings, error) {
	return f.settings[companyID], nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, settings *domain.ShipmentSettings) error {
	f.settings[settings.CompanyID] = settings
	return nil
}

func (f *fakeSettingsRepo) Delete(ctx context.Context, companyID string) error {
	delete(f.settings, companyID)
	return nil
}

type fakeActivityRepo struct {
	entries   []*domain.RackActivity
	appendErr error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (f *fakeActivityRepo) Append(ctx context.Context, activity *domain.RackActivity) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, activity)
	return nil
}

func (f *fakeActivityRepo) FindByRack(ctx context.Context, companyID, rackID string, pagination domain.Pagination) ([]*domain.RackActivity, error) {
	var result []*domain.RackActivity
	for _, entry := range f.entries {
		if entry.CompanyID == companyID && entry.RackID == rackID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeInventoryRepo struct {
	entries map[string]*domain.RackInventory
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{entries: make(map[string]*domain.RackInventory)}
}

func (f *fakeInventoryRepo) AdjustQuantity(ctx context.Context, companyID, rackID, shipmentID string, delta int) error {
	key := scopedKey(companyID, rackID, shipmentID)
	entry, ok := f.entries[key]
	if !ok {
		entry = &domain.RackInventory{
			CompanyID:  companyID,
			RackID:     rackID,
			ShipmentID: shipmentID,
		}
		f.entries[key] = entry
	}
	entry.Quantity += delta
	if entry.Quantity <= 0 {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeInventoryRepo) FindByRack(ctx context.Context, companyID, rackID string) ([]*domain.RackInventory, error) {
	var result []*domain.RackInventory
	for _, entry := range f.entries {
		if entry.CompanyID == companyID && entry.RackID == rackID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeProfileResolver struct {
	profiles map[string]bool
}

func newFakeProfileResolver(profileIDs ...string) *fakeProfileResolver {
	f := &fakeProfileResolver{profiles: make(map[string]bool)}
	for _, id := range profileIDs {
		f.profiles[id] = true
	}
	return f
}

func (f *fakeProfileResolver) Exists(ctx context.Context, companyID, profileID string) (bool, error) {
	return f.profiles[profileID], nil
}

// fakeUnitOfWork mimics a mongo transaction over the in-memory fakes:
// repository state is snapshotted before the function runs and restored
// when it returns an error, so a mid-transaction failure leaves no
// partial writes behind.
type fakeUnitOfWork struct {
	env        *testEnv
	executeErr error
}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	if f.executeErr != nil {
		return f.executeErr
	}
	snap := f.env.snapshot()
	if err := fn(ctx); err != nil {
		f.env.restore(snap)
		return err
	}
	return nil
}

// stateSnapshot holds deep copies of every repository's state. Domain
// objects are copied by value because the services mutate them in place.
type stateSnapshot struct {
	racks      map[string]*domain.Rack
	shipments  map[string]*domain.Shipment
	boxes      []*domain.ShipmentBox
	settings   map[string]*domain.ShipmentSettings
	inventory  map[string]*domain.RackInventory
	activities []*domain.RackActivity
}

func (env *testEnv) snapshot() *stateSnapshot {
	snap := &stateSnapshot{
		racks:     make(map[string]*domain.Rack, len(env.rackRepo.racks)),
		shipments: make(map[string]*domain.Shipment, len(env.shipmentRepo.shipments)),
		settings:  make(map[string]*domain.ShipmentSettings, len(env.settingsRepo.settings)),
		inventory: make(map[string]*domain.RackInventory, len(env.inventoryRepo.entries)),
	}
	for k, v := range env.rackRepo.racks {
		clone := *v
		snap.racks[k] = &clone
	}
	for k, v := range env.shipmentRepo.shipments {
		clone := *v
		snap.shipments[k] = &clone
	}
	for _, box := range env.boxRepo.boxes {
		clone := *box
		snap.boxes = append(snap.boxes, &clone)
	}
	for k, v := range env.settingsRepo.settings {
		clone := *v
		snap.settings[k] = &clone
	}
	for k, v := range env.inventoryRepo.entries {
		clone := *v
		snap.inventory[k] = &clone
	}
	snap.activities = append(snap.activities, env.activityRepo.entries...)
	return snap
}

func (env *testEnv) restore(snap *stateSnapshot) {
	env.rackRepo.racks = snap.racks
	env.shipmentRepo.shipments = snap.shipments
	env.boxRepo.boxes = snap.boxes
	env.settingsRepo.settings = snap.settings
	env.inventoryRepo.entries = snap.inventory
	env.activityRepo.entries = snap.activities
}

type fakePhotoStore struct {
	stored   int
	storeErr error
}

func (f *fakePhotoStore) Store(ctx context.Context, kind, shipmentID string, photos []domain.Photo) ([]string, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	paths := make([]string, 0, len(photos))
	for i := range photos {
		paths = append(paths, fmt.Sprintf("%s/%s/photo-%d.jpg", kind, shipmentID, i+1))
	}
	f.stored += len(photos)
	return paths, nil
}

type fakeNotifier struct {
	notifications []string
	notifyErr     error
}

func (f *fakeNotifier) Notify(ctx context.Context, phone, message string) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notifications = append(f.notifications, phone+": "+message)
	return nil
}

type fakePublisher struct {
	events     []domain.DomainEvent
	publishErr error
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	types := make([]string, 0, len(f.events))
	for _, event := range f.events {
		types = append(types, event.EventType())
	}
	return types
}

// testEnv wires every service against the shared in-memory fakes.
type testEnv struct {
	rackRepo      *fakeRackRepo
	shipmentRepo  *fakeShipmentRepo
	boxRepo       *fakeBoxRepo
	settingsRepo  *fakeSettingsRepo
	activityRepo  *fakeActivityRepo
	inventoryRepo *fakeInventoryRepo
	profiles      *fakeProfileResolver
	photoStore    *fakePhotoStore
	notifier      *fakeNotifier
	publisher     *fakePublisher
	uow           *fakeUnitOfWork

	racks     *RackService
	shipments *ShipmentService
	storage   *StorageService
	settings  *SettingsService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		rackRepo:      newFakeRackRepo(),
		shipmentRepo:  newFakeShipmentRepo(),
		boxRepo:       newFakeBoxRepo(),
		settingsRepo:  newFakeSettingsRepo(),
		activityRepo:  newFakeActivityRepo(),
		inventoryRepo: newFakeInventoryRepo(),
		profiles:      newFakeProfileResolver(),
		photoStore:    &fakePhotoStore{},
		notifier:      &fakeNotifier{},
		publisher:     &fakePublisher{},
		uow:           &fakeUnitOfWork{},
	}
	env.uow.env = env

	logger := testLogger()
	businessMetrics := middleware.NewBusinessMetrics(metrics.New(metrics.DefaultConfig("application-test")))
	env.racks = NewRackService(env.rackRepo, env.boxRepo, env.shipmentRepo, env.inventoryRepo, env.activityRepo, env.uow, logger)
	env.shipments = NewShipmentService(env.shipmentRepo, env.boxRepo, env.rackRepo, env.settingsRepo, env.inventoryRepo, env.activityRepo, env.profiles, env.uow, env.publisher, businessMetrics, logger)
	env.storage = NewStorageService(env.shipmentRepo, env.boxRepo, env.rackRepo, env.settingsRepo, env.inventoryRepo, env.activityRepo, env.uow, env.photoStore, env.notifier, env.publisher, businessMetrics, logger)
	env.settings = NewSettingsService(env.settingsRepo, logger)
	return env
}

func (env *testEnv) addRack(t *testing.T, companyID, rackID, code string, capacity int) *domain.Rack {
	t.Helper()
	rack, err := domain.NewRack(rackID, code, companyID, domain.RackTypeStorage, capacity)
	if err != nil {
		t.Fatalf("NewRack() error = %v", err)
	}
	env.rackRepo.racks[scopedKey(companyID, rackID)] = rack
	return rack
}
