package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/internal/api/handlers"
	"github.com/storage-platform/storage-service/internal/application"
	"github.com/storage-platform/storage-service/internal/infrastructure/filestore"
	kafkaInfra "github.com/storage-platform/storage-service/internal/infrastructure/kafka"
	mongoRepo "github.com/storage-platform/storage-service/internal/infrastructure/mongodb"
	"github.com/storage-platform/storage-service/pkg/kafka"
	"github.com/storage-platform/storage-service/pkg/logging"
	"github.com/storage-platform/storage-service/pkg/metrics"
	"github.com/storage-platform/storage-service/pkg/middleware"
	"github.com/storage-platform/storage-service/pkg/mongodb"
)

const serviceName = "storage-service"

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)

	logger.Info("Starting storage-service API")

	config := loadConfig()

	// Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer behind a circuit breaker
	producer := kafka.NewCircuitBreakerProducer(kafka.NewProducer(config.Kafka), m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Photo storage
	photoStore, err := filestore.NewPhotoStore(config.PhotoDir)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize photo store")
		return err
	}

	// Repositories
	db := mongoClient.Database()
	rackRepo := mongoRepo.NewRackRepository(db)
	shipmentRepo := mongoRepo.NewShipmentRepository(db)
	boxRepo := mongoRepo.NewBoxRepository(db)
	settingsRepo := mongoRepo.NewSettingsRepository(db)
	activityRepo := mongoRepo.NewActivityRepository(db)
	inventoryRepo := mongoRepo.NewInventoryRepository(db)
	profileResolver := mongoRepo.NewProfileResolver(db)
	uow := mongoRepo.NewUnitOfWork(mongoClient)

	// Messaging boundaries
	publisher := kafkaInfra.NewEventPublisher(producer, kafka.Topics.ShipmentEvents, kafka.Topics.RackEvents)
	notifier := kafkaInfra.NewSMSNotifier(producer, kafka.Topics.Notifications)

	// Application services
	businessMetrics := middleware.NewBusinessMetrics(m)
	rackService := application.NewRackService(rackRepo, boxRepo, shipmentRepo, inventoryRepo, activityRepo, uow, logger)
	shipmentService := application.NewShipmentService(shipmentRepo, boxRepo, rackRepo, settingsRepo, inventoryRepo, activityRepo, profileResolver, uow, publisher, businessMetrics, logger)
	storageService := application.NewStorageService(shipmentRepo, boxRepo, rackRepo, settingsRepo, inventoryRepo, activityRepo, uow, photoStore, notifier, publisher, businessMetrics, logger)
	settingsService := application.NewSettingsService(settingsRepo, logger)

	// Handlers
	rackHandler := handlers.NewRackHandler(rackService, logger)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService, logger)
	storageHandler := handlers.NewStorageHandler(storageService, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsService, logger)

	// Router
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	registerRoutes(router, rackHandler, shipmentHandler, storageHandler, settingsHandler)

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
	return nil
}

// registerRoutes wires the API surface. Every route sits behind the
// gateway identity headers; mutating routes additionally gate on role.
func registerRoutes(
	router *gin.Engine,
	rackHandler *handlers.RackHandler,
	shipmentHandler *handlers.ShipmentHandler,
	storageHandler *handlers.StorageHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity())

	manage := middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleManager)
	operate := middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleWorker)

	racks := v1.Group("/racks")
	{
		racks.POST("", manage, rackHandler.CreateRack)
		racks.GET("", rackHandler.ListRacks)
		racks.GET("/:rackId", rackHandler.GetRack)
		racks.POST("/:rackId/recompute", manage, rackHandler.RecomputeRack)
		racks.DELETE("/:rackId", manage, rackHandler.DeleteRack)
		racks.GET("/:rackId/activity", rackHandler.GetRackActivity)
	}

	shipments := v1.Group("/shipments")
	{
		shipments.POST("", manage, shipmentHandler.ProvisionShipment)
		shipments.GET("", shipmentHandler.ListShipments)
		shipments.GET("/:shipmentId", shipmentHandler.GetShipment)
		shipments.DELETE("/:shipmentId", manage, shipmentHandler.DeleteShipment)

		shipments.POST("/:shipmentId/assign", operate, storageHandler.AssignBoxes)
		shipments.POST("/:shipmentId/release", manage, storageHandler.ReleaseBoxes)
	}

	settings := v1.Group("/settings")
	{
		settings.GET("", settingsHandler.GetSettings)
		settings.PUT("", manage, settingsHandler.UpdateSettings)
		settings.POST("/reset", manage, settingsHandler.ResetSettings)
	}
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	PhotoDir   string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8014"),
		PhotoDir:   getEnv("PHOTO_DIR", "./data/photos"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "storage"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
