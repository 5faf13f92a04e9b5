package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/dispatcher"
	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/infrastructure/worker"
	"github.com/garyjia/donation-desk/internal/webhook"
	"github.com/garyjia/donation-desk/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *DatabaseBundle
	repositories *RepositoryBundle

	// Infrastructure - External and storage
	external *ExternalBundle
	storage  *StorageBundle

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Workers
	workers *worker.WorkerManager

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Donation      port.DonationRepository
	Donor         port.DonorRepository
	DonorType     port.DonorTypeRepository
	Customer      port.CustomerRepository
	SalesInvoice  port.SalesInvoiceRepository
	PaymentEntry  port.PaymentEntryRepository
	ModeOfPayment port.ModeOfPaymentRepository
	Comment       port.CommentRepository
	ErrorLog      port.ErrorLogRepository
	Settings      port.SettingsRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Settings     service.SettingsService
	Donors       service.DonorService
	Donations    service.DonationService
	Capture      service.CaptureService
	Notification service.NotificationService
	Export       service.ExportService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and begins processing.
// Components are initialized in dependency order:
// 1. Database and repositories
// 2. External clients (Lark, webhook verifier) and storage
// 3. Event dispatcher
// 4. Application services, seeded settings and event subscriptions
// 5. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initExternal(); err != nil {
		return fmt.Errorf("failed to initialize external clients: %w", err)
	}
	c.logger.Info("External clients and storage initialized")

	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp
	c.logger.Info("Dispatcher initialized")

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	if err := c.initWorkers(); err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.logger.Info("Workers initialized and started")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		} else {
			c.logger.Info("Workers stopped")
		}
	}

	// waits for in-flight async handlers such as failure alerts
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.db != nil {
		if err := c.db.DB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	mark := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		mark("database", false, "not initialized")
	default:
		if err := c.db.DB.PingContext(ctx); err != nil {
			mark("database", false, fmt.Sprintf("ping failed: %v", err))
		} else {
			mark("database", true, "")
		}
	}

	if c.workers != nil {
		mark("workers", c.workers.IsRunning(), fmt.Sprintf("worker count: %d", c.workers.GetWorkerCount()))
	} else {
		mark("workers", false, "not initialized")
	}

	mark("dispatcher", c.dispatcher != nil, "")
	mark("services", c.services != nil, "")

	if c.external != nil && c.external.Lark == nil {
		status.Components["lark"] = ComponentHealth{Healthy: true, Message: "disabled, alerts go to the log"}
	}

	return status
}

// HealthCheck reports an error when any component is unhealthy.
func (c *Container) HealthCheck(ctx context.Context) error {
	status := c.Health(ctx)
	if status.Overall {
		return nil
	}
	for name, comp := range status.Components {
		if !comp.Healthy {
			return fmt.Errorf("%s unhealthy: %s", name, comp.Message)
		}
	}
	return fmt.Errorf("unhealthy")
}

func (c *Container) initDatabase() error {
	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	repos, err := ProvideRepositories(db.DB, c.logger)
	if err != nil {
		db.DB.Close()
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initExternal() error {
	external, err := ProvideExternalClients(c.config, c.logger)
	if err != nil {
		return err
	}
	c.external = external

	storage, err := ProvideStorage(c.ctx, &c.config.Storage, c.logger)
	if err != nil {
		return err
	}
	c.storage = storage
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:          c.repositories,
		Database:       c.db,
		External:       c.external,
		Storage:        c.storage,
		Publisher:      c.dispatcher,
		SystemManagers: c.config.NonProfit.SystemManagers,
		Logger:         c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services

	if err := SeedSettings(c.ctx, services.Settings, &c.config.NonProfit); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	RegisterSubscriptions(c.dispatcher, services, c.logger)
	return nil
}

func (c *Container) initWorkers() error {
	workers, err := ProvideWorkers(&WorkerDeps{
		Services:  c.services,
		WorkerCfg: &c.config.Worker,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.workers = workers

	if err := c.workers.StartAll(c.ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	return nil
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Database returns the underlying database.
func (c *Container) Database() *database.DB {
	if c.db == nil {
		return nil
	}
	return c.db.DB
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Verifier returns the payment webhook verifier.
func (c *Container) Verifier() *webhook.Verifier {
	return c.external.Verifier
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// KVLogger returns a key-value logger over the container's zap logger.
func (c *Container) KVLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces used
// by the application layers.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
