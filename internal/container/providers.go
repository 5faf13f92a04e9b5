package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/dispatcher"
	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
	"github.com/garyjia/donation-desk/internal/infrastructure/export"
	infraLark "github.com/garyjia/donation-desk/internal/infrastructure/external/lark"
	"github.com/garyjia/donation-desk/internal/infrastructure/persistence/repository"
	"github.com/garyjia/donation-desk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/donation-desk/internal/infrastructure/storage"
	"github.com/garyjia/donation-desk/internal/infrastructure/worker"
	"github.com/garyjia/donation-desk/internal/webhook"
	"github.com/garyjia/donation-desk/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.TxManager
	Series         *sqlite.NamingSeries
}

// ExternalBundle holds clients of outside systems.
type ExternalBundle struct {
	// Lark is nil when no credentials are configured
	Lark      *infraLark.SDKClient
	Messenger port.MessageSender
	Verifier  *webhook.Verifier
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	FileStorage port.FileStorage
	Register    port.RegisterWriter
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewTxManager(db.DB, logger),
		Series:         sqlite.NewNamingSeries(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Donation:      repository.NewDonationRepository(db.DB, logger),
		Donor:         repository.NewDonorRepository(db.DB, logger),
		DonorType:     repository.NewDonorTypeRepository(db.DB, logger),
		Customer:      repository.NewCustomerRepository(db.DB, logger),
		SalesInvoice:  repository.NewSalesInvoiceRepository(db.DB, logger),
		PaymentEntry:  repository.NewPaymentEntryRepository(db.DB, logger),
		ModeOfPayment: repository.NewModeOfPaymentRepository(db.DB, logger),
		Comment:       repository.NewCommentRepository(db.DB, logger),
		ErrorLog:      repository.NewErrorLogRepository(db.DB, logger),
		Settings:      repository.NewSettingsRepository(db.DB, logger),
	}, nil
}

// ProvideExternalClients creates the Lark messenger and the webhook verifier.
func ProvideExternalClients(cfg *Config, logger *zap.Logger) (*ExternalBundle, error) {
	bundle := &ExternalBundle{
		Verifier: webhook.NewVerifier(cfg.Razorpay.WebhookSecret, logger),
	}

	larkCfg := infraLark.Config{AppID: cfg.Lark.AppID, AppSecret: cfg.Lark.AppSecret}
	if larkCfg.Enabled() {
		bundle.Lark = infraLark.NewSDKClient(larkCfg, logger)
		bundle.Messenger = infraLark.NewMessenger(bundle.Lark, logger)
	} else {
		logger.Info("Lark credentials not configured, failure alerts go to the log")
		bundle.Messenger = infraLark.NewLogSender(logger)
	}

	return bundle, nil
}

// ProvideStorage creates file storage for the configured driver and the register writer.
func ProvideStorage(ctx context.Context, cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	bundle := &StorageBundle{Register: export.NewExcelRegister(logger)}
	switch cfg.Driver {
	case StorageDriverS3:
		s3Storage, err := storage.NewS3FileStorage(ctx, storage.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		bundle.FileStorage = s3Storage
		logger.Info("Archiving exports to S3", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
	default:
		bundle.FileStorage = storage.NewLocalFileStorage(cfg.BaseDir, logger)
	}
	return bundle, nil
}

// ProvideDispatcher creates the domain event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	return dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger})), nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos          *RepositoryBundle
	Database       *DatabaseBundle
	External       *ExternalBundle
	Storage        *StorageBundle
	Publisher      service.Publisher
	SystemManagers []string
	Logger         *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.Database == nil {
		return nil, fmt.Errorf("repositories and database are required")
	}
	if deps.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	log := &zapLoggerAdapter{logger: deps.Logger}
	repos := deps.Repos
	tx := deps.Database.TransactionMgr

	settings := service.NewSettingsService(repos.Settings, repos.DonorType, tx, log)
	donors := service.NewDonorService(repos.Donor, repos.Customer, settings, deps.Database.Series, tx, deps.Publisher, log)
	donations := service.NewDonationService(
		repos.Donation,
		repos.DonorType,
		repos.SalesInvoice,
		repos.PaymentEntry,
		donors,
		settings,
		deps.Database.Series,
		tx,
		deps.Publisher,
		log,
	)

	return &ServiceBundle{
		Settings:  settings,
		Donors:    donors,
		Donations: donations,
		Capture: service.NewCaptureService(
			deps.External.Verifier,
			donors,
			donations,
			settings,
			repos.ModeOfPayment,
			repos.Comment,
			repos.ErrorLog,
			deps.Publisher,
			log,
		),
		Notification: service.NewNotificationService(deps.External.Messenger, deps.SystemManagers, log),
		Export:       service.NewExportService(repos.Donation, settings, deps.Storage.Register, deps.Storage.FileStorage, log),
	}, nil
}

// SeedSettings stores the configured settings and donor types when the
// database has none yet.
func SeedSettings(ctx context.Context, settings service.SettingsService, cfg *NonProfitConfig) error {
	types := make([]entity.DonorType, 0, len(cfg.DonorTypes))
	for _, t := range cfg.DonorTypes {
		types = append(types, entity.DonorType{Name: t.Name, LinkedItem: t.LinkedItem})
	}

	return settings.Seed(ctx, &entity.NonProfitSettings{
		Company:                        cfg.Company,
		DonationCompany:                cfg.DonationCompany,
		DonationDebitAccount:           cfg.DonationDebitAccount,
		DonationPaymentAccount:         cfg.DonationPaymentAccount,
		DefaultDonorType:               cfg.DefaultDonorType,
		AllowDonationInvoicing:         cfg.AllowDonationInvoicing,
		AutomateDonationInvoicing:      cfg.AutomateDonationInvoicing,
		AutomateDonationPaymentEntries: cfg.AutomateDonationPaymentEntries,
		CustomerGroup:                  cfg.CustomerGroup,
		Territory:                      cfg.Territory,
		DefaultCurrency:                cfg.DefaultCurrency,
	}, types)
}

// RegisterSubscriptions wires event handlers to the dispatcher.
func RegisterSubscriptions(d dispatcher.Dispatcher, services *ServiceBundle, logger *zap.Logger) {
	d.SubscribeNamed(event.TypeWebhookFailed, "notify_system_managers", func(ctx context.Context, evt *event.Event) error {
		services.Notification.NotifyWebhookFailure(ctx, &entity.ErrorLog{
			Name:    evt.DocName,
			Title:   evt.GetPayloadString("title"),
			Message: evt.GetPayloadString("message"),
		})
		return nil
	})

	d.SubscribeNamed(event.TypeInvoiceGenerated, "audit_log", func(ctx context.Context, evt *event.Event) error {
		logger.Info("Donation invoiced",
			zap.String("invoice", evt.DocName),
			zap.String("donation", evt.GetPayloadString("donation")),
			zap.String("correlation_id", evt.CorrelationID))
		return nil
	})

	d.SubscribeNamed(event.TypeCustomerLinked, "audit_log", func(ctx context.Context, evt *event.Event) error {
		logger.Info("Customer linked to donor",
			zap.String("donor", evt.DocName),
			zap.String("customer", evt.GetPayloadString("customer")))
		return nil
	})
}

// WorkerDeps holds dependencies required for creating workers.
type WorkerDeps struct {
	Services  *ServiceBundle
	WorkerCfg *WorkerConfig
	Logger    *zap.Logger
}

// ProvideWorkers creates the worker manager with every enabled worker registered.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, error) {
	if deps == nil || deps.Services == nil || deps.WorkerCfg == nil {
		return nil, fmt.Errorf("worker dependencies are required")
	}

	manager := worker.NewWorkerManager(deps.Logger)

	if deps.WorkerCfg.AutoInvoiceEnabled {
		manager.Register(worker.NewAutoInvoiceWorker(
			worker.AutoInvoiceConfig{
				PollInterval: deps.WorkerCfg.AutoInvoicePollInterval,
				BatchSize:    deps.WorkerCfg.AutoInvoiceBatchSize,
			},
			deps.Services.Donations,
			deps.Services.Settings,
			deps.Logger,
		))
	}

	return manager, nil
}
