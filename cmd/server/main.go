package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/config"
	"github.com/garyjia/donation-desk/internal/container"
	"github.com/garyjia/donation-desk/internal/form"
	httpapi "github.com/garyjia/donation-desk/internal/interfaces/http"
	"github.com/garyjia/donation-desk/internal/webhook"
	"github.com/garyjia/donation-desk/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file (empty for env only)")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := gotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Donation desk stopped with error", zap.Error(err))
	}
	logger.Info("Server exited successfully")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting donation desk",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Container close failed", zap.Error(err))
		}
	}()

	kv := c.KVLogger()
	services := c.Services()

	var translator form.Translator = form.Identity{}
	if catalog, err := form.NewCatalog(cfg.I18n.Language); err != nil {
		logger.Error("Unknown desk language, falling back to English",
			zap.String("language", cfg.I18n.Language), zap.Error(err))
	} else {
		translator = catalog
	}

	methods := httpapi.NewMethodRouter(services.Donations, services.Donors, kv)
	registry := form.NewRegistry(kv)
	form.NewDonationController(methods, translator, kv).Register(registry)

	auth := httpapi.NewAuth(cfg.Auth.JWTSecret, kv)
	if !auth.Enabled() {
		logger.Warn("auth.jwt_secret not set, every desk request runs as Administrator")
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		WebhookPath:  cfg.Razorpay.WebhookPath,
	}, httpapi.Dependencies{
		Donations: services.Donations,
		Donors:    services.Donors,
		Settings:  services.Settings,
		Export:    services.Export,
		Registry:  registry,
		Methods:   methods,
		Auth:      auth,
		Webhook:   webhook.NewHandler(services.Capture, logger).Handle,
		Health:    c.HealthCheck,
	}, kv)

	return server.Start(ctx)
}
