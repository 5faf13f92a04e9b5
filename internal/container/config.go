// Package container provides dependency injection and lifecycle management
// for the donation desk.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Database  DatabaseConfig
	Lark      LarkConfig
	NonProfit NonProfitConfig
	Razorpay  RazorpayConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Server    ServerConfig
	Worker    WorkerConfig
	I18n      I18nConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the migrations compiled into the binary
	MigrationsDir string
}

// LarkConfig holds Lark API settings. Without credentials, failure alerts
// are written to the log instead.
type LarkConfig struct {
	AppID     string
	AppSecret string
}

// DonorTypeConfig seeds one donor type
type DonorTypeConfig struct {
	Name       string
	LinkedItem string
}

// NonProfitConfig seeds the non-profit settings on first start.
type NonProfitConfig struct {
	Company                        string
	DonationCompany                string
	DonationDebitAccount           string
	DonationPaymentAccount         string
	DefaultDonorType               string
	AllowDonationInvoicing         bool
	AutomateDonationInvoicing      bool
	AutomateDonationPaymentEntries bool
	CustomerGroup                  string
	Territory                      string
	DefaultCurrency                string
	DonorTypes                     []DonorTypeConfig

	// SystemManagers receive webhook failure alerts
	SystemManagers []string
}

// RazorpayConfig holds payment webhook settings.
type RazorpayConfig struct {
	WebhookSecret string
	WebhookPath   string
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret signs desk sessions; empty runs every request as Administrator
	JWTSecret string
}

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// StorageConfig holds file storage settings.
type StorageConfig struct {
	Driver string
	// BaseDir holds archived donation registers for the local driver
	BaseDir    string
	S3Bucket   string
	S3Region   string
	S3Prefix   string
	S3Endpoint string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	AutoInvoiceEnabled      bool
	AutoInvoicePollInterval time.Duration
	AutoInvoiceBatchSize    int
}

// I18nConfig selects the desk language.
type I18nConfig struct {
	Language string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/donations.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		NonProfit: NonProfitConfig{
			CustomerGroup:   "Individual",
			Territory:       "All Territories",
			DefaultCurrency: "INR",
		},
		Razorpay: RazorpayConfig{
			WebhookPath: "/webhooks/razorpay",
		},
		Storage: StorageConfig{
			Driver:  StorageDriverLocal,
			BaseDir: "data/files",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Worker: WorkerConfig{
			AutoInvoiceEnabled:      true,
			AutoInvoicePollInterval: time.Minute,
			AutoInvoiceBatchSize:    20,
		},
		I18n: I18nConfig{
			Language: "en",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if (c.Lark.AppID == "") != (c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret must be set together")
	}
	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir is required")
		}
	case StorageDriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Worker.AutoInvoiceEnabled && c.Worker.AutoInvoicePollInterval <= 0 {
		return fmt.Errorf("worker.auto_invoice_poll_interval must be positive")
	}
	return nil
}
