package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Lark      LarkConfig      `mapstructure:"lark"`
	NonProfit NonProfitConfig `mapstructure:"nonprofit"`
	Razorpay  RazorpayConfig  `mapstructure:"razorpay"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	I18n      I18nConfig      `mapstructure:"i18n"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// DonorTypeConfig is one donor type seeded on first start
type DonorTypeConfig struct {
	Name       string `mapstructure:"name"`
	LinkedItem string `mapstructure:"linked_item"`
}

// NonProfitConfig holds the initial non-profit settings
type NonProfitConfig struct {
	Company                        string            `mapstructure:"company"`
	DonationCompany                string            `mapstructure:"donation_company"`
	DonationDebitAccount           string            `mapstructure:"donation_debit_account"`
	DonationPaymentAccount         string            `mapstructure:"donation_payment_account"`
	DefaultDonorType               string            `mapstructure:"default_donor_type"`
	AllowDonationInvoicing         bool              `mapstructure:"allow_donation_invoicing"`
	AutomateDonationInvoicing      bool              `mapstructure:"automate_donation_invoicing"`
	AutomateDonationPaymentEntries bool              `mapstructure:"automate_donation_payment_entries"`
	CustomerGroup                  string            `mapstructure:"customer_group"`
	Territory                      string            `mapstructure:"territory"`
	DefaultCurrency                string            `mapstructure:"default_currency"`
	SystemManagers                 []string          `mapstructure:"system_managers"`
	DonorTypes                     []DonorTypeConfig `mapstructure:"donor_types"`
}

// RazorpayConfig holds payment gateway webhook configuration
type RazorpayConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
	WebhookPath   string `mapstructure:"webhook_path"`
}

// AuthConfig holds session configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	BaseDir    string `mapstructure:"base_dir"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Region   string `mapstructure:"s3_region"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	AutoInvoiceEnabled      bool          `mapstructure:"auto_invoice_enabled"`
	AutoInvoicePollInterval time.Duration `mapstructure:"auto_invoice_poll_interval"`
	AutoInvoiceBatchSize    int           `mapstructure:"auto_invoice_batch_size"`
}

// I18nConfig holds localization configuration
type I18nConfig struct {
	Language string `mapstructure:"language"`
}

// Load loads configuration from file and environment variables. An empty
// configPath uses defaults and the environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/donations.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// Non-profit defaults
	v.SetDefault("nonprofit.customer_group", "Individual")
	v.SetDefault("nonprofit.territory", "All Territories")
	v.SetDefault("nonprofit.default_currency", "INR")

	v.SetDefault("razorpay.webhook_path", "/webhooks/razorpay")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.base_dir", "data/files")
	v.SetDefault("storage.s3_region", "ap-south-1")

	v.SetDefault("worker.auto_invoice_enabled", true)
	v.SetDefault("worker.auto_invoice_poll_interval", time.Minute)
	v.SetDefault("worker.auto_invoice_batch_size", 20)

	v.SetDefault("i18n.language", "en")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("razorpay.webhook_secret", "RAZORPAY_WEBHOOK_SECRET")
	_ = v.BindEnv("auth.jwt_secret", "DESK_JWT_SECRET")
	_ = v.BindEnv("nonprofit.company", "NONPROFIT_COMPANY")
	_ = v.BindEnv("storage.s3_bucket", "DESK_S3_BUCKET")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if (c.Lark.AppID == "") != (c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret must be set together")
	}
	if !strings.HasPrefix(c.Razorpay.WebhookPath, "/") {
		return fmt.Errorf("razorpay.webhook_path must start with /")
	}
	if c.Storage.Driver != "local" && c.Storage.Driver != "s3" {
		return fmt.Errorf("storage.driver must be local or s3, got %q", c.Storage.Driver)
	}
	for i, t := range c.NonProfit.DonorTypes {
		if t.Name == "" {
			return fmt.Errorf("nonprofit.donor_types[%d].name is required", i)
		}
	}
	return nil
}
