package config

import (
	"github.com/garyjia/donation-desk/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
func (c *Config) ToContainerConfig() *container.Config {
	donorTypes := make([]container.DonorTypeConfig, 0, len(c.NonProfit.DonorTypes))
	for _, t := range c.NonProfit.DonorTypes {
		donorTypes = append(donorTypes, container.DonorTypeConfig{Name: t.Name, LinkedItem: t.LinkedItem})
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Lark: container.LarkConfig{
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
		},
		NonProfit: container.NonProfitConfig{
			Company:                        c.NonProfit.Company,
			DonationCompany:                c.NonProfit.DonationCompany,
			DonationDebitAccount:           c.NonProfit.DonationDebitAccount,
			DonationPaymentAccount:         c.NonProfit.DonationPaymentAccount,
			DefaultDonorType:               c.NonProfit.DefaultDonorType,
			AllowDonationInvoicing:         c.NonProfit.AllowDonationInvoicing,
			AutomateDonationInvoicing:      c.NonProfit.AutomateDonationInvoicing,
			AutomateDonationPaymentEntries: c.NonProfit.AutomateDonationPaymentEntries,
			CustomerGroup:                  c.NonProfit.CustomerGroup,
			Territory:                      c.NonProfit.Territory,
			DefaultCurrency:                c.NonProfit.DefaultCurrency,
			DonorTypes:                     donorTypes,
			SystemManagers:                 c.NonProfit.SystemManagers,
		},
		Razorpay: container.RazorpayConfig{
			WebhookSecret: c.Razorpay.WebhookSecret,
			WebhookPath:   c.Razorpay.WebhookPath,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
		},
		Storage: container.StorageConfig{
			Driver:     c.Storage.Driver,
			BaseDir:    c.Storage.BaseDir,
			S3Bucket:   c.Storage.S3Bucket,
			S3Region:   c.Storage.S3Region,
			S3Prefix:   c.Storage.S3Prefix,
			S3Endpoint: c.Storage.S3Endpoint,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		Worker: container.WorkerConfig{
			AutoInvoiceEnabled:      c.Worker.AutoInvoiceEnabled,
			AutoInvoicePollInterval: c.Worker.AutoInvoicePollInterval,
			AutoInvoiceBatchSize:    c.Worker.AutoInvoiceBatchSize,
		},
		I18n: container.I18nConfig{
			Language: c.I18n.Language,
		},
	}
}
