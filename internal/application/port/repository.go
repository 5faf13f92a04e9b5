package port

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// DonationRepository defines persistence operations for Donation
type DonationRepository interface {
	Create(ctx context.Context, donation *entity.Donation) error
	GetByName(ctx context.Context, name string) (*entity.Donation, error)
	Update(ctx context.Context, donation *entity.Donation) error
	List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error)
}

// DonorRepository defines persistence operations for Donor
type DonorRepository interface {
	Create(ctx context.Context, donor *entity.Donor) error
	GetByName(ctx context.Context, name string) (*entity.Donor, error)

	// GetLatestByEmail returns the most recently created donor with email
	GetLatestByEmail(ctx context.Context, email string) (*entity.Donor, error)

	Update(ctx context.Context, donor *entity.Donor) error
}

// DonorTypeRepository defines persistence operations for DonorType
type DonorTypeRepository interface {
	Upsert(ctx context.Context, donorType *entity.DonorType) error
	GetByName(ctx context.Context, name string) (*entity.DonorType, error)
}

// CustomerRepository defines persistence operations for Customer
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByName(ctx context.Context, name string) (*entity.Customer, error)
}

// SalesInvoiceRepository defines persistence operations for SalesInvoice and its items
type SalesInvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.SalesInvoice) error
	GetByName(ctx context.Context, name string) (*entity.SalesInvoice, error)
	UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error
}

// PaymentEntryRepository defines persistence operations for PaymentEntry
type PaymentEntryRepository interface {
	Create(ctx context.Context, entry *entity.PaymentEntry) error
	GetByName(ctx context.Context, name string) (*entity.PaymentEntry, error)
	UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error
}

// ModeOfPaymentRepository defines persistence operations for ModeOfPayment
type ModeOfPaymentRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, mode *entity.ModeOfPayment) error
}

// CommentRepository stores comments attached to documents
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	ListByReference(ctx context.Context, doctype, name string) ([]*entity.Comment, error)
}

// ErrorLogRepository stores processing failures for later inspection
type ErrorLogRepository interface {
	Create(ctx context.Context, log *entity.ErrorLog) error
	GetByName(ctx context.Context, name string) (*entity.ErrorLog, error)
}

// SettingsRepository persists the single NonProfitSettings row
type SettingsRepository interface {
	// Get returns nil, nil when settings were never saved
	Get(ctx context.Context) (*entity.NonProfitSettings, error)
	Save(ctx context.Context, settings *entity.NonProfitSettings) error
}

// NamingSeries hands out document names such as DON-2026-00001
type NamingSeries interface {
	Next(ctx context.Context, series string) (string, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
