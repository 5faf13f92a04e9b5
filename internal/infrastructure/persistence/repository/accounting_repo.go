package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SalesInvoiceRepository implements port.SalesInvoiceRepository
type SalesInvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSalesInvoiceRepository creates a new sales invoice repository
func NewSalesInvoiceRepository(db *sql.DB, logger *zap.Logger) port.SalesInvoiceRepository {
	return &SalesInvoiceRepository{db: db, logger: logger}
}

// Create inserts the invoice header and its items. Callers that need both
// writes to be atomic run Create inside a transaction.
func (r *SalesInvoiceRepository) Create(ctx context.Context, inv *entity.SalesInvoice) error {
	now := time.Now()
	exec := sqlite.ExecutorFor(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO sales_invoices (
			name, customer, debit_to, currency, company, is_pos,
			posting_date, grand_total, docstatus, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.Name,
		inv.Customer,
		inv.DebitTo,
		inv.Currency,
		inv.Company,
		inv.IsPOS,
		inv.PostingDate,
		inv.GrandTotal,
		int(inv.DocStatus),
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create sales invoice", zap.String("name", inv.Name), zap.Error(err))
		return fmt.Errorf("failed to create sales invoice: %w", err)
	}

	for i, item := range inv.Items {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO sales_invoice_items (invoice, idx, item_code, rate, qty, amount)
			VALUES (?, ?, ?, ?, ?, ?)
		`, inv.Name, i+1, item.ItemCode, item.Rate, item.Qty, item.Amount)
		if err != nil {
			r.logger.Error("Failed to create sales invoice item",
				zap.String("invoice", inv.Name),
				zap.Int("idx", i+1),
				zap.Error(err))
			return fmt.Errorf("failed to create sales invoice item: %w", err)
		}
	}

	inv.CreatedAt = now
	return nil
}

// GetByName retrieves an invoice with its items, returning nil when it does not exist
func (r *SalesInvoiceRepository) GetByName(ctx context.Context, name string) (*entity.SalesInvoice, error) {
	exec := sqlite.ExecutorFor(ctx, r.db)

	var (
		inv       entity.SalesInvoice
		docStatus int
	)
	err := exec.QueryRowContext(ctx, `
		SELECT name, customer, debit_to, currency, company, is_pos,
			posting_date, grand_total, docstatus, created_at
		FROM sales_invoices WHERE name = ?
	`, name).Scan(
		&inv.Name,
		&inv.Customer,
		&inv.DebitTo,
		&inv.Currency,
		&inv.Company,
		&inv.IsPOS,
		&inv.PostingDate,
		&inv.GrandTotal,
		&docStatus,
		&inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sales invoice", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get sales invoice: %w", err)
	}
	inv.DocStatus = entity.DocStatus(docStatus)

	rows, err := exec.QueryContext(ctx, `
		SELECT item_code, rate, qty, amount
		FROM sales_invoice_items WHERE invoice = ? ORDER BY idx
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.SalesInvoiceItem
		if err := rows.Scan(&item.ItemCode, &item.Rate, &item.Qty, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan sales invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales invoice items: %w", err)
	}

	return &inv, nil
}

// UpdateDocStatus moves an invoice to status
func (r *SalesInvoiceRepository) UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error {
	return updateDocStatus(ctx, sqlite.ExecutorFor(ctx, r.db), r.logger, "sales_invoices", name, status)
}

// PaymentEntryRepository implements port.PaymentEntryRepository
type PaymentEntryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentEntryRepository creates a new payment entry repository
func NewPaymentEntryRepository(db *sql.DB, logger *zap.Logger) port.PaymentEntryRepository {
	return &PaymentEntryRepository{db: db, logger: logger}
}

// Create inserts a payment entry. Name must already be assigned.
func (r *PaymentEntryRepository) Create(ctx context.Context, pe *entity.PaymentEntry) error {
	now := time.Now()

	var refDate sql.NullTime
	if pe.ReferenceDate != nil {
		refDate = sql.NullTime{Time: *pe.ReferenceDate, Valid: true}
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO payment_entries (
			name, payment_type, party_type, party, reference_doctype, reference_name,
			paid_amount, paid_to, posting_date, reference_no, reference_date,
			docstatus, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pe.Name,
		pe.PaymentType,
		pe.PartyType,
		pe.Party,
		pe.ReferenceDoctype,
		pe.ReferenceName,
		pe.PaidAmount,
		pe.PaidTo,
		pe.PostingDate,
		pe.ReferenceNo,
		refDate,
		int(pe.DocStatus),
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create payment entry", zap.String("name", pe.Name), zap.Error(err))
		return fmt.Errorf("failed to create payment entry: %w", err)
	}

	pe.CreatedAt = now
	return nil
}

// GetByName retrieves a payment entry, returning nil when it does not exist
func (r *PaymentEntryRepository) GetByName(ctx context.Context, name string) (*entity.PaymentEntry, error) {
	var (
		pe        entity.PaymentEntry
		refDate   sql.NullTime
		docStatus int
	)
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `
		SELECT name, payment_type, party_type, party, reference_doctype, reference_name,
			paid_amount, paid_to, posting_date, reference_no, reference_date,
			docstatus, created_at
		FROM payment_entries WHERE name = ?
	`, name).Scan(
		&pe.Name,
		&pe.PaymentType,
		&pe.PartyType,
		&pe.Party,
		&pe.ReferenceDoctype,
		&pe.ReferenceName,
		&pe.PaidAmount,
		&pe.PaidTo,
		&pe.PostingDate,
		&pe.ReferenceNo,
		&refDate,
		&docStatus,
		&pe.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get payment entry", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get payment entry: %w", err)
	}

	if refDate.Valid {
		pe.ReferenceDate = &refDate.Time
	}
	pe.DocStatus = entity.DocStatus(docStatus)
	return &pe, nil
}

// UpdateDocStatus moves a payment entry to status
func (r *PaymentEntryRepository) UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error {
	return updateDocStatus(ctx, sqlite.ExecutorFor(ctx, r.db), r.logger, "payment_entries", name, status)
}

// table is always one of the constant names above
func updateDocStatus(ctx context.Context, exec sqlite.Executor, logger *zap.Logger, table, name string, status entity.DocStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE `+table+` SET docstatus = ? WHERE name = ?`, int(status), name)
	if err != nil {
		logger.Error("Failed to update docstatus",
			zap.String("table", table),
			zap.String("name", name),
			zap.Error(err))
		return fmt.Errorf("failed to update %s docstatus: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %s", table, name)
	}
	return nil
}

// ModeOfPaymentRepository implements port.ModeOfPaymentRepository
type ModeOfPaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewModeOfPaymentRepository creates a new mode of payment repository
func NewModeOfPaymentRepository(db *sql.DB, logger *zap.Logger) port.ModeOfPaymentRepository {
	return &ModeOfPaymentRepository{db: db, logger: logger}
}

// Exists reports whether a mode of payment named name exists
func (r *ModeOfPaymentRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM modes_of_payment WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check mode of payment: %w", err)
	}
	return count > 0, nil
}

// Create inserts a mode of payment
func (r *ModeOfPaymentRepository) Create(ctx context.Context, m *entity.ModeOfPayment) error {
	now := time.Now()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO modes_of_payment (name, created_at) VALUES (?, ?)`, m.Name, now)
	if err != nil {
		r.logger.Error("Failed to create mode of payment", zap.String("name", m.Name), zap.Error(err))
		return fmt.Errorf("failed to create mode of payment: %w", err)
	}
	m.CreatedAt = now
	return nil
}
