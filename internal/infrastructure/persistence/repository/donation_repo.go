package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const donationColumns = `
	name, donor, donor_name, donor_type, email, company, date,
	amount, currency, mode_of_payment, payment_id, paid, invoice,
	docstatus, created_at, updated_at
`

// DonationRepository implements port.DonationRepository
type DonationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *sql.DB, logger *zap.Logger) port.DonationRepository {
	return &DonationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a donation. Name must already be assigned.
func (r *DonationRepository) Create(ctx context.Context, d *entity.Donation) error {
	now := time.Now()
	query := `
		INSERT INTO donations (
			name, donor, donor_name, donor_type, email, company, date,
			amount, currency, mode_of_payment, payment_id, paid, invoice,
			docstatus, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		d.Name,
		d.Donor,
		d.DonorName,
		d.DonorType,
		d.Email,
		d.Company,
		nullTime(d.Date),
		d.Amount,
		d.Currency,
		d.ModeOfPayment,
		d.PaymentID,
		d.Paid,
		d.Invoice,
		int(d.DocStatus),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create donation", zap.String("name", d.Name), zap.Error(err))
		return fmt.Errorf("failed to create donation: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// GetByName retrieves a donation, returning nil when it does not exist
func (r *DonationRepository) GetByName(ctx context.Context, name string) (*entity.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE name = ?`

	d, err := scanDonation(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get donation", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return d, nil
}

// Update saves every mutable field of a donation
func (r *DonationRepository) Update(ctx context.Context, d *entity.Donation) error {
	now := time.Now()
	query := `
		UPDATE donations SET
			donor = ?, donor_name = ?, donor_type = ?, email = ?, company = ?,
			date = ?, amount = ?, currency = ?, mode_of_payment = ?,
			payment_id = ?, paid = ?, invoice = ?, docstatus = ?, updated_at = ?
		WHERE name = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		d.Donor,
		d.DonorName,
		d.DonorType,
		d.Email,
		d.Company,
		nullTime(d.Date),
		d.Amount,
		d.Currency,
		d.ModeOfPayment,
		d.PaymentID,
		d.Paid,
		d.Invoice,
		int(d.DocStatus),
		now,
		d.Name,
	)
	if err != nil {
		r.logger.Error("Failed to update donation", zap.String("name", d.Name), zap.Error(err))
		return fmt.Errorf("failed to update donation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("donation not found: %s", d.Name)
	}

	d.UpdatedAt = now
	return nil
}

// List returns donations matching filter, newest first
func (r *DonationRepository) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Donor != "" {
		where = append(where, "donor = ?")
		args = append(args, filter.Donor)
	}
	if filter.DocStatus != nil {
		where = append(where, "docstatus = ?")
		args = append(args, int(*filter.DocStatus))
	}
	if filter.Paid != nil {
		where = append(where, "paid = ?")
		args = append(args, *filter.Paid)
	}
	if filter.WithoutInvoice {
		where = append(where, "invoice = ''")
	}

	query := `SELECT ` + donationColumns + ` FROM donations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, name DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list donations", zap.Error(err))
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*entity.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDonation(s scanner) (*entity.Donation, error) {
	var (
		d         entity.Donation
		date      sql.NullTime
		docStatus int
	)
	err := s.Scan(
		&d.Name,
		&d.Donor,
		&d.DonorName,
		&d.DonorType,
		&d.Email,
		&d.Company,
		&date,
		&d.Amount,
		&d.Currency,
		&d.ModeOfPayment,
		&d.PaymentID,
		&d.Paid,
		&d.Invoice,
		&docStatus,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		d.Date = date.Time
	}
	d.DocStatus = entity.DocStatus(docStatus)
	return &d, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
