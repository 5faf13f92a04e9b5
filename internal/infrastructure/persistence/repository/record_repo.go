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

// CommentRepository implements port.CommentRepository
type CommentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB, logger *zap.Logger) port.CommentRepository {
	return &CommentRepository{db: db, logger: logger}
}

// Create attaches a comment to a document
func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	if c.CommentType == "" {
		c.CommentType = entity.CommentTypeComment
	}
	now := time.Now()

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO comments (reference_doctype, reference_name, comment_type, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ReferenceDoctype, c.ReferenceName, c.CommentType, c.Content, now)
	if err != nil {
		r.logger.Error("Failed to create comment",
			zap.String("reference_doctype", c.ReferenceDoctype),
			zap.String("reference_name", c.ReferenceName),
			zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	c.CreatedAt = now
	return nil
}

// ListByReference returns the comments on one document, oldest first
func (r *CommentRepository) ListByReference(ctx context.Context, doctype, name string) ([]*entity.Comment, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, `
		SELECT id, reference_doctype, reference_name, comment_type, content, created_at
		FROM comments
		WHERE reference_doctype = ? AND reference_name = ?
		ORDER BY id
	`, doctype, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.ReferenceDoctype, &c.ReferenceName, &c.CommentType, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// ErrorLogRepository implements port.ErrorLogRepository
type ErrorLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewErrorLogRepository creates a new error log repository
func NewErrorLogRepository(db *sql.DB, logger *zap.Logger) port.ErrorLogRepository {
	return &ErrorLogRepository{db: db, logger: logger}
}

// Create stores an error log. Name must already be assigned.
func (r *ErrorLogRepository) Create(ctx context.Context, l *entity.ErrorLog) error {
	now := time.Now()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO error_logs (name, title, message, created_at) VALUES (?, ?, ?, ?)`,
		l.Name, l.Title, l.Message, now)
	if err != nil {
		r.logger.Error("Failed to create error log", zap.String("title", l.Title), zap.Error(err))
		return fmt.Errorf("failed to create error log: %w", err)
	}
	l.CreatedAt = now
	return nil
}

// GetByName retrieves an error log, returning nil when it does not exist
func (r *ErrorLogRepository) GetByName(ctx context.Context, name string) (*entity.ErrorLog, error) {
	var l entity.ErrorLog
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT name, title, message, created_at FROM error_logs WHERE name = ?`, name,
	).Scan(&l.Name, &l.Title, &l.Message, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get error log: %w", err)
	}
	return &l, nil
}

// SettingsRepository implements port.SettingsRepository
type SettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) port.SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// Get returns the saved settings or nil when none were saved
func (r *SettingsRepository) Get(ctx context.Context) (*entity.NonProfitSettings, error) {
	var s entity.NonProfitSettings
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `
		SELECT company, donation_company, donation_debit_account, donation_payment_account,
			default_donor_type, allow_donation_invoicing, automate_donation_invoicing,
			automate_donation_payment_entries, customer_group, territory,
			default_currency, updated_at
		FROM nonprofit_settings WHERE id = 1
	`).Scan(
		&s.Company,
		&s.DonationCompany,
		&s.DonationDebitAccount,
		&s.DonationPaymentAccount,
		&s.DefaultDonorType,
		&s.AllowDonationInvoicing,
		&s.AutomateDonationInvoicing,
		&s.AutomateDonationPaymentEntries,
		&s.CustomerGroup,
		&s.Territory,
		&s.DefaultCurrency,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get settings", zap.Error(err))
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Save replaces the settings row
func (r *SettingsRepository) Save(ctx context.Context, s *entity.NonProfitSettings) error {
	now := time.Now()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO nonprofit_settings (
			id, company, donation_company, donation_debit_account, donation_payment_account,
			default_donor_type, allow_donation_invoicing, automate_donation_invoicing,
			automate_donation_payment_entries, customer_group, territory,
			default_currency, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company = excluded.company,
			donation_company = excluded.donation_company,
			donation_debit_account = excluded.donation_debit_account,
			donation_payment_account = excluded.donation_payment_account,
			default_donor_type = excluded.default_donor_type,
			allow_donation_invoicing = excluded.allow_donation_invoicing,
			automate_donation_invoicing = excluded.automate_donation_invoicing,
			automate_donation_payment_entries = excluded.automate_donation_payment_entries,
			customer_group = excluded.customer_group,
			territory = excluded.territory,
			default_currency = excluded.default_currency,
			updated_at = excluded.updated_at
	`,
		s.Company,
		s.DonationCompany,
		s.DonationDebitAccount,
		s.DonationPaymentAccount,
		s.DefaultDonorType,
		s.AllowDonationInvoicing,
		s.AutomateDonationInvoicing,
		s.AutomateDonationPaymentEntries,
		s.CustomerGroup,
		s.Territory,
		s.DefaultCurrency,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to save settings", zap.Error(err))
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.UpdatedAt = now
	return nil
}
