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

const donorColumns = `name, donor_name, donor_type, email, mobile, pan_number, customer, created_at, updated_at`

// DonorRepository implements port.DonorRepository
type DonorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDonorRepository creates a new donor repository
func NewDonorRepository(db *sql.DB, logger *zap.Logger) port.DonorRepository {
	return &DonorRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a donor. Name must already be assigned.
func (r *DonorRepository) Create(ctx context.Context, d *entity.Donor) error {
	now := time.Now()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO donors (`+donorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.Name,
		d.DonorName,
		d.DonorType,
		d.Email,
		d.Mobile,
		d.PANNumber,
		d.Customer,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create donor", zap.String("name", d.Name), zap.Error(err))
		return fmt.Errorf("failed to create donor: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// GetByName retrieves a donor, returning nil when it does not exist
func (r *DonorRepository) GetByName(ctx context.Context, name string) (*entity.Donor, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE name = ?`, name)

	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get donor", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

// GetLatestByEmail retrieves the newest donor registered with email
func (r *DonorRepository) GetLatestByEmail(ctx context.Context, email string) (*entity.Donor, error) {
	row := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE email = ? ORDER BY created_at DESC, name DESC LIMIT 1`, email)

	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get donor by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get donor by email: %w", err)
	}
	return d, nil
}

// Update saves every mutable field of a donor
func (r *DonorRepository) Update(ctx context.Context, d *entity.Donor) error {
	now := time.Now()
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		UPDATE donors SET
			donor_name = ?, donor_type = ?, email = ?, mobile = ?,
			pan_number = ?, customer = ?, updated_at = ?
		WHERE name = ?
	`,
		d.DonorName,
		d.DonorType,
		d.Email,
		d.Mobile,
		d.PANNumber,
		d.Customer,
		now,
		d.Name,
	)
	if err != nil {
		r.logger.Error("Failed to update donor", zap.String("name", d.Name), zap.Error(err))
		return fmt.Errorf("failed to update donor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("donor not found: %s", d.Name)
	}

	d.UpdatedAt = now
	return nil
}

func scanDonor(s scanner) (*entity.Donor, error) {
	var d entity.Donor
	err := s.Scan(
		&d.Name,
		&d.DonorName,
		&d.DonorType,
		&d.Email,
		&d.Mobile,
		&d.PANNumber,
		&d.Customer,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DonorTypeRepository implements port.DonorTypeRepository
type DonorTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDonorTypeRepository creates a new donor type repository
func NewDonorTypeRepository(db *sql.DB, logger *zap.Logger) port.DonorTypeRepository {
	return &DonorTypeRepository{db: db, logger: logger}
}

// Upsert creates the donor type or replaces its linked item
func (r *DonorTypeRepository) Upsert(ctx context.Context, t *entity.DonorType) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO donor_types (name, linked_item) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET linked_item = excluded.linked_item
	`, t.Name, t.LinkedItem)
	if err != nil {
		r.logger.Error("Failed to upsert donor type", zap.String("name", t.Name), zap.Error(err))
		return fmt.Errorf("failed to upsert donor type: %w", err)
	}
	return nil
}

// GetByName retrieves a donor type, returning nil when it does not exist
func (r *DonorTypeRepository) GetByName(ctx context.Context, name string) (*entity.DonorType, error) {
	var t entity.DonorType
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT name, linked_item FROM donor_types WHERE name = ?`, name,
	).Scan(&t.Name, &t.LinkedItem)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get donor type", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get donor type: %w", err)
	}
	return &t, nil
}

// CustomerRepository implements port.CustomerRepository
type CustomerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) port.CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

// Create inserts a customer. Name must already be assigned.
func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	now := time.Now()
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO customers (
			name, customer_name, customer_type, customer_group, territory,
			email, mobile, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.Name,
		c.CustomerName,
		c.CustomerType,
		c.CustomerGroup,
		c.Territory,
		c.Email,
		c.Mobile,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create customer", zap.String("name", c.Name), zap.Error(err))
		return fmt.Errorf("failed to create customer: %w", err)
	}

	c.CreatedAt = now
	return nil
}

// GetByName retrieves a customer, returning nil when it does not exist
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*entity.Customer, error) {
	var c entity.Customer
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, `
		SELECT name, customer_name, customer_type, customer_group, territory,
			email, mobile, created_at
		FROM customers WHERE name = ?
	`, name).Scan(
		&c.Name,
		&c.CustomerName,
		&c.CustomerType,
		&c.CustomerGroup,
		&c.Territory,
		&c.Email,
		&c.Mobile,
		&c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get customer", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}
