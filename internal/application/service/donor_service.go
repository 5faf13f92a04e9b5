package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
	"github.com/garyjia/donation-desk/pkg/utils"
)

// Publisher hands domain events to the dispatcher
type Publisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

// DonorService manages donors and their link to a customer
type DonorService interface {
	Create(ctx context.Context, donor *entity.Donor) error
	Get(ctx context.Context, name string) (*entity.Donor, error)

	// FindByEmail returns the most recent donor registered with email, or nil
	FindByEmail(ctx context.Context, email string) (*entity.Donor, error)

	// MakeCustomerAndLink creates an Individual customer from the donor and links it
	MakeCustomerAndLink(ctx context.Context, name string) (*entity.Customer, error)
}

type donorServiceImpl struct {
	donorRepo    port.DonorRepository
	customerRepo port.CustomerRepository
	settings     SettingsService
	series       port.NamingSeries
	txManager    port.TransactionManager
	publisher    Publisher
	logger       Logger
}

// NewDonorService creates a new DonorService
func NewDonorService(
	donorRepo port.DonorRepository,
	customerRepo port.CustomerRepository,
	settings SettingsService,
	series port.NamingSeries,
	txManager port.TransactionManager,
	publisher Publisher,
	logger Logger,
) DonorService {
	return &donorServiceImpl{
		donorRepo:    donorRepo,
		customerRepo: customerRepo,
		settings:     settings,
		series:       series,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *donorServiceImpl) Create(ctx context.Context, donor *entity.Donor) error {
	donor.Email = strings.TrimSpace(donor.Email)
	if donor.Email != "" {
		if err := utils.ValidateEmail(donor.Email); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidEmail, donor.Email)
		}
	}
	donor.DonorName = utils.SanitizeString(donor.DonorName)
	if donor.DonorName == "" {
		donor.DonorName = donor.Email
	}

	if donor.Name == "" {
		name, err := s.series.Next(ctx, entity.SeriesDonor)
		if err != nil {
			return fmt.Errorf("name donor: %w", err)
		}
		donor.Name = name
	}

	if err := s.donorRepo.Create(ctx, donor); err != nil {
		s.logger.Error("Failed to create donor", "error", err, "email", donor.Email)
		return fmt.Errorf("create donor: %w", err)
	}

	s.logger.Info("Donor created", "donor", donor.Name, "donor_type", donor.DonorType)
	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeDonorCreated, entity.DoctypeDonor, donor.Name, map[string]interface{}{
		"email": donor.Email,
	}))
	return nil
}

func (s *donorServiceImpl) Get(ctx context.Context, name string) (*entity.Donor, error) {
	donor, err := s.donorRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get donor: %w", err)
	}
	if donor == nil {
		return nil, fmt.Errorf("%w: donor %s", ErrNotFound, name)
	}
	return donor, nil
}

func (s *donorServiceImpl) FindByEmail(ctx context.Context, email string) (*entity.Donor, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	donor, err := s.donorRepo.GetLatestByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find donor by email: %w", err)
	}
	return donor, nil
}

func (s *donorServiceImpl) MakeCustomerAndLink(ctx context.Context, name string) (*entity.Customer, error) {
	var customer *entity.Customer

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		donor, err := s.Get(txCtx, name)
		if err != nil {
			return err
		}
		if donor.Customer != "" {
			return fmt.Errorf("%w: %s", ErrCustomerAlreadyLinked, donor.Customer)
		}

		settings, err := s.settings.Get(txCtx)
		if err != nil {
			return err
		}

		customerName, err := s.series.Next(txCtx, entity.SeriesCustomer)
		if err != nil {
			return fmt.Errorf("name customer: %w", err)
		}

		customer = &entity.Customer{
			Name:          customerName,
			CustomerName:  donor.DonorName,
			CustomerType:  entity.CustomerTypeIndividual,
			CustomerGroup: settings.CustomerGroup,
			Territory:     settings.Territory,
			Email:         donor.Email,
			Mobile:        donor.Mobile,
		}
		if err := s.customerRepo.Create(txCtx, customer); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}

		donor.Customer = customer.Name
		if err := s.donorRepo.Update(txCtx, donor); err != nil {
			return fmt.Errorf("link customer: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create and link customer", "error", err, "donor", name)
		return nil, err
	}

	s.logger.Info("Customer created and linked", "donor", name, "customer", customer.Name)
	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeCustomerLinked, entity.DoctypeDonor, name, map[string]interface{}{
		"customer": customer.Name,
	}))
	return customer, nil
}
