package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
	"github.com/garyjia/donation-desk/internal/domain/workflow"
	"github.com/garyjia/donation-desk/pkg/utils"
)

// InvoiceOptions controls GenerateInvoice
type InvoiceOptions struct {
	// Save persists the donation with the linked invoice
	Save bool
	// WithPaymentEntry also records the payment against the new invoice
	WithPaymentEntry bool
}

// InvoiceResult is what GenerateInvoice produced
type InvoiceResult struct {
	Donation     *entity.Donation     `json:"donation"`
	Invoice      *entity.SalesInvoice `json:"invoice"`
	PaymentEntry *entity.PaymentEntry `json:"payment_entry,omitempty"`
}

// DonationService manages the donation lifecycle
type DonationService interface {
	// Create validates and inserts a draft donation
	Create(ctx context.Context, donation *entity.Donation) error

	// Submit moves a draft donation to submitted
	Submit(ctx context.Context, name string) (*entity.Donation, error)

	Get(ctx context.Context, name string) (*entity.Donation, error)
	List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error)

	// GenerateInvoice creates and submits a sales invoice for a submitted, paid donation
	GenerateInvoice(ctx context.Context, name string, opts InvoiceOptions) (*InvoiceResult, error)

	// OnPaymentAuthorized marks the donation paid and invoices it when settings automate invoicing
	OnPaymentAuthorized(ctx context.Context, name string, status string) (*entity.Donation, error)
}

type donationServiceImpl struct {
	donationRepo  port.DonationRepository
	donorTypeRepo port.DonorTypeRepository
	invoiceRepo   port.SalesInvoiceRepository
	paymentRepo   port.PaymentEntryRepository
	donors        DonorService
	settings      SettingsService
	series        port.NamingSeries
	txManager     port.TransactionManager
	publisher     Publisher
	logger        Logger
	now           func() time.Time
}

// NewDonationService creates a new DonationService
func NewDonationService(
	donationRepo port.DonationRepository,
	donorTypeRepo port.DonorTypeRepository,
	invoiceRepo port.SalesInvoiceRepository,
	paymentRepo port.PaymentEntryRepository,
	donors DonorService,
	settings SettingsService,
	series port.NamingSeries,
	txManager port.TransactionManager,
	publisher Publisher,
	logger Logger,
) DonationService {
	return &donationServiceImpl{
		donationRepo:  donationRepo,
		donorTypeRepo: donorTypeRepo,
		invoiceRepo:   invoiceRepo,
		paymentRepo:   paymentRepo,
		donors:        donors,
		settings:      settings,
		series:        series,
		txManager:     txManager,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *donationServiceImpl) Create(ctx context.Context, donation *entity.Donation) error {
	if err := utils.ValidateAmount(donation.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		donor, err := s.resolveDonor(txCtx, donation)
		if err != nil {
			return err
		}

		donation.Donor = donor.Name
		if donation.DonorName == "" {
			donation.DonorName = donor.DonorName
		}
		if donation.Email == "" {
			donation.Email = donor.Email
		}
		if donation.DonorType == "" {
			donation.DonorType = donor.DonorType
		}

		if donation.Company == "" {
			settings, err := s.settings.Get(txCtx)
			if err != nil {
				return err
			}
			donation.Company = settings.CompanyForDonations()
		}
		if donation.Date.IsZero() {
			donation.Date = s.now()
		}

		name, err := s.series.Next(txCtx, entity.SeriesDonation)
		if err != nil {
			return fmt.Errorf("name donation: %w", err)
		}
		donation.Name = name
		donation.DocStatus = entity.DocStatusDraft
		donation.Invoice = ""

		if err := s.donationRepo.Create(txCtx, donation); err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create donation", "error", err, "donor", donation.Donor)
		return err
	}

	s.logger.Info("Donation created", "donation", donation.Name, "donor", donation.Donor, "amount", donation.Amount)
	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeDonationCreated, entity.DoctypeDonation, donation.Name, map[string]interface{}{
		"donor":  donation.Donor,
		"amount": donation.Amount,
	}))
	return nil
}

// resolveDonor returns the donation's donor. When it is missing, a website
// user gets the donor registered under their email, created on first use.
func (s *donationServiceImpl) resolveDonor(ctx context.Context, donation *entity.Donation) (*entity.Donor, error) {
	if donation.Donor != "" {
		donor, err := s.donors.Get(ctx, donation.Donor)
		if err == nil {
			return donor, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	user := SessionUserFrom(ctx)
	if !user.IsWebsiteUser() {
		return nil, ErrDonorRequired
	}

	donor, err := s.donors.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if donor != nil {
		return donor, nil
	}

	donor = &entity.Donor{
		DonorName: user.FullName,
		DonorType: donation.DonorType,
		Email:     user.Email,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, err
	}
	s.logger.Info("Donor created for website user", "donor", donor.Name, "email", user.Email)
	return donor, nil
}

func (s *donationServiceImpl) Submit(ctx context.Context, name string) (*entity.Donation, error) {
	var donation *entity.Donation

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		donation, err = s.Get(txCtx, name)
		if err != nil {
			return err
		}
		if err := fire(txCtx, donation, workflow.TriggerSubmit); err != nil {
			return err
		}

		donation.DocStatus = entity.DocStatusSubmitted
		return s.donationRepo.Update(txCtx, donation)
	})
	if err != nil {
		s.logger.Error("Failed to submit donation", "error", err, "donation", name)
		return nil, err
	}

	s.logger.Info("Donation submitted", "donation", name)
	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeDonationSubmitted, entity.DoctypeDonation, name, nil))
	return donation, nil
}

func (s *donationServiceImpl) Get(ctx context.Context, name string) (*entity.Donation, error) {
	donation, err := s.donationRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	if donation == nil {
		return nil, fmt.Errorf("%w: donation %s", ErrNotFound, name)
	}
	return donation, nil
}

func (s *donationServiceImpl) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	donations, err := s.donationRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return donations, nil
}

func (s *donationServiceImpl) GenerateInvoice(ctx context.Context, name string, opts InvoiceOptions) (*InvoiceResult, error) {
	var result *InvoiceResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		donation, err := s.Get(txCtx, name)
		if err != nil {
			return err
		}
		result, err = s.generateInvoice(txCtx, donation, opts)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to generate donation invoice", "error", err, "donation", name)
		return nil, err
	}

	s.publishInvoiced(ctx, result)
	return result, nil
}

// generateInvoice runs inside the caller's transaction
func (s *donationServiceImpl) generateInvoice(ctx context.Context, donation *entity.Donation, opts InvoiceOptions) (*InvoiceResult, error) {
	if err := fire(ctx, donation, workflow.TriggerInvoice); err != nil {
		return nil, err
	}

	donor, err := s.donors.Get(ctx, donation.Donor)
	if err != nil {
		return nil, err
	}
	if donor.Customer == "" {
		return nil, fmt.Errorf("%w %s", ErrNoCustomer, donor.Name)
	}

	donorTypeName := donation.DonorType
	if donorTypeName == "" {
		donorTypeName = donor.DonorType
	}
	donorType, err := s.donorTypeRepo.GetByName(ctx, donorTypeName)
	if err != nil {
		return nil, fmt.Errorf("get donor type: %w", err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInvoiceSettings(settings, donorType, donorTypeName); err != nil {
		return nil, err
	}

	invoice, err := s.makeInvoice(ctx, donation, donor, donorType, settings)
	if err != nil {
		return nil, err
	}
	donation.Invoice = invoice.Name

	result := &InvoiceResult{Donation: donation, Invoice: invoice}

	if opts.WithPaymentEntry {
		pe, err := s.makePaymentEntry(ctx, donation, invoice, settings)
		if err != nil {
			return nil, err
		}
		result.PaymentEntry = pe
	}

	if opts.Save {
		if err := s.donationRepo.Update(ctx, donation); err != nil {
			return nil, fmt.Errorf("save donation: %w", err)
		}
	}

	return result, nil
}

// fire checks that trigger is allowed for the donation and translates a
// refused transition into the service error callers match on.
func fire(ctx context.Context, donation *entity.Donation, trigger workflow.Trigger) error {
	err := workflow.DonationLifecycle(donation).Fire(ctx, trigger)
	if err == nil {
		return nil
	}

	var te *workflow.TransitionError
	if !errors.As(err, &te) {
		return err
	}
	switch {
	case te.From == workflow.StateCancelled:
		return fmt.Errorf("%w: %s", ErrCancelled, donation.Name)
	case errors.Is(err, workflow.ErrGuardFailed):
		return ErrNotPaid
	case trigger == workflow.TriggerSubmit:
		return fmt.Errorf("%w: %s is %s", ErrAlreadySubmitted, donation.Name, donation.DocStatus)
	case te.From == workflow.StateInvoiced && !donation.HasPaymentDetails():
		// payment is checked before the invoice link
		return ErrNotPaid
	case te.From == workflow.StateInvoiced:
		return fmt.Errorf("%w: %s", ErrInvoiceAlreadyLinked, donation.Invoice)
	default:
		return fmt.Errorf("%w: %s", ErrNotSubmitted, donation.Name)
	}
}

func validateInvoiceSettings(settings *entity.NonProfitSettings, donorType *entity.DonorType, donorTypeName string) error {
	if settings.DonationDebitAccount == "" {
		return fmt.Errorf("%w: set the donation debit account", ErrSettingsIncomplete)
	}
	if settings.Company == "" {
		return fmt.Errorf("%w: set the default company for invoicing", ErrSettingsIncomplete)
	}
	if donorType == nil || donorType.LinkedItem == "" {
		return fmt.Errorf("%w: set a linked item for donor type %q", ErrNoLinkedItem, donorTypeName)
	}
	return nil
}

func (s *donationServiceImpl) makeInvoice(
	ctx context.Context,
	donation *entity.Donation,
	donor *entity.Donor,
	donorType *entity.DonorType,
	settings *entity.NonProfitSettings,
) (*entity.SalesInvoice, error) {
	name, err := s.series.Next(ctx, entity.SeriesSalesInvoice)
	if err != nil {
		return nil, fmt.Errorf("name sales invoice: %w", err)
	}

	invoice := &entity.SalesInvoice{
		Name:     name,
		Customer: donor.Customer,
		DebitTo:  settings.DonationDebitAccount,
		Currency: donation.Currency,
		Company:  settings.Company,
		IsPOS:    false,
		Items: []entity.SalesInvoiceItem{
			{ItemCode: donorType.LinkedItem, Rate: donation.Amount, Qty: 1},
		},
	}
	invoice.SetMissingValues(s.now())

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create sales invoice: %w", err)
	}
	if err := s.invoiceRepo.UpdateDocStatus(ctx, invoice.Name, entity.DocStatusSubmitted); err != nil {
		return nil, fmt.Errorf("submit sales invoice: %w", err)
	}
	invoice.DocStatus = entity.DocStatusSubmitted

	return invoice, nil
}

func (s *donationServiceImpl) makePaymentEntry(
	ctx context.Context,
	donation *entity.Donation,
	invoice *entity.SalesInvoice,
	settings *entity.NonProfitSettings,
) (*entity.PaymentEntry, error) {
	if settings.DonationPaymentAccount == "" {
		return nil, fmt.Errorf("%w: set the payment account for donations", ErrSettingsIncomplete)
	}

	name, err := s.series.Next(ctx, entity.SeriesPaymentEntry)
	if err != nil {
		return nil, fmt.Errorf("name payment entry: %w", err)
	}

	today := s.now()
	pe := &entity.PaymentEntry{
		Name:             name,
		PaymentType:      "Receive",
		PartyType:        entity.DoctypeCustomer,
		Party:            invoice.Customer,
		ReferenceDoctype: entity.DoctypeSalesInvoice,
		ReferenceName:    invoice.Name,
		PaidAmount:       invoice.GrandTotal,
		PaidTo:           settings.DonationPaymentAccount,
		PostingDate:      today,
		ReferenceNo:      donation.Name,
		ReferenceDate:    &today,
	}

	if err := s.paymentRepo.Create(ctx, pe); err != nil {
		return nil, fmt.Errorf("create payment entry: %w", err)
	}
	if err := s.paymentRepo.UpdateDocStatus(ctx, pe.Name, entity.DocStatusSubmitted); err != nil {
		return nil, fmt.Errorf("submit payment entry: %w", err)
	}
	pe.DocStatus = entity.DocStatusSubmitted

	return pe, nil
}

func (s *donationServiceImpl) publishInvoiced(ctx context.Context, result *InvoiceResult) {
	s.logger.Info("Donation invoiced",
		"donation", result.Donation.Name,
		"invoice", result.Invoice.Name,
		"grand_total", result.Invoice.GrandTotal,
	)

	invoiced := event.NewEvent(event.TypeInvoiceGenerated, entity.DoctypeSalesInvoice, result.Invoice.Name, map[string]interface{}{
		"donation":    result.Donation.Name,
		"customer":    result.Invoice.Customer,
		"grand_total": result.Invoice.GrandTotal,
	})
	s.publisher.DispatchAsync(ctx, invoiced)

	if result.PaymentEntry != nil {
		s.publisher.DispatchAsync(ctx, invoiced.Caused(event.TypePaymentEntryCreated, entity.DoctypePaymentEntry, result.PaymentEntry.Name, map[string]interface{}{
			"invoice":     result.Invoice.Name,
			"paid_amount": result.PaymentEntry.PaidAmount,
		}))
	}
}

func (s *donationServiceImpl) OnPaymentAuthorized(ctx context.Context, name string, status string) (*entity.Donation, error) {
	if status != entity.PaymentStatusCompleted && status != entity.PaymentStatusAuthorized {
		s.logger.Info("Ignoring payment status change", "donation", name, "status", status)
		return s.Get(ctx, name)
	}

	var (
		donation *entity.Donation
		result   *InvoiceResult
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		donation, err = s.Get(txCtx, name)
		if err != nil {
			return err
		}

		if err := fire(txCtx, donation, workflow.TriggerMarkPaid); err != nil {
			return err
		}
		donation.Paid = true
		if err := s.donationRepo.Update(txCtx, donation); err != nil {
			return fmt.Errorf("mark donation paid: %w", err)
		}

		settings, err := s.settings.Get(txCtx)
		if err != nil {
			return err
		}
		if !settings.AutoInvoicing() {
			return nil
		}
		if !donation.IsSubmitted() {
			s.logger.Info("Deferring invoice until donation is submitted", "donation", name)
			return nil
		}

		result, err = s.generateInvoice(txCtx, donation, InvoiceOptions{
			Save:             true,
			WithPaymentEntry: settings.AutomateDonationPaymentEntries,
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to process payment authorization", "error", err, "donation", name, "status", status)
		return nil, err
	}

	s.logger.Info("Donation payment authorized", "donation", name, "status", status)
	s.publisher.DispatchAsync(ctx, event.NewEvent(event.TypeDonationPaymentAuthorized, entity.DoctypeDonation, name, map[string]interface{}{
		"status": status,
	}))
	if result != nil {
		s.publishInvoiced(ctx, result)
	}
	return donation, nil
}
