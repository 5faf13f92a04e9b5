package http

import (
	"context"
	"sync"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeDonations keeps donations in memory and invoices them on demand
type fakeDonations struct {
	mu         sync.Mutex
	donations  map[string]*entity.Donation
	created    []*entity.Donation
	lastOpts   service.InvoiceOptions
	lastUser   *entity.SessionUser
	createErr  error
	invoiceErr error
}

func newFakeDonations(ds ...*entity.Donation) *fakeDonations {
	f := &fakeDonations{donations: make(map[string]*entity.Donation)}
	for _, d := range ds {
		f.donations[d.Name] = d
	}
	return f
}

func (f *fakeDonations) Create(ctx context.Context, d *entity.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = service.SessionUserFrom(ctx)
	if f.createErr != nil {
		return f.createErr
	}
	d.Name = "DON-2026-00099"
	f.donations[d.Name] = d
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDonations) Submit(ctx context.Context, name string) (*entity.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	if d.IsSubmitted() {
		return nil, service.ErrAlreadySubmitted
	}
	d.DocStatus = entity.DocStatusSubmitted
	return d, nil
}

func (f *fakeDonations) Get(ctx context.Context, name string) (*entity.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDonations) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Donation
	for _, d := range f.donations {
		if filter.Donor != "" && d.Donor != filter.Donor {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDonations) GenerateInvoice(ctx context.Context, name string, opts service.InvoiceOptions) (*service.InvoiceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	if f.invoiceErr != nil {
		return nil, f.invoiceErr
	}
	d, ok := f.donations[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	if !d.IsSubmitted() {
		return nil, service.ErrNotSubmitted
	}
	if d.Invoice != "" {
		return nil, service.ErrInvoiceAlreadyLinked
	}
	inv := &entity.SalesInvoice{Name: "SINV-2026-00001", GrandTotal: d.Amount}
	if opts.Save {
		d.Invoice = inv.Name
	}
	return &service.InvoiceResult{Donation: d, Invoice: inv}, nil
}

func (f *fakeDonations) OnPaymentAuthorized(ctx context.Context, name string, status string) (*entity.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	if status == entity.PaymentStatusCompleted || status == entity.PaymentStatusAuthorized {
		d.Paid = true
	}
	return d, nil
}

type fakeDonors struct {
	donors map[string]*entity.Donor
}

func (f *fakeDonors) Create(ctx context.Context, d *entity.Donor) error {
	if d.Email == "bad" {
		return service.ErrInvalidEmail
	}
	d.Name = "DONOR-00009"
	f.donors[d.Name] = d
	return nil
}

func (f *fakeDonors) Get(ctx context.Context, name string) (*entity.Donor, error) {
	d, ok := f.donors[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	return d, nil
}

func (f *fakeDonors) FindByEmail(ctx context.Context, email string) (*entity.Donor, error) {
	return nil, nil
}

func (f *fakeDonors) MakeCustomerAndLink(ctx context.Context, name string) (*entity.Customer, error) {
	d, ok := f.donors[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	if d.Customer != "" {
		return nil, service.ErrCustomerAlreadyLinked
	}
	d.Customer = "CUST-00001"
	return &entity.Customer{Name: d.Customer}, nil
}

type fakeSettings struct {
	settings entity.NonProfitSettings
}

func (f *fakeSettings) Get(ctx context.Context) (*entity.NonProfitSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Update(ctx context.Context, s *entity.NonProfitSettings) error {
	f.settings = *s
	return nil
}

func (f *fakeSettings) Seed(ctx context.Context, s *entity.NonProfitSettings, types []entity.DonorType) error {
	return nil
}

type exportFunc func(ctx context.Context, filter entity.DonationFilter) (*service.RegisterExport, error)

func (f exportFunc) DonationRegister(ctx context.Context, filter entity.DonationFilter) (*service.RegisterExport, error) {
	return f(ctx, filter)
}
