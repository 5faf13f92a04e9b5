package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/donation-desk/internal/domain/entity"
	"github.com/garyjia/donation-desk/internal/domain/event"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) DispatchAsync(ctx context.Context, evt *event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockSeries struct {
	counters map[string]int
}

func (m *mockSeries) Next(ctx context.Context, series string) (string, error) {
	if m.counters == nil {
		m.counters = make(map[string]int)
	}
	m.counters[series]++
	return fmt.Sprintf("%s%05d", series, m.counters[series]), nil
}

type mockDonationRepo struct {
	items      map[string]*entity.Donation
	createFunc func(ctx context.Context, d *entity.Donation) error
	updateFunc func(ctx context.Context, d *entity.Donation) error
	updates    int
}

func newMockDonationRepo() *mockDonationRepo {
	return &mockDonationRepo{items: make(map[string]*entity.Donation)}
}

func (m *mockDonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, d)
	}
	cp := *d
	m.items[d.Name] = &cp
	return nil
}

func (m *mockDonationRepo) GetByName(ctx context.Context, name string) (*entity.Donation, error) {
	d, ok := m.items[name]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockDonationRepo) Update(ctx context.Context, d *entity.Donation) error {
	m.updates++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, d)
	}
	cp := *d
	m.items[d.Name] = &cp
	return nil
}

func (m *mockDonationRepo) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	var out []*entity.Donation
	for _, d := range m.items {
		if filter.Donor != "" && d.Donor != filter.Donor {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type mockDonorRepo struct {
	items      map[string]*entity.Donor
	order      []string
	createFunc func(ctx context.Context, d *entity.Donor) error
}

func newMockDonorRepo(donors ...*entity.Donor) *mockDonorRepo {
	m := &mockDonorRepo{items: make(map[string]*entity.Donor)}
	for _, d := range donors {
		m.items[d.Name] = d
		m.order = append(m.order, d.Name)
	}
	return m
}

func (m *mockDonorRepo) Create(ctx context.Context, d *entity.Donor) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, d)
	}
	cp := *d
	m.items[d.Name] = &cp
	m.order = append(m.order, d.Name)
	return nil
}

func (m *mockDonorRepo) GetByName(ctx context.Context, name string) (*entity.Donor, error) {
	d, ok := m.items[name]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockDonorRepo) GetLatestByEmail(ctx context.Context, email string) (*entity.Donor, error) {
	for i := len(m.order) - 1; i >= 0; i-- {
		if d := m.items[m.order[i]]; d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockDonorRepo) Update(ctx context.Context, d *entity.Donor) error {
	cp := *d
	m.items[d.Name] = &cp
	return nil
}

type mockDonorTypeRepo struct {
	items map[string]*entity.DonorType
}

func (m *mockDonorTypeRepo) Upsert(ctx context.Context, t *entity.DonorType) error {
	if m.items == nil {
		m.items = make(map[string]*entity.DonorType)
	}
	cp := *t
	m.items[t.Name] = &cp
	return nil
}

func (m *mockDonorTypeRepo) GetByName(ctx context.Context, name string) (*entity.DonorType, error) {
	return m.items[name], nil
}

type mockCustomerRepo struct {
	created []*entity.Customer
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	m.created = append(m.created, c)
	return nil
}

func (m *mockCustomerRepo) GetByName(ctx context.Context, name string) (*entity.Customer, error) {
	for _, c := range m.created {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

type mockInvoiceRepo struct {
	items map[string]*entity.SalesInvoice
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *entity.SalesInvoice) error {
	if m.items == nil {
		m.items = make(map[string]*entity.SalesInvoice)
	}
	m.items[inv.Name] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByName(ctx context.Context, name string) (*entity.SalesInvoice, error) {
	return m.items[name], nil
}

func (m *mockInvoiceRepo) UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error {
	inv, ok := m.items[name]
	if !ok {
		return fmt.Errorf("sales_invoices not found: %s", name)
	}
	inv.DocStatus = status
	return nil
}

type mockPaymentRepo struct {
	items map[string]*entity.PaymentEntry
}

func (m *mockPaymentRepo) Create(ctx context.Context, pe *entity.PaymentEntry) error {
	if m.items == nil {
		m.items = make(map[string]*entity.PaymentEntry)
	}
	m.items[pe.Name] = pe
	return nil
}

func (m *mockPaymentRepo) GetByName(ctx context.Context, name string) (*entity.PaymentEntry, error) {
	return m.items[name], nil
}

func (m *mockPaymentRepo) UpdateDocStatus(ctx context.Context, name string, status entity.DocStatus) error {
	pe, ok := m.items[name]
	if !ok {
		return fmt.Errorf("payment_entries not found: %s", name)
	}
	pe.DocStatus = status
	return nil
}

type mockSettingsRepo struct {
	settings *entity.NonProfitSettings
	saves    int
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*entity.NonProfitSettings, error) {
	if m.settings == nil {
		return nil, nil
	}
	cp := *m.settings
	return &cp, nil
}

func (m *mockSettingsRepo) Save(ctx context.Context, s *entity.NonProfitSettings) error {
	m.saves++
	cp := *s
	m.settings = &cp
	return nil
}

type mockModeRepo struct {
	modes map[string]bool
}

func (m *mockModeRepo) Exists(ctx context.Context, name string) (bool, error) {
	return m.modes[name], nil
}

func (m *mockModeRepo) Create(ctx context.Context, mode *entity.ModeOfPayment) error {
	if m.modes == nil {
		m.modes = make(map[string]bool)
	}
	m.modes[mode.Name] = true
	return nil
}

type mockCommentRepo struct {
	comments []*entity.Comment
}

func (m *mockCommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockCommentRepo) ListByReference(ctx context.Context, doctype, name string) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, c := range m.comments {
		if c.ReferenceDoctype == doctype && c.ReferenceName == name {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockErrorLogRepo struct {
	logs []*entity.ErrorLog
}

func (m *mockErrorLogRepo) Create(ctx context.Context, l *entity.ErrorLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockErrorLogRepo) GetByName(ctx context.Context, name string) (*entity.ErrorLog, error) {
	for _, l := range m.logs {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, nil
}

type mockMessageSender struct {
	sendTextFunc func(ctx context.Context, email, text string) error
	sent         map[string]string
}

func (m *mockMessageSender) SendText(ctx context.Context, email, text string) error {
	if m.sendTextFunc != nil {
		if err := m.sendTextFunc(ctx, email, text); err != nil {
			return err
		}
	}
	if m.sent == nil {
		m.sent = make(map[string]string)
	}
	m.sent[email] = text
	return nil
}

// fixture wires every service against in-memory mocks
type fixture struct {
	donationRepo *mockDonationRepo
	donorRepo    *mockDonorRepo
	donorTypes   *mockDonorTypeRepo
	customers    *mockCustomerRepo
	invoices     *mockInvoiceRepo
	payments     *mockPaymentRepo
	settingsRepo *mockSettingsRepo
	modes        *mockModeRepo
	comments     *mockCommentRepo
	errorLogs    *mockErrorLogRepo
	publisher    *recordingPublisher
	tx           *mockTxManager

	settings  SettingsService
	donors    DonorService
	donations DonationService
}

func invoicingSettings() *entity.NonProfitSettings {
	return &entity.NonProfitSettings{
		Company:                "Helping Hands",
		DonationDebitAccount:   "Debtors - HH",
		DonationPaymentAccount: "Bank - HH",
		DefaultDonorType:       "Individual",
		CustomerGroup:          "Individual",
		Territory:              "India",
		AllowDonationInvoicing: true,
	}
}

func newFixture() *fixture {
	f := &fixture{
		donationRepo: newMockDonationRepo(),
		donorRepo: newMockDonorRepo(&entity.Donor{
			Name:      "DONOR-00001",
			DonorName: "Asha",
			DonorType: "Individual",
			Email:     "asha@example.org",
			Customer:  "CUST-00001",
		}),
		donorTypes: &mockDonorTypeRepo{items: map[string]*entity.DonorType{
			"Individual": {Name: "Individual", LinkedItem: "Donation"},
		}},
		customers:    &mockCustomerRepo{},
		invoices:     &mockInvoiceRepo{},
		payments:     &mockPaymentRepo{},
		settingsRepo: &mockSettingsRepo{settings: invoicingSettings()},
		modes:        &mockModeRepo{},
		comments:     &mockCommentRepo{},
		errorLogs:    &mockErrorLogRepo{},
		publisher:    &recordingPublisher{},
		tx:           &mockTxManager{},
	}
	series := &mockSeries{}

	f.settings = NewSettingsService(f.settingsRepo, f.donorTypes, f.tx, testLogger{})
	f.donors = NewDonorService(f.donorRepo, f.customers, f.settings, series, f.tx, f.publisher, testLogger{})
	f.donations = NewDonationService(
		f.donationRepo,
		f.donorTypes,
		f.invoices,
		f.payments,
		f.donors,
		f.settings,
		series,
		f.tx,
		f.publisher,
		testLogger{},
	)
	return f
}

// submittedDonation stores a submitted donation and returns its name
func (f *fixture) submittedDonation(mutate func(d *entity.Donation)) string {
	d := &entity.Donation{
		Name:      "DON-2026-00042",
		Donor:     "DONOR-00001",
		DonorName: "Asha",
		DonorType: "Individual",
		Amount:    500,
		Currency:  "INR",
		Paid:      true,
		DocStatus: entity.DocStatusSubmitted,
	}
	if mutate != nil {
		mutate(d)
	}
	f.donationRepo.items[d.Name] = d
	return d.Name
}
