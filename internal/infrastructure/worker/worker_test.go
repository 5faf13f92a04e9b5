package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

type mockInvoicer struct {
	mu           sync.Mutex
	pending      []*entity.Donation
	lastFilter   entity.DonationFilter
	invoiced     []string
	opts         []service.InvoiceOptions
	generateFunc func(name string) error
}

func (m *mockInvoicer) List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter

	var open []*entity.Donation
	for _, d := range m.pending {
		if !m.isInvoiced(d.Name) {
			open = append(open, d)
		}
	}
	if filter.Offset >= len(open) {
		return nil, nil
	}
	open = open[filter.Offset:]
	if filter.Limit > 0 && len(open) > filter.Limit {
		open = open[:filter.Limit]
	}
	return open, nil
}

func (m *mockInvoicer) isInvoiced(name string) bool {
	for _, n := range m.invoiced {
		if n == name {
			return true
		}
	}
	return false
}

func (m *mockInvoicer) GenerateInvoice(ctx context.Context, name string, opts service.InvoiceOptions) (*service.InvoiceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generateFunc != nil {
		if err := m.generateFunc(name); err != nil {
			return nil, err
		}
	}
	m.invoiced = append(m.invoiced, name)
	m.opts = append(m.opts, opts)
	return &service.InvoiceResult{Invoice: &entity.SalesInvoice{Name: "SINV-" + name}}, nil
}

type mockSettings struct {
	settings *entity.NonProfitSettings
}

func (m *mockSettings) Get(ctx context.Context) (*entity.NonProfitSettings, error) {
	return m.settings, nil
}

func pendingDonations() []*entity.Donation {
	return []*entity.Donation{{Name: "DON-2026-00001"}, {Name: "DON-2026-00002"}}
}

func TestAutoInvoiceWorker_RunOnce(t *testing.T) {
	t.Run("does nothing unless automation is on", func(t *testing.T) {
		invoicer := &mockInvoicer{pending: pendingDonations()}
		w := NewAutoInvoiceWorker(AutoInvoiceConfig{}, invoicer, &mockSettings{settings: &entity.NonProfitSettings{AllowDonationInvoicing: true}}, zap.NewNop())

		n, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, invoicer.invoiced)
	})

	t.Run("invoices pending donations and skips failures", func(t *testing.T) {
		invoicer := &mockInvoicer{
			pending: pendingDonations(),
			generateFunc: func(name string) error {
				if name == "DON-2026-00001" {
					return errors.New("no customer")
				}
				return nil
			},
		}
		settings := &mockSettings{settings: &entity.NonProfitSettings{
			AllowDonationInvoicing:         true,
			AutomateDonationInvoicing:      true,
			AutomateDonationPaymentEntries: true,
		}}
		w := NewAutoInvoiceWorker(AutoInvoiceConfig{BatchSize: 7}, invoicer, settings, zap.NewNop())

		n, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"DON-2026-00002"}, invoicer.invoiced)
		assert.Equal(t, service.InvoiceOptions{Save: true, WithPaymentEntry: true}, invoicer.opts[0])

		assert.Equal(t, 7, invoicer.lastFilter.Limit)
		assert.True(t, invoicer.lastFilter.WithoutInvoice)
		require.NotNil(t, invoicer.lastFilter.Paid)
		assert.True(t, *invoicer.lastFilter.Paid)
		require.NotNil(t, invoicer.lastFilter.DocStatus)
		assert.Equal(t, entity.DocStatusSubmitted, *invoicer.lastFilter.DocStatus)
	})
}

func TestAutoInvoiceWorker_FailuresDoNotStarveOlderDonations(t *testing.T) {
	broken := map[string]bool{"DON-2026-00009": true, "DON-2026-00008": true, "DON-2026-00007": true}
	invoicer := &mockInvoicer{
		pending: []*entity.Donation{
			{Name: "DON-2026-00009"},
			{Name: "DON-2026-00008"},
			{Name: "DON-2026-00007"},
			{Name: "DON-2026-00003"},
		},
		generateFunc: func(name string) error {
			if broken[name] {
				return errors.New("donor has no customer")
			}
			return nil
		},
	}
	settings := &mockSettings{settings: &entity.NonProfitSettings{AllowDonationInvoicing: true, AutomateDonationInvoicing: true}}
	w := NewAutoInvoiceWorker(AutoInvoiceConfig{BatchSize: 2}, invoicer, settings, zap.NewNop())

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"DON-2026-00003"}, invoicer.invoiced)
	assert.Equal(t, 3, invoicer.lastFilter.Offset)

	n, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"DON-2026-00003"}, invoicer.invoiced)

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Equal(t, 1, w.processedCount)
	assert.Equal(t, 6, w.failedCount)
}

func TestAutoInvoiceWorker_StartStop(t *testing.T) {
	invoicer := &mockInvoicer{pending: pendingDonations()}
	settings := &mockSettings{settings: &entity.NonProfitSettings{AllowDonationInvoicing: true, AutomateDonationInvoicing: true}}
	w := NewAutoInvoiceWorker(AutoInvoiceConfig{PollInterval: 10 * time.Millisecond}, invoicer, settings, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool {
		invoicer.mu.Lock()
		defer invoicer.mu.Unlock()
		return len(invoicer.invoiced) > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	w := NewAutoInvoiceWorker(AutoInvoiceConfig{PollInterval: time.Hour}, &mockInvoicer{}, &mockSettings{settings: &entity.NonProfitSettings{}}, zap.NewNop())
	m.Register(w)
	assert.Equal(t, 1, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	require.NoError(t, m.StopAll())
}
