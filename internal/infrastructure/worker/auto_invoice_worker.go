package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// AutoInvoiceConfig holds configuration for the auto invoice worker
type AutoInvoiceConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultAutoInvoiceConfig returns default configuration
func DefaultAutoInvoiceConfig() AutoInvoiceConfig {
	return AutoInvoiceConfig{
		PollInterval: time.Minute,
		BatchSize:    20,
	}
}

// donationInvoicer is the part of service.DonationService the worker drives
type donationInvoicer interface {
	List(ctx context.Context, filter entity.DonationFilter) ([]*entity.Donation, error)
	GenerateInvoice(ctx context.Context, name string, opts service.InvoiceOptions) (*service.InvoiceResult, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*entity.NonProfitSettings, error)
}

// AutoInvoiceWorker invoices submitted, paid donations that are still missing
// an invoice, as long as settings allow and automate donation invoicing.
type AutoInvoiceWorker struct {
	config    AutoInvoiceConfig
	donations donationInvoicer
	settings  settingsReader
	logger    *zap.Logger

	mu             sync.Mutex
	cancel         context.CancelFunc
	done           chan struct{}
	isRunning      bool
	processedCount int
	failedCount    int
}

// NewAutoInvoiceWorker creates a new auto invoice worker
func NewAutoInvoiceWorker(
	config AutoInvoiceConfig,
	donations donationInvoicer,
	settings settingsReader,
	logger *zap.Logger,
) *AutoInvoiceWorker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultAutoInvoiceConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultAutoInvoiceConfig().BatchSize
	}
	return &AutoInvoiceWorker{
		config:    config,
		donations: donations,
		settings:  settings,
		logger:    logger,
	}
}

// Start begins the polling loop
func (w *AutoInvoiceWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("auto invoice worker already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("AutoInvoiceWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop(loopCtx, w.done)
	return nil
}

// Stop cancels the loop and waits for the current batch to finish
func (w *AutoInvoiceWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	processed, failed := w.processedCount, w.failedCount
	w.mu.Unlock()

	w.logger.Info("AutoInvoiceWorker stopped",
		zap.Int("processed_count", processed),
		zap.Int("failed_count", failed))
	return nil
}

// Name returns the worker name for identification
func (w *AutoInvoiceWorker) Name() string {
	return "AutoInvoiceWorker"
}

func (w *AutoInvoiceWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("Auto invoice batch failed", zap.Error(err))
			}
		}
	}
}

// RunOnce invoices pending donations page by page and returns how many were invoiced
func (w *AutoInvoiceWorker) RunOnce(ctx context.Context) (int, error) {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("get settings: %w", err)
	}
	if !settings.AutoInvoicing() {
		return 0, nil
	}

	opts := service.InvoiceOptions{
		Save:             true,
		WithPaymentEntry: settings.AutomateDonationPaymentEntries,
	}

	// Invoiced donations leave the pending set. Failed ones stay ahead of
	// the rest, so the offset tracks failures in this run.
	invoiced, failed := 0, 0
	for ctx.Err() == nil {
		page, err := w.pending(ctx, failed)
		if err != nil {
			return invoiced, err
		}

		for _, d := range page {
			if ctx.Err() != nil {
				break
			}
			if w.invoice(ctx, d, opts) {
				invoiced++
			} else {
				failed++
			}
		}

		if len(page) < w.config.BatchSize {
			break
		}
	}

	return invoiced, nil
}

func (w *AutoInvoiceWorker) pending(ctx context.Context, offset int) ([]*entity.Donation, error) {
	submitted := entity.DocStatusSubmitted
	paid := true
	page, err := w.donations.List(ctx, entity.DonationFilter{
		DocStatus:      &submitted,
		Paid:           &paid,
		WithoutInvoice: true,
		Limit:          w.config.BatchSize,
		Offset:         offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list pending donations: %w", err)
	}
	return page, nil
}

func (w *AutoInvoiceWorker) invoice(ctx context.Context, d *entity.Donation, opts service.InvoiceOptions) bool {
	result, err := w.donations.GenerateInvoice(ctx, d.Name, opts)

	w.mu.Lock()
	if err != nil {
		w.failedCount++
	} else {
		w.processedCount++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Failed to invoice donation",
			zap.String("donation", d.Name),
			zap.Error(err))
		return false
	}

	w.logger.Info("Donation invoiced by worker",
		zap.String("donation", d.Name),
		zap.String("invoice", result.Invoice.Name))
	return true
}
