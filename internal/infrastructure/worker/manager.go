package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker defines the interface for background workers
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// WorkerManager starts and stops a set of workers together
type WorkerManager struct {
	workers []Worker
	logger  *zap.Logger

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{logger: logger}
}

// Register adds a worker to be managed
func (m *WorkerManager) Register(worker Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, worker)
	m.logger.Info("Worker registered",
		zap.String("worker_name", worker.Name()),
		zap.Int("total_workers", len(m.workers)))
}

// StartAll starts every registered worker. A worker that fails to start is
// logged and skipped.
func (m *WorkerManager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return fmt.Errorf("workers already running")
	}
	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.isRunning = true
	workers := append([]Worker(nil), m.workers...)
	m.mu.Unlock()

	m.logger.Info("Starting all workers", zap.Int("count", len(workers)))

	for _, w := range workers {
		if err := w.Start(workerCtx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("worker_name", w.Name()),
				zap.Error(err))
			continue
		}
		m.logger.Info("Worker started", zap.String("worker_name", w.Name()))
	}
	return nil
}

// StopAll cancels the shared context and stops every worker
func (m *WorkerManager) StopAll() error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	cancel := m.cancel
	workers := append([]Worker(nil), m.workers...)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	failed := 0
	for _, w := range workers {
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop worker",
				zap.String("worker_name", w.Name()),
				zap.Error(err))
			failed++
			continue
		}
		m.logger.Info("Worker stopped", zap.String("worker_name", w.Name()))
	}

	if failed > 0 {
		return fmt.Errorf("failed to stop %d workers", failed)
	}
	return nil
}

// GetWorkerCount returns the number of registered workers
func (m *WorkerManager) GetWorkerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers)
}

// IsRunning returns whether workers are running
func (m *WorkerManager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}
