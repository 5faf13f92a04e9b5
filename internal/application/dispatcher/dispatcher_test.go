package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) hasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func (m *mockLogger) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func newInvoiceEvent() *event.Event {
	return event.NewEvent(event.TypeInvoiceGenerated, "Donation", "DON-2026-00001", map[string]interface{}{
		"invoice": "SINV-2026-00001",
	})
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeInvoiceGenerated, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(event.TypeInvoiceGenerated, func(ctx context.Context, evt *event.Event) error {
		order = append(order, evt.GetPayloadString("invoice"))
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), newInvoiceEvent()))
	assert.Equal(t, []string{"first", "SINV-2026-00001"}, order)
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	d := NewDispatcher()
	secondCalled := false
	boom := errors.New("ledger unavailable")

	d.SubscribeNamed(event.TypeInvoiceGenerated, "failing", func(ctx context.Context, evt *event.Event) error {
		return boom
	})
	d.SubscribeNamed(event.TypeInvoiceGenerated, "second", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	err := d.Dispatch(context.Background(), newInvoiceEvent())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "handler failing failed")
	assert.False(t, secondCalled)
}

func TestDispatch_OnlyMatchingType(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Subscribe(event.TypeWebhookFailed, func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), newInvoiceEvent()))
	assert.False(t, called)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	d.SubscribeNamed(event.TypeInvoiceGenerated, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("nil customer")
	})

	err := d.Dispatch(context.Background(), newInvoiceEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic: nil customer")
	assert.GreaterOrEqual(t, logger.errorCount(), 1)
}

func TestUnsubscribe(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	called := false

	d.SubscribeNamed(event.TypeDonorCreated, "audit", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})
	d.Unsubscribe(event.TypeDonorCreated, "audit")

	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeDonorCreated, "Donor", "DONOR-00001", nil)))
	assert.False(t, called)
	assert.True(t, logger.hasInfo("Handler unregistered"))
	assert.Empty(t, d.ListHandlers(event.TypeDonorCreated))
}

func TestListHandlers_HidesFuncs(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeWebhookFailed, "notify-managers", func(ctx context.Context, evt *event.Event) error { return nil })
	d.Subscribe(event.TypeWebhookFailed, func(ctx context.Context, evt *event.Event) error { return nil })

	infos := d.ListHandlers(event.TypeWebhookFailed)

	require.Len(t, infos, 2)
	assert.Equal(t, "notify-managers", infos[0].Name)
	assert.Equal(t, "webhook.failed#1", infos[1].Name)
	for _, info := range infos {
		assert.Nil(t, info.Handler)
		assert.Equal(t, event.TypeWebhookFailed, info.EventType)
	}
}

func TestDispatchAsync_CloseWaits(t *testing.T) {
	d := NewDispatcher()
	var done atomic.Int32

	for i := 0; i < 3; i++ {
		d.Subscribe(event.TypeInvoiceGenerated, func(ctx context.Context, evt *event.Event) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, newInvoiceEvent())
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, int32(3), done.Load())
}

func TestDispatchAsync_DetachesCancellation(t *testing.T) {
	d := NewDispatcher()
	var sawCancel atomic.Bool

	d.Subscribe(event.TypeInvoiceGenerated, func(ctx context.Context, evt *event.Event) error {
		time.Sleep(5 * time.Millisecond)
		sawCancel.Store(ctx.Err() != nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, newInvoiceEvent())
	cancel()
	require.NoError(t, d.Close())

	assert.False(t, sawCancel.Load())
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	require.NoError(t, d.Close())
	assert.Error(t, d.Close(), "second close must fail")

	err := d.Dispatch(context.Background(), newInvoiceEvent())
	assert.ErrorIs(t, err, ErrClosed)

	d.DispatchAsync(context.Background(), newInvoiceEvent())
	assert.GreaterOrEqual(t, logger.errorCount(), 1)
}
