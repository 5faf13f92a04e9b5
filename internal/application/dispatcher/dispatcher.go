package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/donation-desk/internal/domain/event"
)

// ErrClosed is returned when dispatching on a closed dispatcher
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes domain events to subscribed handlers
type Dispatcher interface {
	// Subscribe registers a handler under an auto-generated name
	Subscribe(eventType event.Type, handler Handler)

	// SubscribeNamed registers a handler under name
	SubscribeNamed(eventType event.Type, name string, handler Handler)

	// Unsubscribe removes the handler registered under name
	Unsubscribe(eventType event.Type, name string)

	// Dispatch runs handlers in registration order and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs every handler in its own goroutine; errors are only logged
	DispatchAsync(ctx context.Context, evt *event.Event)

	// ListHandlers returns the handlers registered for an event type, without the funcs
	ListHandlers(eventType event.Type) []HandlerInfo

	// Close rejects new events and waits for async handlers to finish
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	seq      map[event.Type]int
	logger   Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
		seq:      make(map[event.Type]int),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, handler Handler) {
	d.mu.Lock()
	name := fmt.Sprintf("%s#%d", eventType, d.seq[eventType])
	d.mu.Unlock()

	d.SubscribeNamed(eventType, name, handler)
}

func (d *eventDispatcher) SubscribeNamed(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})
	d.seq[eventType]++
	d.mu.Unlock()

	d.logger.Info("Handler registered", "event_type", eventType, "handler_name", name)
}

func (d *eventDispatcher) Unsubscribe(eventType event.Type, name string) {
	d.mu.Lock()
	current := d.handlers[eventType]
	kept := make([]HandlerInfo, 0, len(current))
	for _, h := range current {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	d.handlers[eventType] = kept
	d.mu.Unlock()

	d.logger.Info("Handler unregistered", "event_type", eventType, "handler_name", name)
}

// snapshot copies the handler slice so handlers may (un)subscribe while running
func (d *eventDispatcher) snapshot(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]HandlerInfo(nil), d.handlers[eventType]...)
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return ErrClosed
	}

	handlers := d.snapshot(evt.Type)
	d.logger.Info("Dispatching event",
		"event_type", evt.Type,
		"event_id", evt.ID,
		"doc_name", evt.DocName,
		"handler_count", len(handlers),
	)

	for _, info := range handlers {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.logger.Error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", info.Name,
				"error", err,
			)
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}
	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		d.logger.Error("Cannot dispatch async event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
		)
		return
	}

	// handlers outlive the request that raised the event
	ctx = context.WithoutCancel(ctx)

	for _, info := range d.snapshot(evt.Type) {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()
			if err := d.safeExecute(ctx, evt, h); err != nil {
				d.logger.Error("Async handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", h.Name,
					"error", err,
				)
			}
		}(info)
	}
}

func (d *eventDispatcher) ListHandlers(eventType event.Type) []HandlerInfo {
	handlers := d.snapshot(eventType)
	for i := range handlers {
		handlers[i].Handler = nil
	}
	return handlers
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}

	d.logger.Info("Closing dispatcher, waiting for async handlers")
	d.wg.Wait()
	d.logger.Info("Dispatcher closed")
	return nil
}

// safeExecute runs a handler, converting a panic into an error
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.logger.Error("Handler panic recovered",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", info.Name,
				"panic", r,
			)
		}
	}()

	return info.Handler(ctx, evt)
}
