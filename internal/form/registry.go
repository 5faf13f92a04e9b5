package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Event is a view lifecycle event
type Event string

const (
	// EventOnload fires once when a record is first loaded into a view
	EventOnload Event = "onload"
	// EventRefresh fires every time the view renders the record
	EventRefresh Event = "refresh"
)

// Handler reacts to a view lifecycle event for one record
type Handler func(ctx context.Context, rec *Record, view View) error

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type bindingKey struct {
	doctype string
	event   Event
}

type binding struct {
	name    string
	handler Handler
}

// Registry maps (doctype, event) pairs to controller handlers
type Registry struct {
	mu       sync.RWMutex
	bindings map[bindingKey][]binding
	logger   Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Registry{
		bindings: make(map[bindingKey][]binding),
		logger:   logger,
	}
}

// On subscribes handler to evt for records of doctype
func (r *Registry) On(doctype string, evt Event, name string, handler Handler) {
	key := bindingKey{doctype: doctype, event: evt}

	r.mu.Lock()
	r.bindings[key] = append(r.bindings[key], binding{name: name, handler: handler})
	r.mu.Unlock()

	r.logger.Info("Form handler registered", "doctype", doctype, "event", evt, "handler_name", name)
}

// Handles reports whether any handler is bound to (doctype, evt)
func (r *Registry) Handles(doctype string, evt Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings[bindingKey{doctype: doctype, event: evt}]) > 0
}

// Trigger runs every handler bound to the record's doctype and evt in
// registration order. A failing handler does not stop later ones; all
// failures are joined into the returned error.
func (r *Registry) Trigger(ctx context.Context, evt Event, rec *Record, view View) error {
	r.mu.RLock()
	bound := append([]binding(nil), r.bindings[bindingKey{doctype: rec.Doctype, event: evt}]...)
	r.mu.RUnlock()

	var errs []error
	for _, b := range bound {
		if err := r.run(ctx, b, rec, view); err != nil {
			r.logger.Error("Form handler failed",
				"doctype", rec.Doctype,
				"name", rec.Name,
				"event", evt,
				"handler_name", b.name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) run(ctx context.Context, b binding, rec *Record, view View) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return b.handler(ctx, rec, view)
}

// OpenView builds a view over rec and runs the refresh handlers on it. Reload
// on the returned view runs them again against the fetched record.
func (r *Registry) OpenView(ctx context.Context, rec *Record, reload ReloadFunc) (*RecordingView, error) {
	view := NewRecordingView(rec, reload)
	view.RenderWith(func(ctx context.Context, rec *Record, v View) error {
		return r.Trigger(ctx, EventRefresh, rec, v)
	})
	return view, r.Trigger(ctx, EventRefresh, rec, view)
}
