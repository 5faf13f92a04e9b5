package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrFrozen is returned when an action is activated while the view is frozen
	ErrFrozen = errors.New("view is frozen")
	// ErrUnknownAction is returned when no action matches the requested slug
	ErrUnknownAction = errors.New("unknown action")
)

// Action is an offered user action
type Action struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	fn    ActionFunc
}

// ReloadFunc fetches a fresh snapshot of the record shown in a view
type ReloadFunc func(ctx context.Context) (*Record, error)

// RecordingView is a View that keeps everything a controller did to it so a
// surface (HTTP desk, terminal) can render the result afterwards.
type RecordingView struct {
	mu         sync.Mutex
	record     *Record
	reload     ReloadFunc
	render     Handler
	actions    []Action
	frozen     bool
	activating bool
	freezes    []string
	reloads    int
	errs       []error
	observer   func(kind, detail string)
}

// NewRecordingView creates a view showing rec. reload may be nil, in which
// case Reload only counts.
func NewRecordingView(rec *Record, reload ReloadFunc) *RecordingView {
	return &RecordingView{record: rec, reload: reload}
}

// RenderWith sets the handler that rebuilds the view after a reload.
// The reloaded record is passed in and the previous actions are dropped first.
func (v *RecordingView) RenderWith(fn Handler) {
	v.mu.Lock()
	v.render = fn
	v.mu.Unlock()
}

// Observe installs a callback invoked on every view change, used by
// interactive surfaces to print progress.
func (v *RecordingView) Observe(fn func(kind, detail string)) {
	v.mu.Lock()
	v.observer = fn
	v.mu.Unlock()
}

func (v *RecordingView) notify(kind, detail string) {
	if v.observer != nil {
		v.observer(kind, detail)
	}
}

// AddAction implements View
func (v *RecordingView) AddAction(label string, fn ActionFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.actions = append(v.actions, Action{Label: label, Slug: Slug(label), fn: fn})
	v.notify("action", label)
}

// Freeze implements View
func (v *RecordingView) Freeze(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frozen = true
	v.freezes = append(v.freezes, message)
	v.notify("freeze", message)
}

// Unfreeze implements View
func (v *RecordingView) Unfreeze() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frozen = false
	v.notify("unfreeze", "")
}

// Reload implements View
func (v *RecordingView) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.reloads++
	reload := v.reload
	v.notify("reload", "")
	v.mu.Unlock()

	if reload == nil {
		return nil
	}
	rec, err := reload(ctx)
	if err != nil {
		return fmt.Errorf("reload record: %w", err)
	}

	v.mu.Lock()
	v.record = rec
	v.actions = nil
	render := v.render
	v.mu.Unlock()

	if render == nil {
		return nil
	}
	if err := render(ctx, rec, v); err != nil {
		return fmt.Errorf("render reloaded record: %w", err)
	}
	return nil
}

// ShowError implements View
func (v *RecordingView) ShowError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errs = append(v.errs, err)
	v.notify("error", err.Error())
}

// Activate runs the action whose slug matches. Only one action runs at a
// time; activating while frozen or while another action runs is rejected
// with ErrFrozen.
func (v *RecordingView) Activate(ctx context.Context, slug string) error {
	v.mu.Lock()
	if v.frozen || v.activating {
		v.mu.Unlock()
		return ErrFrozen
	}
	var fn ActionFunc
	for _, a := range v.actions {
		if a.Slug == slug {
			fn = a.fn
			break
		}
	}
	if fn == nil {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAction, slug)
	}
	v.activating = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.activating = false
		v.mu.Unlock()
	}()
	return fn(ctx)
}

// Record returns the current record snapshot
func (v *RecordingView) Record() *Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.record
}

// Actions returns the offered actions
func (v *RecordingView) Actions() []Action {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Action(nil), v.actions...)
}

// Frozen reports whether the view is currently frozen
func (v *RecordingView) Frozen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frozen
}

// FreezeMessages returns every message passed to Freeze
func (v *RecordingView) FreezeMessages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.freezes...)
}

// Reloads returns how many times Reload was called
func (v *RecordingView) Reloads() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reloads
}

// Errors returns every error passed to ShowError
func (v *RecordingView) Errors() []error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]error(nil), v.errs...)
}

// Slug turns an action label into its URL form: "Generate Invoice" -> "generate-invoice"
func Slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
