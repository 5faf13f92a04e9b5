package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// mockCaller records calls and replies with a fixed response
type mockCaller struct {
	mu       sync.Mutex
	calls    []CallRequest
	CallFunc func(ctx context.Context, req CallRequest) (*CallResponse, error)
}

func (m *mockCaller) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.CallFunc != nil {
		return m.CallFunc(ctx, req)
	}
	return &CallResponse{}, nil
}

func replying(payload map[string]interface{}, err error) *mockCaller {
	return &mockCaller{CallFunc: func(ctx context.Context, req CallRequest) (*CallResponse, error) {
		if err != nil {
			return nil, err
		}
		return &CallResponse{Payload: payload}, nil
	}}
}

func donationRecord(docstatus int, invoice interface{}) *Record {
	fields := map[string]interface{}{"donor": "DONOR-00001", "amount": 500.0}
	if invoice != nil {
		fields["invoice"] = invoice
	}
	return &Record{Doctype: entity.DoctypeDonation, Name: "DON-2026-00001", DocStatus: docstatus, Fields: fields}
}

func refreshed(t *testing.T, caller Caller, rec *Record) *RecordingView {
	t.Helper()
	registry := NewRegistry(nil)
	NewDonationController(caller, nil, nil).Register(registry)

	view, err := registry.OpenView(context.Background(), rec, nil)
	require.NoError(t, err)
	return view
}

func TestDonationController_ActionVisibility(t *testing.T) {
	tests := []struct {
		name      string
		docstatus int
		invoice   interface{}
		want      bool
	}{
		{"submitted without invoice", 1, nil, true},
		{"submitted with empty invoice", 1, "", true},
		{"submitted with zero invoice", 1, 0, true},
		{"submitted with false invoice", 1, false, true},
		{"submitted with invoice", 1, "SINV-2026-00001", false},
		{"draft without invoice", 0, nil, false},
		{"cancelled without invoice", 2, nil, false},
		{"draft with invoice", 0, "SINV-2026-00001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := refreshed(t, &mockCaller{}, donationRecord(tt.docstatus, tt.invoice))

			actions := view.Actions()
			if tt.want {
				require.Len(t, actions, 1)
				assert.Equal(t, LabelGenerateInvoice, actions[0].Label)
				assert.Equal(t, "generate-invoice", actions[0].Slug)
			} else {
				assert.Empty(t, actions)
			}
		})
	}
}

func TestDonationController_ActivationIssuesOneCall(t *testing.T) {
	caller := replying(map[string]interface{}{}, nil)
	view := refreshed(t, caller, donationRecord(1, nil))

	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Equal(t, MethodGenerateInvoice, call.Method)
	assert.Equal(t, entity.DoctypeDonation, call.Doctype)
	assert.Equal(t, "DON-2026-00001", call.Name)
	assert.Equal(t, map[string]interface{}{"save": true}, call.Args)
}

func TestDonationController_ReloadsWhenInvoiced(t *testing.T) {
	caller := replying(map[string]interface{}{"invoice": "INV-0001"}, nil)
	view := refreshed(t, caller, donationRecord(1, nil))

	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	assert.Equal(t, 1, view.Reloads())
	assert.Empty(t, view.Errors())
}

func TestDonationController_NoReloadWithoutInvoice(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"empty payload", map[string]interface{}{}},
		{"nil payload", nil},
		{"empty invoice", map[string]interface{}{"invoice": ""}},
		{"other keys only", map[string]interface{}{"grand_total": 500.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := replying(tt.payload, nil)
			view := refreshed(t, caller, donationRecord(1, nil))

			require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

			assert.Equal(t, 0, view.Reloads())
			assert.Empty(t, view.Errors())
			assert.Len(t, caller.calls, 1)
		})
	}
}

func TestDonationController_FreezeAroundCall(t *testing.T) {
	t.Run("frozen while in flight, unfrozen after success", func(t *testing.T) {
		var view *RecordingView
		var frozenDuringCall bool
		caller := &mockCaller{CallFunc: func(ctx context.Context, req CallRequest) (*CallResponse, error) {
			frozenDuringCall = view.Frozen()
			return &CallResponse{Payload: map[string]interface{}{"invoice": "SINV-2026-00001"}}, nil
		}}
		view = refreshed(t, caller, donationRecord(1, nil))

		require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

		assert.True(t, frozenDuringCall)
		assert.False(t, view.Frozen())
		assert.Equal(t, []string{MsgCreatingDonationInvoice}, view.FreezeMessages())
	})

	t.Run("unfrozen and error surfaced after failure", func(t *testing.T) {
		callErr := errors.New("connection refused")
		caller := replying(nil, callErr)
		view := refreshed(t, caller, donationRecord(1, nil))

		err := view.Activate(context.Background(), "generate-invoice")

		assert.ErrorIs(t, err, callErr)
		assert.False(t, view.Frozen())
		assert.Equal(t, 0, view.Reloads())
		require.Len(t, view.Errors(), 1)
		assert.ErrorIs(t, view.Errors()[0], callErr)
		assert.Len(t, caller.calls, 1)
	})
}

func TestDonationController_SecondActivationWhileFrozen(t *testing.T) {
	var view *RecordingView
	var secondErr error
	caller := &mockCaller{CallFunc: func(ctx context.Context, req CallRequest) (*CallResponse, error) {
		secondErr = view.Activate(ctx, "generate-invoice")
		return &CallResponse{}, nil
	}}
	view = refreshed(t, caller, donationRecord(1, nil))

	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	assert.ErrorIs(t, secondErr, ErrFrozen)
	assert.Len(t, caller.calls, 1)
}

func TestDonationController_ActionHiddenAfterInvoiceSet(t *testing.T) {
	rec := donationRecord(1, nil)
	reloaded := donationRecord(1, "SINV-2026-00001")

	registry := NewRegistry(nil)
	caller := replying(map[string]interface{}{"invoice": "SINV-2026-00001"}, nil)
	NewDonationController(caller, nil, nil).Register(registry)

	view, err := registry.OpenView(context.Background(), rec, func(ctx context.Context) (*Record, error) { return reloaded, nil })
	require.NoError(t, err)
	require.Len(t, view.Actions(), 1)

	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	assert.Equal(t, reloaded, view.Record())
	assert.Equal(t, 1, view.Reloads())
	assert.Empty(t, view.Actions())

	err = view.Activate(context.Background(), "generate-invoice")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Len(t, caller.calls, 1)
}

func TestDonationController_ActionKeptWhenReloadStillUninvoiced(t *testing.T) {
	registry := NewRegistry(nil)
	caller := replying(map[string]interface{}{"invoice": "SINV-2026-00001"}, nil)
	NewDonationController(caller, nil, nil).Register(registry)

	view, err := registry.OpenView(context.Background(), donationRecord(1, nil), func(ctx context.Context) (*Record, error) {
		return donationRecord(1, ""), nil
	})
	require.NoError(t, err)
	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	require.Len(t, view.Actions(), 1)
	assert.Equal(t, "generate-invoice", view.Actions()[0].Slug)
}

func TestDonationController_ConcurrentActivationRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	registry := NewRegistry(nil)
	view, err := registry.OpenView(context.Background(), &Record{Doctype: "Note", Name: "N-1"}, nil)
	require.NoError(t, err)
	view.AddAction("Slow", func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- view.Activate(context.Background(), "slow") }()
	<-started

	assert.ErrorIs(t, view.Activate(context.Background(), "slow"), ErrFrozen)

	close(release)
	require.NoError(t, <-done)
	assert.NoError(t, view.Activate(context.Background(), "slow"))
}

func TestDonationController_TranslatesFreezeMessage(t *testing.T) {
	tr, err := NewCatalog("es")
	require.NoError(t, err)

	registry := NewRegistry(nil)
	NewDonationController(replying(nil, nil), tr, nil).Register(registry)

	rec := donationRecord(1, nil)
	view := NewRecordingView(rec, nil)
	require.NoError(t, registry.Trigger(context.Background(), EventRefresh, rec, view))
	require.NoError(t, view.Activate(context.Background(), "generate-invoice"))

	assert.Equal(t, []string{"Creando factura de donación"}, view.FreezeMessages())
}
