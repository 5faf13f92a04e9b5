package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

func TestState_IsValid(t *testing.T) {
	assert.True(t, StateDraft.IsValid())
	assert.True(t, StateCancelled.IsValid())
	assert.False(t, State("PENDING").IsValid())
	assert.False(t, State("").IsValid())
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateCancelled.IsTerminal())
	assert.False(t, StateInvoiced.IsTerminal())
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name     string
		donation entity.Donation
		want     State
	}{
		{"draft", entity.Donation{DocStatus: entity.DocStatusDraft}, StateDraft},
		{"draft with invoice field", entity.Donation{DocStatus: entity.DocStatusDraft, Invoice: "ACC-SINV-0001"}, StateDraft},
		{"submitted", entity.Donation{DocStatus: entity.DocStatusSubmitted}, StateSubmitted},
		{"invoiced", entity.Donation{DocStatus: entity.DocStatusSubmitted, Invoice: "ACC-SINV-0001"}, StateInvoiced},
		{"cancelled", entity.Donation{DocStatus: entity.DocStatusCancelled, Invoice: "ACC-SINV-0001"}, StateCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(&tt.donation))
		})
	}
}

func TestBuilder_PanicsOnUnknownState(t *testing.T) {
	b := NewBuilder()
	assert.Panics(t, func() { b.Configure(State("NOPE")) })
	assert.Panics(t, func() { b.Configure(StateDraft).Permit(TriggerSubmit, State("NOPE")) })
	assert.Panics(t, func() { b.Build(State("")) })
}

func TestMachine_GuardsTriedInOrder(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder()
	b.Configure(StateSubmitted).
		PermitIf(TriggerInvoice, StateCancelled, func(context.Context) bool { return false }).
		PermitIf(TriggerInvoice, StateInvoiced, func(context.Context) bool { return true })

	m := b.Build(StateSubmitted)
	require.NoError(t, m.Fire(ctx, TriggerInvoice))
	assert.Equal(t, StateInvoiced, m.State())
}

func TestMachine_BuildIsIsolatedFromBuilder(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateDraft).Permit(TriggerSubmit, StateSubmitted)
	m := b.Build(StateDraft)

	b.Configure(StateDraft).Permit(TriggerMarkPaid, StateDraft)

	assert.Equal(t, []Trigger{TriggerSubmit}, m.PermittedTriggers())
	assert.False(t, m.CanFire(TriggerMarkPaid))
}

func TestDonationLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("draft submits", func(t *testing.T) {
		d := &entity.Donation{DocStatus: entity.DocStatusDraft}
		m := DonationLifecycle(d)

		assert.Equal(t, []Trigger{TriggerMarkPaid, TriggerSubmit}, m.PermittedTriggers())
		require.NoError(t, m.Fire(ctx, TriggerSubmit))
		assert.Equal(t, StateSubmitted, m.State())
	})

	t.Run("draft cannot be invoiced", func(t *testing.T) {
		m := DonationLifecycle(&entity.Donation{DocStatus: entity.DocStatusDraft, Paid: true})

		err := m.Fire(ctx, TriggerInvoice)
		require.ErrorIs(t, err, ErrInvalidTransition)

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, StateDraft, te.From)
		assert.Equal(t, TriggerInvoice, te.Trigger)
		assert.Equal(t, StateDraft, m.State())
	})

	t.Run("submitted twice", func(t *testing.T) {
		m := DonationLifecycle(&entity.Donation{DocStatus: entity.DocStatusSubmitted})
		assert.ErrorIs(t, m.Fire(ctx, TriggerSubmit), ErrInvalidTransition)
	})

	t.Run("invoice needs payment details", func(t *testing.T) {
		d := &entity.Donation{DocStatus: entity.DocStatusSubmitted}
		m := DonationLifecycle(d)

		assert.ErrorIs(t, m.Fire(ctx, TriggerInvoice), ErrGuardFailed)
		assert.Equal(t, StateSubmitted, m.State())

		d.Paid = true
		require.NoError(t, m.Fire(ctx, TriggerInvoice))
		assert.Equal(t, StateInvoiced, m.State())
	})

	t.Run("invoiced cannot be invoiced again", func(t *testing.T) {
		m := DonationLifecycle(&entity.Donation{DocStatus: entity.DocStatusSubmitted, Amount: 10, Invoice: "ACC-SINV-0001"})
		assert.ErrorIs(t, m.Fire(ctx, TriggerInvoice), ErrInvalidTransition)
		assert.NoError(t, m.Fire(ctx, TriggerMarkPaid))
	})

	t.Run("cancelled accepts nothing", func(t *testing.T) {
		m := DonationLifecycle(&entity.Donation{DocStatus: entity.DocStatusCancelled})
		assert.Empty(t, m.PermittedTriggers())
		assert.ErrorIs(t, m.Fire(ctx, TriggerMarkPaid), ErrInvalidTransition)
	})
}
