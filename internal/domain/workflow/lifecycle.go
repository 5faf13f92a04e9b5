package workflow

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// DonationLifecycle builds a machine positioned at the donation's current
// state. Payment may be recorded at any point before cancellation; an
// invoice needs a submitted donation carrying payment details.
func DonationLifecycle(d *entity.Donation) StateMachine {
	hasPayment := func(context.Context) bool { return d.HasPaymentDetails() }

	b := NewBuilder()
	b.Configure(StateDraft).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerMarkPaid, StateDraft)
	b.Configure(StateSubmitted).
		Permit(TriggerMarkPaid, StateSubmitted).
		PermitIf(TriggerInvoice, StateInvoiced, hasPayment)
	b.Configure(StateInvoiced).
		Permit(TriggerMarkPaid, StateInvoiced)
	b.Configure(StateCancelled)

	return b.Build(StateOf(d))
}
