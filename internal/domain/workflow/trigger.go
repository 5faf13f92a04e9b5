package workflow

// Trigger is an operation that moves a donation between states
type Trigger string

const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerMarkPaid Trigger = "MARK_PAID"
	TriggerInvoice  Trigger = "INVOICE"
)

func (t Trigger) String() string {
	return string(t)
}
