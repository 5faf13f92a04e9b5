package workflow

import "github.com/garyjia/donation-desk/internal/domain/entity"

// State is a donation's position in its lifecycle
type State string

const (
	StateDraft     State = "DRAFT"
	StateSubmitted State = "SUBMITTED"
	StateInvoiced  State = "INVOICED"
	StateCancelled State = "CANCELLED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSubmitted: true,
	StateInvoiced:  true,
	StateCancelled: true,
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal reports whether no trigger can leave s
func (s State) IsTerminal() bool {
	return s == StateCancelled
}

// StateOf derives the lifecycle state from the stored document.
func StateOf(d *entity.Donation) State {
	switch {
	case d.DocStatus == entity.DocStatusCancelled:
		return StateCancelled
	case d.DocStatus == entity.DocStatusDraft:
		return StateDraft
	case d.Invoice != "":
		return StateInvoiced
	default:
		return StateSubmitted
	}
}
