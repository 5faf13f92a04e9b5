package workflow

import (
	"context"
	"fmt"
	"sort"
)

// GuardFunc decides whether a configured transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachine tracks the current state and validates transitions
type StateMachine interface {
	State() State
	CanFire(trigger Trigger) bool
	Fire(ctx context.Context, trigger Trigger) error
	PermittedTriggers() []Trigger
}

type transition struct {
	to    State
	guard GuardFunc
}

// Builder collects transitions per state before building machines.
type Builder struct {
	transitions map[State]map[Trigger][]transition
}

// StateConfiguration adds transitions leaving one state
type StateConfiguration struct {
	builder *Builder
	from    State
}

func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger][]transition)}
}

// Configure panics on an unknown state; lifecycles are fixed at compile time.
func (b *Builder) Configure(state State) *StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.transitions[state]; !ok {
		b.transitions[state] = make(map[Trigger][]transition)
	}
	return &StateConfiguration{builder: b, from: state}
}

func (c *StateConfiguration) Permit(trigger Trigger, to State) *StateConfiguration {
	return c.PermitIf(trigger, to, nil)
}

// PermitIf registers a transition taken only when guard returns true.
// Transitions for the same trigger are tried in registration order.
func (c *StateConfiguration) PermitIf(trigger Trigger, to State, guard GuardFunc) *StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	byTrigger := c.builder.transitions[c.from]
	byTrigger[trigger] = append(byTrigger[trigger], transition{to: to, guard: guard})
	return c
}

// Build returns a machine starting at initial. Later changes to the builder
// do not affect machines already built.
func (b *Builder) Build(initial State) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}

	copied := make(map[State]map[Trigger][]transition, len(b.transitions))
	for state, byTrigger := range b.transitions {
		inner := make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			inner[trigger] = append([]transition(nil), ts...)
		}
		copied[state] = inner
	}
	return &stateMachine{current: initial, transitions: copied}
}

type stateMachine struct {
	current     State
	transitions map[State]map[Trigger][]transition
}

func (m *stateMachine) State() State {
	return m.current
}

// CanFire does not evaluate guards.
func (m *stateMachine) CanFire(trigger Trigger) bool {
	return len(m.transitions[m.current][trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	ts := m.transitions[m.current][trigger]
	if len(ts) == 0 {
		return &TransitionError{From: m.current, Trigger: trigger, Err: ErrInvalidTransition}
	}
	for _, t := range ts {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}
	return &TransitionError{From: m.current, Trigger: trigger, Err: ErrGuardFailed}
}

// PermittedTriggers is sorted so callers get a stable order.
func (m *stateMachine) PermittedTriggers() []Trigger {
	byTrigger := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
