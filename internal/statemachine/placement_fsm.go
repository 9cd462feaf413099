package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// Placement states
const (
	StateUnassigned = "unassigned"
	StateAssigned   = "assigned"
)

// Placement events
const (
	EventAdmit    = "admit"
	EventTransfer = "transfer"
	EventRelease  = "release"
)

// PlacementFSM models the placement lifecycle of a tracked entity. The state
// is derived from the ledger (assigned when an open record exists), never
// stored; the machine only guards which ledger operations are legal.
type PlacementFSM struct {
	fsm *fsm.FSM
}

// NewPlacementFSM creates a placement state machine starting at state
func NewPlacementFSM(state string) *PlacementFSM {
	return &PlacementFSM{
		fsm: fsm.NewFSM(
			state,
			fsm.Events{
				{Name: EventAdmit, Src: []string{StateUnassigned}, Dst: StateAssigned},
				{Name: EventTransfer, Src: []string{StateAssigned}, Dst: StateAssigned},
				{Name: EventRelease, Src: []string{StateAssigned}, Dst: StateUnassigned},
			},
			fsm.Callbacks{},
		),
	}
}

// Admit transitions an unassigned entity into a department
func (p *PlacementFSM) Admit(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventAdmit); err != nil {
		return fmt.Errorf("cannot admit in state %s: %w", p.fsm.Current(), err)
	}
	return nil
}

// Transfer moves an assigned entity between departments. The destination
// state equals the source state, so the library's no-transition result is
// not an error here.
func (p *PlacementFSM) Transfer(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventTransfer); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return fmt.Errorf("cannot transfer in state %s: %w", p.fsm.Current(), err)
	}
	return nil
}

// Release closes an entity's current placement
func (p *PlacementFSM) Release(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventRelease); err != nil {
		return fmt.Errorf("cannot release in state %s: %w", p.fsm.Current(), err)
	}
	return nil
}

// Current returns the machine's current state
func (p *PlacementFSM) Current() string {
	return p.fsm.Current()
}

// CanRelease reports whether a release event is legal from the current state
func (p *PlacementFSM) CanRelease() bool {
	return p.fsm.Can(EventRelease)
}
