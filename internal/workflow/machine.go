package workflow

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/spec-kit/permit-service/internal/domain"
)

// events converts domain.Transitions into looplab/fsm EventDesc format,
// grouping transitions that share an event and destination into one entry
// with multiple source states (cancel is reachable from three states).
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range domain.Transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Machine validates permit lifecycle transitions using looplab/fsm.
// A short-lived FSM instance is built per Apply call because looplab/fsm
// tracks the current state internally.
type Machine struct{}

// NewMachine creates the transition validator.
func NewMachine() *Machine {
	return &Machine{}
}

// Apply checks whether event is legal from the current status and returns the
// destination status. An illegal edge yields domain.InvalidTransitionError.
func (m *Machine) Apply(ctx context.Context, current domain.PermitStatus, event domain.TransitionEvent) (domain.PermitStatus, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.InvalidTransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return domain.PermitStatus(machine.Current()), nil
}
