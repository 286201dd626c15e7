package token

import "context"

// State es un estado del pipeline del token endpoint.
type State string

const (
	StateReceived      State = "received"
	StateDispatched    State = "dispatched"
	StateValidated     State = "validated"
	StateIssuing       State = "issuing"
	StateErrorBuilding State = "error_building"
	StateEnriching     State = "enriching"
	StateSerialized    State = "serialized"
)

// Terminal: Serialized es el único estado terminal (success o error).
func (s State) Terminal() bool { return s == StateSerialized }

var transitions = map[State][]State{
	StateReceived:      {StateDispatched, StateErrorBuilding},
	StateDispatched:    {StateValidated},
	StateValidated:     {StateIssuing, StateErrorBuilding},
	StateIssuing:       {StateEnriching},
	StateErrorBuilding: {StateEnriching},
	StateEnriching:     {StateSerialized},
}

// CanTransition indica si from → to es una transición válida.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Observer recibe cada transición. Se invoca de forma sincrónica en la
// goroutine del request; no debe bloquear.
type Observer interface {
	Transition(ctx context.Context, grantType string, from, to State)
}

// ObserverFunc adapta una función a Observer.
type ObserverFunc func(ctx context.Context, grantType string, from, to State)

func (f ObserverFunc) Transition(ctx context.Context, grantType string, from, to State) {
	f(ctx, grantType, from, to)
}
