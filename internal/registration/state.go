// Package registration decides, per sender, whether a message comes from an
// unregistered number, a registration in progress, or a registered user.
package registration

// State represents a sender's position in the registration flow.
type State string

const (
	// StateUnregistered is the initial state of any unseen sender id.
	StateUnregistered State = "unregistered"
	// StateAwaitingName indicates the sender typed the registration keyword
	// and the bot is waiting for their display name.
	StateAwaitingName State = "awaiting_name"
	// StateRegistered is terminal; no transition leads out of it.
	StateRegistered State = "registered"
)

// validTransitions contains the permitted transitions of the flow.
var validTransitions = map[State][]State{
	StateUnregistered: {
		StateAwaitingName,
	},
	StateAwaitingName: {
		StateRegistered,
		// back to unregistered when an abandoned session expires
		StateUnregistered,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
