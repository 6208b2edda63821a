package navigator

import "fmt"

// State is a navigation state.
type State int

const (
	StateIdle State = iota
	StateMatching
	StateRedirecting
	StateValidating
	StateResolved
	StateFailed
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateMatching:    "matching",
	StateRedirecting: "redirecting",
	StateValidating:  "validating",
	StateResolved:    "resolved",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the navigation has ended.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateFailed
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown navigation state %q", text)
}

// allowed lists the legal moves of the state machine.
var allowed = map[State][]State{
	StateIdle:        {StateMatching, StateFailed},
	StateMatching:    {StateRedirecting, StateValidating, StateFailed},
	StateRedirecting: {StateMatching, StateFailed},
	StateValidating:  {StateResolved, StateFailed},
}

func canMove(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition records one state change of a navigation.
type Transition struct {
	From State `json:"from"`
	To   State `json:"to"`

	// URL is the location being processed when the move happened.
	URL string `json:"url,omitempty"`
}
