package dag

import (
	"encoding/json"
	"fmt"
)

// State is the state of a task instance or of a whole run.
type State uint32

const (
	StateNone State = iota
	StateScheduled
	StateRunning
	StateUpForRetry
	StateSuccess
	StateFailed
	StateUpstreamFailed
	StateShutdown
)

var stateNames = [...]string{
	StateNone:           "none",
	StateScheduled:      "scheduled",
	StateRunning:        "running",
	StateUpForRetry:     "up_for_retry",
	StateSuccess:        "success",
	StateFailed:         "failed",
	StateUpstreamFailed: "upstream_failed",
	StateShutdown:       "shutdown",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

func (s State) MarshalJSON() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unhandled State value %v in custom MarshalJSON() conversion", uint32(s))
	}
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	for i, n := range stateNames {
		if n == str {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", str)
}

// IsFinished is true for states that will not change again.
func (s State) IsFinished() bool {
	switch s {
	case StateSuccess, StateFailed, StateUpstreamFailed, StateShutdown:
		return true
	}
	return false
}
