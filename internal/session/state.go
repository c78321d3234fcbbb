package session

import (
	"encoding/json"
	"fmt"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// State is the dialogue position of a session. The concrete types below are
// the only implementations; switch on them exhaustively.
type State interface {
	Name() string
	isState()
}

// Idle means no collection step is in progress.
type Idle struct{}

// AwaitClasses waits for the class list.
type AwaitClasses struct{}

// AwaitSubjects waits for the subject batch of Classes[ClassIndex]. Pending is
// set while an over-capacity batch awaits a yes/no acknowledgement.
type AwaitSubjects struct {
	ClassIndex int
	Pending    *PendingOverflow
}

// AwaitDifficulty waits for difficulty lines.
type AwaitDifficulty struct{}

// PendingOverflow is a parsed batch held back by the weekly capacity warning.
type PendingOverflow struct {
	Class      string             `json:"class"`
	Subjects   []schedule.Subject `json:"subjects"`
	TotalHours int                `json:"total_hours"`
}

func (Idle) Name() string            { return "idle" }
func (AwaitClasses) Name() string    { return "await_classes" }
func (AwaitSubjects) Name() string   { return "await_subjects" }
func (AwaitDifficulty) Name() string { return "await_difficulty" }

func (Idle) isState()            {}
func (AwaitClasses) isState()    {}
func (AwaitSubjects) isState()   {}
func (AwaitDifficulty) isState() {}

// IsIdle reports whether s is nil or Idle.
func IsIdle(s State) bool {
	if s == nil {
		return true
	}
	_, ok := s.(Idle)
	return ok
}

type stateJSON struct {
	Kind       string           `json:"kind"`
	ClassIndex int              `json:"class_index,omitempty"`
	Pending    *PendingOverflow `json:"pending,omitempty"`
}

func encodeState(s State) stateJSON {
	switch st := s.(type) {
	case AwaitClasses:
		return stateJSON{Kind: st.Name()}
	case AwaitSubjects:
		return stateJSON{Kind: st.Name(), ClassIndex: st.ClassIndex, Pending: st.Pending}
	case AwaitDifficulty:
		return stateJSON{Kind: st.Name()}
	default:
		return stateJSON{Kind: Idle{}.Name()}
	}
}

func decodeState(raw stateJSON) (State, error) {
	switch raw.Kind {
	case "", Idle{}.Name():
		return Idle{}, nil
	case AwaitClasses{}.Name():
		return AwaitClasses{}, nil
	case AwaitSubjects{}.Name():
		return AwaitSubjects{ClassIndex: raw.ClassIndex, Pending: raw.Pending}, nil
	case AwaitDifficulty{}.Name():
		return AwaitDifficulty{}, nil
	default:
		return nil, fmt.Errorf("unknown dialogue state %q", raw.Kind)
	}
}

// MarshalState encodes a state for storage.
func MarshalState(s State) ([]byte, error) {
	return json.Marshal(encodeState(s))
}

// UnmarshalState decodes a stored state.
func UnmarshalState(data []byte) (State, error) {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return decodeState(raw)
}
