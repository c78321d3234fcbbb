// Package session keeps per-user collection state between chat messages.
package session

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// Session is one user's collected data and dialogue position.
type Session struct {
	ID         string
	Classes    []string
	Schedule   schedule.ClassSchedule
	Difficulty *schedule.DifficultyTable // nil until configured
	State      State
	UpdatedAt  time.Time
}

// New returns an idle session with an empty schedule.
func New(id string) *Session {
	return &Session{
		ID:       id,
		Schedule: schedule.ClassSchedule{},
		State:    Idle{},
	}
}

// StartCollection replaces classes, clears the schedule and waits for the
// first class's subjects.
func (s *Session) StartCollection(classes []string) {
	s.Classes = slices.Clone(classes)
	s.Schedule = schedule.ClassSchedule{}
	s.State = AwaitSubjects{ClassIndex: 0}
}

// ClearSchedule drops classes and subjects. The difficulty table is kept.
func (s *Session) ClearSchedule() {
	s.Classes = nil
	s.Schedule = schedule.ClassSchedule{}
}

// HasSchedule reports whether any class has stored subjects.
func (s *Session) HasSchedule() bool {
	return s != nil && len(s.Schedule) > 0
}

// ScheduledClasses returns class names with stored subjects, in class-list
// order followed by any classes missing from the list.
func (s *Session) ScheduledClasses() []string {
	var out []string
	seen := make(map[string]bool, len(s.Schedule))
	for _, c := range s.Classes {
		if _, ok := s.Schedule[c]; ok && !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	var rest []string
	for c := range s.Schedule {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	cp := &Session{
		ID:         s.ID,
		Classes:    slices.Clone(s.Classes),
		Schedule:   make(schedule.ClassSchedule, len(s.Schedule)),
		Difficulty: s.Difficulty.Clone(),
		State:      cloneState(s.State),
		UpdatedAt:  s.UpdatedAt,
	}
	for class, subjects := range s.Schedule {
		cp.Schedule[class] = slices.Clone(subjects)
	}
	return cp
}

func cloneState(st State) State {
	if as, ok := st.(AwaitSubjects); ok && as.Pending != nil {
		p := *as.Pending
		p.Subjects = slices.Clone(p.Subjects)
		as.Pending = &p
		return as
	}
	if st == nil {
		return Idle{}
	}
	return st
}

type sessionJSON struct {
	ID         string                    `json:"id"`
	Classes    []string                  `json:"classes"`
	Schedule   schedule.ClassSchedule    `json:"schedule"`
	Difficulty *schedule.DifficultyTable `json:"difficulty,omitempty"`
	State      stateJSON                 `json:"state"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		ID:         s.ID,
		Classes:    s.Classes,
		Schedule:   s.Schedule,
		Difficulty: s.Difficulty,
		State:      encodeState(s.State),
		UpdatedAt:  s.UpdatedAt,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := decodeState(raw.State)
	if err != nil {
		return err
	}
	if raw.Schedule == nil {
		raw.Schedule = schedule.ClassSchedule{}
	}
	*s = Session{
		ID:         raw.ID,
		Classes:    raw.Classes,
		Schedule:   raw.Schedule,
		Difficulty: raw.Difficulty,
		State:      st,
		UpdatedAt:  raw.UpdatedAt,
	}
	return nil
}
