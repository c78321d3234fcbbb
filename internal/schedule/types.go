// Package schedule holds the collected school schedule model: classes, their
// weekly subject hours and the subject difficulty table, plus the text grammars
// used to build them from chat messages.
package schedule

import "math"

// Tier is a subject difficulty level, 0 (easiest) to 3 (hardest).
type Tier int

const (
	TierEasy Tier = iota
	TierMedium
	TierHard
	TierVeryHard
)

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	return t >= TierEasy && t <= TierVeryHard
}

// Label returns the Russian level label users type for t.
func (t Tier) Label() string {
	switch t {
	case TierVeryHard:
		return LevelVeryHard
	case TierHard:
		return LevelHard
	case TierMedium:
		return LevelMedium
	default:
		return LevelEasy
	}
}

// Level labels accepted in difficulty lines.
const (
	LevelVeryHard = "очень сложный"
	LevelHard     = "сложный"
	LevelMedium   = "средний"
	LevelEasy     = "легкий"
)

// Subject is one subject taught to a class.
type Subject struct {
	Name         string `json:"name"`
	HoursPerWeek int    `json:"hours_per_week"`
	Difficulty   Tier   `json:"difficulty"`
}

// TotalHours sums the weekly hours of subjects. The sum saturates at
// math.MaxInt instead of wrapping.
func TotalHours(subjects []Subject) int {
	total := 0
	for _, s := range subjects {
		if s.HoursPerWeek > 0 && total > math.MaxInt-s.HoursPerWeek {
			return math.MaxInt
		}
		total += s.HoursPerWeek
	}
	return total
}

// ClassSchedule maps a class name to its subjects. Class order lives in the
// owning session's class list.
type ClassSchedule map[string][]Subject

// DifficultyEntry maps a lower-cased subject name fragment to a tier.
type DifficultyEntry struct {
	Fragment string `json:"fragment"`
	Tier     Tier   `json:"tier"`
}

// DifficultyTable is an insertion-ordered fragment -> tier mapping.
type DifficultyTable struct {
	Entries []DifficultyEntry `json:"entries"`
}

// Set inserts fragment or updates its tier in place, keeping the original
// insertion position.
func (t *DifficultyTable) Set(fragment string, tier Tier) {
	for i := range t.Entries {
		if t.Entries[i].Fragment == fragment {
			t.Entries[i].Tier = tier
			return
		}
	}
	t.Entries = append(t.Entries, DifficultyEntry{Fragment: fragment, Tier: tier})
}

// Get returns the tier stored for an exact fragment.
func (t *DifficultyTable) Get(fragment string) (Tier, bool) {
	if t == nil {
		return TierEasy, false
	}
	for _, e := range t.Entries {
		if e.Fragment == fragment {
			return e.Tier, true
		}
	}
	return TierEasy, false
}

// Len returns the number of entries; a nil table has none.
func (t *DifficultyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// Clone returns a deep copy of t.
func (t *DifficultyTable) Clone() *DifficultyTable {
	if t == nil {
		return nil
	}
	return &DifficultyTable{Entries: append([]DifficultyEntry(nil), t.Entries...)}
}
