package schedule

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is matched by every EmptyInputError.
var ErrEmptyInput = errors.New("empty input")

// EmptyInputError means a class list or subject batch parsed to nothing.
type EmptyInputError struct {
	What string // "classes", "subjects" or "difficulty"
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no %s found in input", e.What)
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// MalformedLineError is a subject line whose hours are not a positive integer.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line %q: %s", e.Line, e.Reason)
}

// UnknownDifficultyLevelError is a difficulty line with an unrecognised level.
type UnknownDifficultyLevelError struct {
	Subject string
	Level   string
}

func (e *UnknownDifficultyLevelError) Error() string {
	return fmt.Sprintf("unknown difficulty level %q for subject %q", e.Level, e.Subject)
}

// HourOverflowWarning is advisory: a class needs more hours than the week holds.
type HourOverflowWarning struct {
	TotalHours int
	Capacity   int
}

func (w HourOverflowWarning) String() string {
	return fmt.Sprintf("%d weekly hours exceed capacity of %d", w.TotalHours, w.Capacity)
}

// Week geometry used for the advisory capacity check.
const (
	DaysPerWeek    = 5
	LessonsPerDay  = 7
	WeeklyCapacity = DaysPerWeek * LessonsPerDay
)

// CheckWeeklyHours returns a warning when total exceeds WeeklyCapacity.
func CheckWeeklyHours(total int) (HourOverflowWarning, bool) {
	if total > WeeklyCapacity {
		return HourOverflowWarning{TotalHours: total, Capacity: WeeklyCapacity}, true
	}
	return HourOverflowWarning{}, false
}
