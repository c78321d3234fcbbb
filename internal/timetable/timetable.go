// Package timetable turns a class's subject list into a weekly lesson layout.
//
// The difficulty-aware path is a deterministic greedy heuristic that puts
// harder subjects into earlier lessons. Without a difficulty table the units
// are shuffled and dealt round-robin across the week.
package timetable

import (
	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// Weekday indexes the five school days, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = [schedule.DaysPerWeek]string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница",
}

// String returns the Russian weekday name.
func (d Weekday) String() string {
	if d < Monday || d > Friday {
		return "?"
	}
	return weekdayNames[d]
}

// Lesson is one placed hour of a subject.
type Lesson struct {
	Position   int           `json:"position"`
	Subject    string        `json:"subject"`
	Difficulty schedule.Tier `json:"difficulty"`
}

// Balance is a qualitative load flag.
type Balance string

const (
	BalanceGood  Balance = "good"
	BalanceHeavy Balance = "heavy"
)

// Stats counts difficult (tier >= 2) and easy (tier 0) lessons.
type Stats struct {
	Total     int     `json:"total"`
	Difficult int     `json:"difficult"`
	Easy      int     `json:"easy"`
	Balance   Balance `json:"balance"`
}

func (s *Stats) add(l Lesson) {
	s.Total++
	switch {
	case l.Difficulty >= schedule.TierHard:
		s.Difficult++
	case l.Difficulty == schedule.TierEasy:
		s.Easy++
	}
}

func (s *Stats) settle() {
	s.Balance = BalanceGood
	if s.Difficult > s.Easy {
		s.Balance = BalanceHeavy
	}
}

// Day holds one weekday's lessons ordered by position.
type Day struct {
	Weekday Weekday  `json:"weekday"`
	Lessons []Lesson `json:"lessons"`
	Stats   Stats    `json:"stats"`
}

// Empty reports whether the day has no lessons.
func (d Day) Empty() bool { return len(d.Lessons) == 0 }

// Timetable is one class's week.
type Timetable struct {
	Days            [schedule.DaysPerWeek]Day `json:"days"`
	Stats           Stats                     `json:"stats"`
	DifficultyAware bool                      `json:"difficulty_aware"`
}

// LessonCount returns the number of placed lessons across the week.
func (t Timetable) LessonCount() int {
	n := 0
	for _, d := range t.Days {
		n += len(d.Lessons)
	}
	return n
}

// ClassTimetable pairs a class name with its generated week.
type ClassTimetable struct {
	Class     string
	Timetable Timetable
}

func newTimetable(aware bool) Timetable {
	var t Timetable
	t.DifficultyAware = aware
	for i := range t.Days {
		t.Days[i].Weekday = Weekday(i)
		t.Days[i].Lessons = []Lesson{}
	}
	return t
}

func (t *Timetable) computeStats() {
	t.Stats = Stats{}
	for i := range t.Days {
		day := &t.Days[i]
		day.Stats = Stats{}
		for _, l := range day.Lessons {
			day.Stats.add(l)
			t.Stats.add(l)
		}
		day.Stats.settle()
	}
	t.Stats.settle()
}
