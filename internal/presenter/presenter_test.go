package presenter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/p-n-ai/timetable-bot/internal/presenter"
	"github.com/p-n-ai/timetable-bot/internal/schedule"
	"github.com/p-n-ai/timetable-bot/internal/timetable"
)

func TestScheduleView_ListsSubjectsInOrder(t *testing.T) {
	sched := schedule.ClassSchedule{
		"5А": {
			{Name: "Математика", HoursPerWeek: 5},
			{Name: "Русский язык", HoursPerWeek: 4},
			{Name: "Труд", HoursPerWeek: 1},
		},
	}

	out := presenter.ScheduleView([]string{"5А"}, sched)

	want := []string{"1. Математика: 5 ч/нед", "2. Русский язык: 4 ч/нед", "3. Труд: 1 ч/нед"}
	last := -1
	for _, line := range want {
		idx := strings.Index(out, line)
		if idx < 0 {
			t.Fatalf("ScheduleView() missing %q in:\n%s", line, out)
		}
		if idx < last {
			t.Errorf("%q appears out of order", line)
		}
		last = idx
	}
	if !strings.Contains(out, "Всего часов в неделю: 10") {
		t.Errorf("ScheduleView() missing total:\n%s", out)
	}
	if !strings.Contains(out, "Всего классов: 1") {
		t.Errorf("ScheduleView() missing class count:\n%s", out)
	}
}

func TestScheduleView_SkipsClassesWithoutSubjects(t *testing.T) {
	out := presenter.ScheduleView([]string{"5А", "5Б"}, schedule.ClassSchedule{
		"5А": {{Name: "Химия", HoursPerWeek: 2}},
	})
	if strings.Contains(out, "Класс 5Б") {
		t.Errorf("ScheduleView() should skip 5Б:\n%s", out)
	}
}

func TestSubjectsError(t *testing.T) {
	malformed := presenter.SubjectsError(&schedule.MalformedLineError{Line: "Химия(abc)"})
	if !strings.Contains(malformed, "Химия(abc)") {
		t.Errorf("SubjectsError() should name the line, got %q", malformed)
	}

	empty := presenter.SubjectsError(&schedule.EmptyInputError{What: "subjects"})
	if !strings.Contains(empty, "Не указаны предметы") {
		t.Errorf("SubjectsError() = %q", empty)
	}
}

func TestDifficultyError(t *testing.T) {
	out := presenter.DifficultyError(&schedule.UnknownDifficultyLevelError{Subject: "спорт", Level: "нормальный"})
	if !strings.Contains(out, "спорт") || !strings.Contains(out, "нормальный") {
		t.Errorf("DifficultyError() = %q", out)
	}
	if out := presenter.DifficultyError(errors.New("x")); out == "" {
		t.Error("DifficultyError() returned empty text")
	}
}

func TestDifficultyView(t *testing.T) {
	if out := presenter.DifficultyView(nil); !strings.Contains(out, "не задана") {
		t.Errorf("DifficultyView(nil) = %q", out)
	}

	tbl := &schedule.DifficultyTable{}
	tbl.Set("математика", schedule.TierVeryHard)
	if out := presenter.DifficultyView(tbl); !strings.Contains(out, "математика: очень сложный") {
		t.Errorf("DifficultyView() = %q", out)
	}
}

func TestEcho(t *testing.T) {
	if got := presenter.Echo("привет"); got != "Эхо: привет" {
		t.Errorf("Echo() = %q", got)
	}
	if got := presenter.Echo("  "); !strings.HasPrefix(got, "Используйте") {
		t.Errorf("Echo(blank) = %q", got)
	}
}

func TestTimetables_EmptyDays(t *testing.T) {
	tt := timetable.NewGenerator(nil).Generate(nil, true)
	out := presenter.Timetables([]timetable.ClassTimetable{{Class: "5А", Timetable: tt}})
	if n := strings.Count(out, "нет уроков"); n != 5 {
		t.Errorf("expected 5 empty days, got %d:\n%s", n, out)
	}
}

func TestTimetables_ShowsLessons(t *testing.T) {
	tt := timetable.NewGenerator(nil).Generate([]schedule.Subject{
		{Name: "Математика", HoursPerWeek: 1, Difficulty: schedule.TierVeryHard},
	}, true)
	out := presenter.Timetables([]timetable.ClassTimetable{{Class: "5А", Timetable: tt}})
	if !strings.Contains(out, "1. 🔴 Математика") {
		t.Errorf("Timetables() missing lesson:\n%s", out)
	}
	if !strings.Contains(out, "Понедельник") {
		t.Errorf("Timetables() missing weekday:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	sched := schedule.ClassSchedule{
		"5А": {{Name: "Математика", HoursPerWeek: 5}},
		"5Б": {{Name: "Труд", HoursPerWeek: 1}, {Name: "ИЗО", HoursPerWeek: 1}},
	}
	out := presenter.Summary([]string{"5А", "5Б"}, sched, nil)
	for _, want := range []string{"Классов: 2", "Всего предметов: 3", "Всего часов: 5", "Всего часов: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary() missing %q:\n%s", want, out)
		}
	}
}
