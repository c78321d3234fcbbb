package presenter

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/timetable-bot/internal/timetable"
)

var tierMarks = [...]string{"🟢", "🟡", "🟠", "🔴"}

func tierMark(l timetable.Lesson) string {
	if l.Difficulty < 0 || int(l.Difficulty) >= len(tierMarks) {
		return ""
	}
	return tierMarks[l.Difficulty]
}

func statsLine(s timetable.Stats) string {
	balance := "✅ сбалансировано"
	if s.Balance == timetable.BalanceHeavy {
		balance = "⚠️ перегружено"
	}
	return fmt.Sprintf("сложных %d, лёгких %d — %s", s.Difficult, s.Easy, balance)
}

// Timetables renders generated weeks for every class.
func Timetables(classes []timetable.ClassTimetable) string {
	var b strings.Builder
	b.WriteString("🗓 Расписание уроков\n")
	for _, ct := range classes {
		b.WriteString("\n")
		b.WriteString(classTimetable(ct))
	}
	return strings.TrimRight(b.String(), "\n")
}

func classTimetable(ct timetable.ClassTimetable) string {
	var b strings.Builder
	tt := ct.Timetable

	fmt.Fprintf(&b, "🎓 Класс %s\n", ct.Class)
	if !tt.DifficultyAware {
		b.WriteString("(сложность не задана — уроки распределены случайно, /set_difficult)\n")
	}
	for _, day := range tt.Days {
		fmt.Fprintf(&b, "\n📅 %s\n", day.Weekday)
		if day.Empty() {
			b.WriteString("  нет уроков\n")
			continue
		}
		for _, l := range day.Lessons {
			if tt.DifficultyAware {
				fmt.Fprintf(&b, "  %d. %s %s\n", l.Position, tierMark(l), l.Subject)
			} else {
				fmt.Fprintf(&b, "  %d. %s\n", l.Position, l.Subject)
			}
		}
		if tt.DifficultyAware {
			fmt.Fprintf(&b, "  ⚖️ %s\n", statsLine(day.Stats))
		}
	}
	fmt.Fprintf(&b, "\n📊 Итого за неделю: %d уроков, %s\n", tt.Stats.Total, statsLine(tt.Stats))
	return b.String()
}
