package timetable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// ErrNothingToExport is returned for an empty class list.
var ErrNothingToExport = errors.New("no timetables to export")

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "-", `\`, "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// ExportXLSX renders one worksheet per class: a header row of weekdays, one
// row per lesson position, and a statistics row per day.
func ExportXLSX(classes []ClassTimetable) ([]byte, error) {
	if len(classes) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	seen := make(map[string]int)
	for i, ct := range classes {
		name := sheetName(ct.Class, seen)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet for %s: %w", ct.Class, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet for %s: %w", ct.Class, err)
		}
		if err := writeSheet(f, name, ct.Timetable); err != nil {
			return nil, fmt.Errorf("write sheet for %s: %w", ct.Class, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, tt Timetable) error {
	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	if err := set(1, 1, "№"); err != nil {
		return err
	}
	for pos := 1; pos <= lastPosition(tt); pos++ {
		if err := set(1, pos+1, pos); err != nil {
			return err
		}
	}

	statsRow := lastPosition(tt) + 2
	if err := set(1, statsRow, "Сложных / лёгких"); err != nil {
		return err
	}

	for i, day := range tt.Days {
		col := i + 2
		if err := set(col, 1, day.Weekday.String()); err != nil {
			return err
		}
		for pos, names := range groupByPosition(day.Lessons) {
			if err := set(col, pos+1, strings.Join(names, " / ")); err != nil {
				return err
			}
		}
		if err := set(col, statsRow, fmt.Sprintf("%d / %d", day.Stats.Difficult, day.Stats.Easy)); err != nil {
			return err
		}
	}
	return nil
}

func lastPosition(tt Timetable) int {
	last := schedule.LessonsPerDay
	for _, d := range tt.Days {
		for _, l := range d.Lessons {
			if l.Position > last {
				last = l.Position
			}
		}
	}
	return last
}

func groupByPosition(lessons []Lesson) map[int][]string {
	out := make(map[int][]string)
	for _, l := range lessons {
		out[l.Position] = append(out[l.Position], l.Subject)
	}
	return out
}

func sheetName(class string, seen map[string]int) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(class))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Класс"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	key := strings.ToLower(name)
	seen[key]++
	if n := seen[key]; n > 1 {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(name)
		if len(r)+len([]rune(suffix)) > maxSheetName {
			name = string(r[:maxSheetName-len([]rune(suffix))])
		}
		name += suffix
	}
	return name
}
