package schedule

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var levels = map[string]Tier{
	LevelVeryHard: TierVeryHard,
	LevelHard:     TierHard,
	LevelMedium:   TierMedium,
	LevelEasy:     TierEasy,
}

// Fold lower-cases s with Russian casing rules after NFC normalisation.
func Fold(s string) string {
	return cases.Lower(language.Russian).String(norm.NFC.String(s))
}

// ParseLevel maps a level label (any case, surrounding spaces allowed) to a tier.
func ParseLevel(label string) (Tier, bool) {
	t, ok := levels[strings.TrimSpace(Fold(label))]
	return t, ok
}

// ParseClassList splits input on commas when it contains one, otherwise on
// newlines. Fragments are trimmed and empty fragments dropped.
func ParseClassList(input string) ([]string, error) {
	input = strings.TrimSpace(input)

	sep := "\n"
	if strings.Contains(input, ",") {
		sep = ","
	}

	var classes []string
	for _, part := range strings.Split(input, sep) {
		if name := strings.TrimSpace(part); name != "" {
			classes = append(classes, name)
		}
	}
	if len(classes) == 0 {
		return nil, &EmptyInputError{What: "classes"}
	}
	return classes, nil
}

// ParseSubjects parses "<name>(<hours>)" lines. Lines without both
// parentheses are skipped. A line whose hours are not a positive integer
// aborts the whole batch, as does one that does not fit in 32 bits. Names are
// stored as typed. Returned subjects carry TierEasy; classification is the
// caller's job.
func ParseSubjects(input string) ([]Subject, error) {
	var subjects []Subject
	for _, line := range nonEmptyLines(input) {
		if !strings.Contains(line, "(") || !strings.Contains(line, ")") {
			continue
		}

		open := strings.Index(line, "(")
		name := strings.TrimSpace(line[:open])
		inner := line[open+1:]
		if end := strings.Index(inner, ")"); end >= 0 {
			inner = inner[:end]
		}

		hours, err := strconv.ParseInt(strings.TrimSpace(inner), 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return nil, &MalformedLineError{Line: line, Reason: "hours out of range"}
		}
		if err != nil {
			return nil, &MalformedLineError{Line: line, Reason: "hours must be an integer"}
		}
		if hours <= 0 {
			return nil, &MalformedLineError{Line: line, Reason: "hours must be positive"}
		}
		if name == "" {
			continue
		}

		subjects = append(subjects, Subject{Name: name, HoursPerWeek: int(hours)})
	}
	if len(subjects) == 0 {
		return nil, &EmptyInputError{What: "subjects"}
	}
	return subjects, nil
}

// ParseDifficulty parses "<name>: <level>" lines into a fresh table. Lines
// without a colon are skipped; an unknown level aborts the batch.
func ParseDifficulty(input string) (*DifficultyTable, error) {
	table := &DifficultyTable{}
	for _, line := range nonEmptyLines(input) {
		name, level, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(Fold(name))
		if name == "" {
			continue
		}

		tier, known := ParseLevel(level)
		if !known {
			return nil, &UnknownDifficultyLevelError{Subject: name, Level: strings.TrimSpace(Fold(level))}
		}
		table.Set(name, tier)
	}
	if table.Len() == 0 {
		return nil, &EmptyInputError{What: "difficulty"}
	}
	return table, nil
}

func nonEmptyLines(input string) []string {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
