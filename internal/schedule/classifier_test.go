package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

func table(entries ...schedule.DifficultyEntry) *schedule.DifficultyTable {
	t := &schedule.DifficultyTable{}
	for _, e := range entries {
		t.Set(e.Fragment, e.Tier)
	}
	return t
}

func TestSubstringClassifier(t *testing.T) {
	tbl := table(
		schedule.DifficultyEntry{Fragment: "математика", Tier: schedule.TierVeryHard},
		schedule.DifficultyEntry{Fragment: "язык", Tier: schedule.TierMedium},
	)

	tests := []struct {
		subject string
		want    schedule.Tier
	}{
		{"Математика", schedule.TierVeryHard},
		{"Прикладная математика", schedule.TierVeryHard},
		{"Русский язык", schedule.TierMedium},
		{"Физкультура", schedule.TierEasy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, schedule.SubstringClassifier.Classify(tt.subject, tbl), tt.subject)
	}
}

func TestSubstringClassifier_FirstMatchWins(t *testing.T) {
	tbl := table(
		schedule.DifficultyEntry{Fragment: "язык", Tier: schedule.TierEasy},
		schedule.DifficultyEntry{Fragment: "английский язык", Tier: schedule.TierHard},
	)
	assert.Equal(t, schedule.TierEasy, schedule.SubstringClassifier.Classify("Английский язык", tbl))
	assert.Equal(t, schedule.TierHard, schedule.LongestMatchClassifier.Classify("Английский язык", tbl))
}

func TestClassifiers_NilTable(t *testing.T) {
	for _, c := range []schedule.Classifier{
		schedule.SubstringClassifier,
		schedule.ExactClassifier,
		schedule.LongestMatchClassifier,
	} {
		assert.Equal(t, schedule.TierEasy, c.Classify("Математика", nil))
	}
}

func TestExactClassifier(t *testing.T) {
	tbl := table(schedule.DifficultyEntry{Fragment: "химия", Tier: schedule.TierHard})
	assert.Equal(t, schedule.TierHard, schedule.ExactClassifier.Classify(" Химия ", tbl))
	assert.Equal(t, schedule.TierEasy, schedule.ExactClassifier.Classify("Органическая химия", tbl))
}

func TestClassifierByName(t *testing.T) {
	for _, name := range []string{"", "substring", "exact", "LONGEST"} {
		c, ok := schedule.ClassifierByName(name)
		require.True(t, ok, name)
		assert.NotNil(t, c)
	}
	_, ok := schedule.ClassifierByName("fuzzy")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tbl := table(schedule.DifficultyEntry{Fragment: "математика", Tier: schedule.TierVeryHard})
	in := []schedule.Subject{{Name: "Математика", HoursPerWeek: 5}, {Name: "Труд", HoursPerWeek: 1}}

	out := schedule.Classify(schedule.SubstringClassifier, in, tbl)
	assert.Equal(t, schedule.TierVeryHard, out[0].Difficulty)
	assert.Equal(t, schedule.TierEasy, out[1].Difficulty)
	assert.Equal(t, schedule.TierEasy, in[0].Difficulty, "input must not be mutated")
}

func TestDifficultyTable_Clone(t *testing.T) {
	orig := table(schedule.DifficultyEntry{Fragment: "химия", Tier: schedule.TierHard})
	cp := orig.Clone()
	cp.Set("химия", schedule.TierEasy)

	tier, _ := orig.Get("химия")
	assert.Equal(t, schedule.TierHard, tier)

	var nilTable *schedule.DifficultyTable
	assert.Nil(t, nilTable.Clone())
	assert.Equal(t, 0, nilTable.Len())
}
