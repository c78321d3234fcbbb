package timetable

import (
	"math/rand/v2"
	"slices"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// preferredPositions are the per-tier lesson positions tried first on a day.
var preferredPositions = map[schedule.Tier][]int{
	schedule.TierVeryHard: {1, 2},
	schedule.TierHard:     {2, 3},
	schedule.TierMedium:   {3, 4},
	schedule.TierEasy:     {4, 5, 6, 7},
}

// RandomSource shuffles lesson units on the fallback path. *rand.Rand
// satisfies it.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
}

type globalSource struct{}

func (globalSource) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewSeededSource returns a reproducible RandomSource.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator builds timetables.
type Generator struct {
	random RandomSource
}

// NewGenerator creates a generator. A nil source uses the process-wide
// random generator.
func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{random: src}
}

// lessonUnit is one hour of a subject awaiting placement.
type lessonUnit struct {
	subject    string
	difficulty schedule.Tier
	order      int // expansion index within its subject
}

func expand(subjects []schedule.Subject) []lessonUnit {
	var units []lessonUnit
	for _, s := range subjects {
		for i := 0; i < s.HoursPerWeek; i++ {
			units = append(units, lessonUnit{subject: s.Name, difficulty: s.Difficulty, order: i})
		}
	}
	return units
}

// Generate lays out subjects over the week. With difficultyAware set, each
// subject's Difficulty steers placement; otherwise the fallback shuffle is
// used and the result is not reproducible unless the source is seeded.
func (g *Generator) Generate(subjects []schedule.Subject, difficultyAware bool) Timetable {
	if difficultyAware {
		return g.generateByDifficulty(subjects)
	}
	return g.generateShuffled(subjects)
}

func (g *Generator) generateByDifficulty(subjects []schedule.Subject) Timetable {
	tt := newTimetable(true)

	units := expand(subjects)
	slices.SortStableFunc(units, func(a, b lessonUnit) int {
		if a.difficulty != b.difficulty {
			return int(b.difficulty) - int(a.difficulty)
		}
		return a.order - b.order
	})

	var pools [schedule.DaysPerWeek]map[schedule.Tier][]int
	var used [schedule.DaysPerWeek]map[int]bool
	for d := range pools {
		pools[d] = make(map[schedule.Tier][]int, len(preferredPositions))
		for tier, positions := range preferredPositions {
			pools[d][tier] = slices.Clone(positions)
		}
		used[d] = make(map[int]bool, schedule.LessonsPerDay)
	}

	// take assigns pos on day d and withdraws it from every tier pool of that day.
	take := func(d, pos int) {
		used[d][pos] = true
		for tier, pool := range pools[d] {
			pools[d][tier] = slices.DeleteFunc(pool, func(p int) bool { return p == pos })
		}
	}

	day := 0
	for _, u := range units {
		target, pos := day, 0

		if pool := pools[day][u.difficulty]; len(pool) > 0 {
			pos = pool[0]
		} else if free := freePosition(used[day]); free > 0 {
			pos = free
		} else {
			// Week overloaded: spill onto the next day's first lesson even if taken.
			target, pos = (day+1)%schedule.DaysPerWeek, 1
		}

		take(target, pos)
		tt.Days[target].Lessons = append(tt.Days[target].Lessons, Lesson{
			Position:   pos,
			Subject:    u.subject,
			Difficulty: u.difficulty,
		})

		// The pointer moves after every unit, wherever it landed.
		day = (day + 1) % schedule.DaysPerWeek
	}

	for i := range tt.Days {
		slices.SortStableFunc(tt.Days[i].Lessons, func(a, b Lesson) int {
			return a.Position - b.Position
		})
	}
	tt.computeStats()
	return tt
}

func freePosition(used map[int]bool) int {
	for pos := 1; pos <= schedule.LessonsPerDay; pos++ {
		if !used[pos] {
			return pos
		}
	}
	return 0
}

func (g *Generator) generateShuffled(subjects []schedule.Subject) Timetable {
	tt := newTimetable(false)

	units := expand(subjects)
	g.random.Shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })

	for i, u := range units {
		d := i % schedule.DaysPerWeek
		tt.Days[d].Lessons = append(tt.Days[d].Lessons, Lesson{
			Position:   len(tt.Days[d].Lessons) + 1,
			Subject:    u.subject,
			Difficulty: u.difficulty,
		})
	}
	tt.computeStats()
	return tt
}
