package scheduler

import (
	"testing"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	livingRoom = models.Task{Name: "Living Room", PeopleRequired: 2, Repeat: models.RepeatWeekly}
	toilets    = models.Task{Name: "Toilets", PeopleRequired: 1, Repeat: models.RepeatWeekly}
)

func newTestAssigner(seed uint32, combo ComboScore) *Assigner {
	return NewAssigner(random.NewSource(seed), NewScorer(models.DefaultScoringParams()).Score, combo)
}

func assertValidWeek(t *testing.T, people []models.Person, tasks []models.Task, a models.Assignment) {
	t.Helper()
	seen := map[models.Person]models.TaskName{}
	for _, task := range tasks {
		require.Len(t, a[task.Name], task.PeopleRequired, "headcount of %s", task.Name)
		for _, p := range a[task.Name] {
			require.Contains(t, people, p)
			prev, dup := seen[p]
			require.False(t, dup, "%s assigned to both %s and %s", p, prev, task.Name)
			seen[p] = task.Name
		}
	}
}

func TestNextWeek_AssignsEveryTask(t *testing.T) {
	people := models.People("A", "B", "C", "D")
	tasks := []models.Task{livingRoom, toilets}
	counters := InitCounters(people, models.TaskNames(tasks))

	a, err := newTestAssigner(1, nil).NextWeek(people, tasks, counters)

	require.NoError(t, err)
	assertValidWeek(t, people, tasks, a)
}

func TestNextWeek_DoesNotMutateCounters(t *testing.T) {
	people := models.People("A", "B", "C", "D", "E")
	tasks := []models.Task{livingRoom, toilets}
	counters := InitCounters(people, models.TaskNames(tasks))
	counters["Toilets"]["A"] = models.Counter{TimesDone: 3, WeeksSinceDone: 1}
	before := counters.Clone()

	_, err := newTestAssigner(1, nil).NextWeek(people, tasks, counters)

	require.NoError(t, err)
	assert.Equal(t, before, counters)
}

func TestNextWeek_PrefersLowestScores(t *testing.T) {
	people := models.People("A", "B", "C", "D")
	tasks := []models.Task{toilets}
	counters := InitCounters(people, models.TaskNames(tasks))
	for _, p := range models.People("A", "B", "C") {
		counters["Toilets"][p] = models.Counter{TimesDone: 2, WeeksSinceDone: 1}
	}

	a, err := newTestAssigner(9, nil).NextWeek(people, tasks, counters)

	require.NoError(t, err)
	assert.Equal(t, []models.Person{"D"}, a["Toilets"])
}

func TestNextWeek_AvoidsIncompatiblePairs(t *testing.T) {
	people := models.People("A", "B", "C", "D")
	tasks := []models.Task{livingRoom}
	combo := &ComboScorer{
		Pairs:   []Pair{{"A", "B"}, {"A", "C"}, {"A", "D"}, {"B", "C"}, {"B", "D"}},
		Penalty: 100000,
	}

	for seed := uint32(0); seed < 10; seed++ {
		counters := InitCounters(people, models.TaskNames(tasks))
		a, err := newTestAssigner(seed, combo.Score).NextWeek(people, tasks, counters)
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Person{"C", "D"}, a["Living Room"], "seed %d", seed)
	}
}

func TestNextWeek_NoFeasibleAssignment(t *testing.T) {
	people := models.People("A", "B")
	tasks := []models.Task{livingRoom, toilets}
	counters := InitCounters(people, models.TaskNames(tasks))

	_, err := newTestAssigner(1, nil).NextWeek(people, tasks, counters)

	require.ErrorIs(t, err, ErrNoFeasibleAssignment)
}

func TestNextWeek_WidensSpreadWhenNeeded(t *testing.T) {
	// with a zero spread both tasks see the same single best candidate
	people := models.People("A", "B")
	tasks := []models.Task{
		{Name: "One", PeopleRequired: 1},
		{Name: "Two", PeopleRequired: 1},
	}
	counters := InitCounters(people, models.TaskNames(tasks))
	counters["One"]["B"] = models.Counter{TimesDone: 5, WeeksSinceDone: 1}
	counters["Two"]["B"] = models.Counter{TimesDone: 5, WeeksSinceDone: 1}

	a := newTestAssigner(1, nil)
	a.Spreads = []int{0}
	_, err := a.NextWeek(people, tasks, counters)
	require.ErrorIs(t, err, ErrNoFeasibleAssignment)

	a.Spreads = []int{0, 1}
	got, err := a.NextWeek(people, tasks, counters)
	require.NoError(t, err)
	assertValidWeek(t, people, tasks, got)
}

func TestNextWeek_NoTasks(t *testing.T) {
	a, err := newTestAssigner(1, nil).NextWeek(models.People("A"), nil, Counters{})

	require.NoError(t, err)
	assert.Empty(t, a)
}

func TestNextWeek_Deterministic(t *testing.T) {
	people := models.People("A", "B", "C", "D", "E", "F", "G")
	tasks := []models.Task{livingRoom, toilets, {Name: "Kitchen", PeopleRequired: 3, Repeat: models.RepeatMonthly}}

	run := func() models.Assignment {
		counters := InitCounters(people, models.TaskNames(tasks))
		a, err := newTestAssigner(77, nil).NextWeek(people, tasks, counters)
		require.NoError(t, err)
		return a
	}

	assert.Equal(t, run(), run())
}

func TestTaskWeight(t *testing.T) {
	assert.Equal(t, 2, taskWeight(toilets))
	assert.Equal(t, 4, taskWeight(livingRoom))
	assert.Equal(t, 7, taskWeight(models.Task{PeopleRequired: 3, Repeat: models.RepeatMonthly}))
}
