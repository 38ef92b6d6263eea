package scheduler

import (
	"math"
	"slices"

	"github.com/arnavshah/rotation-api-go/pkg/models"
)

// Heuristic scores a person for a task. Lower scores are preferred.
// Implementations must return non-negative values.
type Heuristic func(person models.Person, task models.Task, counters Counters) float64

// ComboScore penalizes a set of people sharing one task. Implementations must
// return non-negative values.
type ComboScore func(assignees []models.Person) float64

// Scorer is the default fairness heuristic
type Scorer struct {
	Params models.ScoringParams
}

// NewScorer returns a Scorer with the given params
func NewScorer(params models.ScoringParams) *Scorer {
	return &Scorer{Params: params}
}

// Score combines three factors: how recently the person did this task, how
// often compared to peers, and how recently they did anything at all.
func (s *Scorer) Score(person models.Person, task models.Task, counters Counters) float64 {
	p := s.Params

	counter, ok := counters.Get(task.Name, person)
	if !ok {
		counter = models.NewCounter()
	}
	timesDone := float64(counter.TimesDone) - averageTimesDone(counters[task.Name])
	weeksSinceDone := float64(counter.WeeksSinceDone)
	anyTask := float64(weeksSinceDoneAnyTask(person, counters))

	if task.IsMonthly() {
		weeksSinceDone /= p.MonthlyWeeksDamping
		timesDone *= p.MonthlyTimesAmplifier
	}

	var a float64
	if weeksSinceDone < p.RecentTaskWeeks {
		a = p.RecentTaskFactor
	} else {
		a = p.StaleTaskNumerator / weeksSinceDone
	}

	b := math.Pow(p.TimesDoneBase, timesDone)

	var c float64
	switch {
	case anyTask < p.VeryRecentAnyWeeks:
		c = p.VeryRecentAnyFactor
	case anyTask < p.RecentAnyWeeks:
		c = p.RecentAnyFactor
	default:
		c = 1 / anyTask
	}

	return 1 + a*b*c
}

func averageTimesDone(perTask map[models.Person]models.Counter) float64 {
	if len(perTask) == 0 {
		return 0
	}
	total := 0
	for _, counter := range perTask {
		total += counter.TimesDone
	}
	return float64(total) / float64(len(perTask))
}

func weeksSinceDoneAnyTask(person models.Person, counters Counters) int {
	lowest := models.NeverDoneWeeks
	found := false
	for _, perTask := range counters {
		counter, ok := perTask[person]
		if !ok {
			continue
		}
		if !found || counter.WeeksSinceDone < lowest {
			lowest = counter.WeeksSinceDone
			found = true
		}
	}
	return lowest
}

// Pair is two people that should not share a task
type Pair [2]models.Person

// ComboScorer penalizes incompatible pairs assigned to the same task
type ComboScorer struct {
	Pairs   []Pair
	Penalty float64
}

// Score adds Penalty for every configured pair fully present in assignees
func (c *ComboScorer) Score(assignees []models.Person) float64 {
	var total float64
	for _, pair := range c.Pairs {
		if slices.Contains(assignees, pair[0]) && slices.Contains(assignees, pair[1]) {
			total += c.Penalty
		}
	}
	return total
}
