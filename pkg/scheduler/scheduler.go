package scheduler

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/random"
)

// DefaultSpreads are the candidate pool slacks tried in order
var DefaultSpreads = []int{3, 5, 7}

// Assigner handles the logic of assigning people to one week's tasks
type Assigner struct {
	Source    *random.Source
	Heuristic Heuristic
	Combo     ComboScore
	Spreads   []int
}

// NewAssigner creates an assigner with the default spreads
func NewAssigner(src *random.Source, heuristic Heuristic, combo ComboScore) *Assigner {
	return &Assigner{
		Source:    src,
		Heuristic: heuristic,
		Combo:     combo,
		Spreads:   DefaultSpreads,
	}
}

// candidate is a person with their score for one task
type candidate struct {
	person models.Person
	score  float64
}

// NextWeek picks assignees for every task from people. Counters are only
// read; committing the result is up to the caller.
func (a *Assigner) NextWeek(people []models.Person, tasks []models.Task, counters Counters) (models.Assignment, error) {
	if len(tasks) == 0 {
		return models.Assignment{}, nil
	}

	ordered := slices.Clone(tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return taskWeight(ordered[i]) < taskWeight(ordered[j])
	})

	for _, spread := range a.Spreads {
		candidates := a.candidates(people, tasks, counters, spread)

		s := &search{
			tasks:      ordered,
			candidates: candidates,
			combo:      a.Combo,
			bestScore:  math.Inf(1),
			taken:      make(map[models.Person]bool, len(people)),
			current:    make(models.Assignment, len(tasks)),
		}
		s.walk(0, 0)

		if s.best != nil {
			return s.best, nil
		}
	}

	return nil, fmt.Errorf("%w: %d people for %d tasks", ErrNoFeasibleAssignment, len(people), len(tasks))
}

// candidates builds the bounded, score-ranked pool of people for every task
func (a *Assigner) candidates(people []models.Person, tasks []models.Task, counters Counters, spread int) map[models.TaskName][]candidate {
	out := make(map[models.TaskName][]candidate, len(tasks))
	for _, task := range tasks {
		pool := make([]candidate, 0, len(people))
		for _, person := range random.Permute(a.Source, people) {
			pool = append(pool, candidate{person: person, score: a.Heuristic(person, task, counters)})
		}
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].score < pool[j].score })

		if limit := task.PeopleRequired + spread; len(pool) > limit {
			pool = pool[:limit]
		}
		out[task.Name] = pool
	}
	return out
}

// taskWeight is the search order key; tasks are walked in ascending weight
func taskWeight(task models.Task) int {
	w := 2 * task.PeopleRequired
	if task.IsMonthly() {
		w++
	}
	return w
}

// search is the state of one backtracking pass
type search struct {
	tasks      []models.Task
	candidates map[models.TaskName][]candidate
	combo      ComboScore

	taken   map[models.Person]bool
	current models.Assignment

	best      models.Assignment
	bestScore float64
}

func (s *search) walk(depth int, total float64) {
	// scores are non-negative, so a partial total can only grow
	if total >= s.bestScore {
		return
	}
	if depth == len(s.tasks) {
		s.best = s.current.Clone()
		s.bestScore = total
		return
	}

	task := s.tasks[depth]
	for subset := range random.Subsets(task.PeopleRequired, s.candidates[task.Name]) {
		if s.anyTaken(subset) {
			continue
		}

		assignees := make([]models.Person, len(subset))
		score := 0.0
		for i, c := range subset {
			assignees[i] = c.person
			score += c.score
		}
		if s.combo != nil {
			score += s.combo(assignees)
		}

		for _, p := range assignees {
			s.taken[p] = true
		}
		s.current[task.Name] = assignees

		s.walk(depth+1, total+score)

		delete(s.current, task.Name)
		for _, p := range assignees {
			delete(s.taken, p)
		}
	}
}

func (s *search) anyTaken(subset []candidate) bool {
	for _, c := range subset {
		if s.taken[c.person] {
			return true
		}
	}
	return false
}
