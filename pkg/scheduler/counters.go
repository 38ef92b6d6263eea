package scheduler

import (
	"log/slog"
	"maps"

	"github.com/arnavshah/rotation-api-go/pkg/models"
)

// Counters holds the fairness counter of every (task, person) pair
type Counters map[models.TaskName]map[models.Person]models.Counter

// InitCounters creates a never-done counter for every task and person
func InitCounters(people []models.Person, tasks []models.TaskName) Counters {
	counters := make(Counters, len(tasks))
	for _, task := range tasks {
		perTask := make(map[models.Person]models.Counter, len(people))
		for _, person := range people {
			perTask[person] = models.NewCounter()
		}
		counters[task] = perTask
	}
	return counters
}

// Clone returns an independent copy
func (c Counters) Clone() Counters {
	out := make(Counters, len(c))
	for task, perTask := range c {
		out[task] = maps.Clone(perTask)
	}
	return out
}

// Get returns the counter for (task, person) and whether it exists
func (c Counters) Get(task models.TaskName, person models.Person) (models.Counter, bool) {
	counter, ok := c[task][person]
	return counter, ok
}

// UpdateCounters commits an assignment: every assignee's counter for the task
// is bumped and reset, then a week passes for every counter. Pairs without a
// counter are logged and skipped.
func UpdateCounters(counters Counters, assignment models.Assignment, logger *slog.Logger) []MissingCounterError {
	if logger == nil {
		logger = slog.Default()
	}

	var missing []MissingCounterError
	for task, people := range assignment {
		for _, person := range people {
			counter, ok := counters.Get(task, person)
			if !ok {
				err := MissingCounterError{Task: task, Person: person}
				logger.Error("skipping assignee", "error", err)
				missing = append(missing, err)
				continue
			}
			counter.TimesDone++
			counter.WeeksSinceDone = 0
			counters[task][person] = counter
		}
	}

	// a week passes for everybody
	for _, perTask := range counters {
		for person, counter := range perTask {
			counter.WeeksSinceDone++
			perTask[person] = counter
		}
	}

	return missing
}

// AddPerson seeds counters for someone joining the rotation so they start at
// the average of everyone else rather than at zero.
func AddPerson(person models.Person, counters Counters) {
	for task, perTask := range counters {
		others := 0
		total := 0
		for p, counter := range perTask {
			if p == person {
				continue
			}
			others++
			total += counter.TimesDone
		}

		timesDone := 0
		if others > 0 {
			timesDone = total / others
		}
		counters[task][person] = models.Counter{
			TimesDone:      timesDone,
			WeeksSinceDone: others,
		}
	}
}
