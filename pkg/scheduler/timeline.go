package scheduler

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/arnavshah/rotation-api-go/pkg/models"
)

// WeekAssignment is one generated week
type WeekAssignment struct {
	Week       models.Week
	Assignment models.Assignment
	Locked     bool
}

// Timeline produces assignments week after week, indefinitely, until the
// search fails. It owns its roster, counters and random source and is not
// safe for concurrent use.
type Timeline struct {
	tasks     []models.Task
	overrides overrides
	logger    *slog.Logger
	assigner  *Assigner

	week     models.Week
	roster   []models.Person
	counters Counters

	done bool
	err  error
}

// Next generates the next week. It returns false once the timeline has
// ended; Err reports why.
func (t *Timeline) Next() (WeekAssignment, bool) {
	if t.done {
		return WeekAssignment{}, false
	}

	for {
		week := t.week
		t.applyRosterChanges(week)

		if t.overrides.skipped[week] {
			t.week = week.Next()
			continue
		}

		assignment, locked := t.overrides.locked[week]
		if locked {
			assignment = assignment.Clone()
		} else {
			var err error
			assignment, err = t.assigner.NextWeek(
				available(t.overrides.pauses[week], t.roster),
				eligibleTasks(t.tasks, week),
				t.counters,
			)
			if err != nil {
				t.logger.Error("timeline ended", "week", week.ID(), "error", err)
				t.done = true
				t.err = err
				return WeekAssignment{}, false
			}
		}

		UpdateCounters(t.counters, assignment, t.logger)
		t.week = week.Next()

		return WeekAssignment{Week: week, Assignment: assignment, Locked: locked}, true
	}
}

// applyRosterChanges processes the leaves and entrances of week
func (t *Timeline) applyRosterChanges(week models.Week) {
	if leaving := t.overrides.leaves[week]; len(leaving) > 0 {
		t.roster = slices.DeleteFunc(t.roster, func(p models.Person) bool {
			return slices.Contains(leaving, p)
		})
	}

	for _, person := range t.overrides.entrances[week] {
		if slices.Contains(t.roster, person) {
			t.logger.Debug("ignoring entrance of active person", "person", person, "week", week.ID())
			continue
		}
		t.roster = append(t.roster, person)
		AddPerson(person, t.counters)
	}
}

// eligibleTasks drops monthly tasks outside the first week of a month
func eligibleTasks(tasks []models.Task, week models.Week) []models.Task {
	if week.IsStartOfMonth() {
		return tasks
	}
	return slices.DeleteFunc(slices.Clone(tasks), models.Task.IsMonthly)
}

// Err returns the error that ended the timeline, if any
func (t *Timeline) Err() error { return t.err }

// All adapts the timeline to a range-over-func iterator
func (t *Timeline) All() iter.Seq[WeekAssignment] {
	return func(yield func(WeekAssignment) bool) {
		for {
			wa, ok := t.Next()
			if !ok || !yield(wa) {
				return
			}
		}
	}
}

// Take generates up to n weeks. Fewer are returned if the timeline ends.
func (t *Timeline) Take(n int) []WeekAssignment {
	out := make([]WeekAssignment, 0, n)
	for len(out) < n {
		wa, ok := t.Next()
		if !ok {
			break
		}
		out = append(out, wa)
	}
	return out
}

// Counters returns a copy of the current fairness counters
func (t *Timeline) Counters() Counters { return t.counters.Clone() }

// Roster returns the people currently in the rotation
func (t *Timeline) Roster() []models.Person { return slices.Clone(t.roster) }
