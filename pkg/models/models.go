package models

import (
	"slices"
	"sort"
)

// Person identifies one rotation participant
type Person string

// TaskName identifies a task
type TaskName string

// Repeat describes how often a task recurs
type Repeat string

const (
	RepeatWeekly            Repeat = "weekly"
	RepeatMonthly           Repeat = "monthly"
	RepeatWeeklyWithMonthly Repeat = "weekly and monthly"
)

// Task represents a recurring chore that needs PeopleRequired assignees
type Task struct {
	Name           TaskName `json:"name"`
	PeopleRequired int      `json:"people"`
	Repeat         Repeat   `json:"kind"`
}

// IsMonthly reports whether the task only runs on start-of-month weeks
func (t Task) IsMonthly() bool {
	return t.Repeat == RepeatMonthly
}

// Counter tracks how often and how recently a person did a task
type Counter struct {
	TimesDone      int `json:"times_done"`
	WeeksSinceDone int `json:"weeks_since_done"`
}

// NeverDoneWeeks is the WeeksSinceDone of a counter nobody has touched yet
const NeverDoneWeeks = 100

// NewCounter returns the counter of a task that was never done
func NewCounter() Counter {
	return Counter{TimesDone: 0, WeeksSinceDone: NeverDoneWeeks}
}

// Assignment maps each task to the people doing it in one week
type Assignment map[TaskName][]Person

// Clone returns a deep copy of the assignment
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for name, people := range a {
		out[name] = slices.Clone(people)
	}
	return out
}

// Ordered lists assignees following the task order, with an empty slice for
// tasks nobody was assigned to
func (a Assignment) Ordered(tasks []Task) [][]Person {
	out := make([][]Person, len(tasks))
	for i, task := range tasks {
		people := a[task.Name]
		if people == nil {
			people = []Person{}
		}
		out[i] = people
	}
	return out
}

// People returns every assigned person, sorted
func (a Assignment) People() []Person {
	var out []Person
	for _, people := range a {
		out = append(out, people...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TaskNames returns the names of tasks in order
func TaskNames(tasks []Task) []TaskName {
	names := make([]TaskName, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

// People converts plain strings into persons
func People(names ...string) []Person {
	out := make([]Person, len(names))
	for i, n := range names {
		out[i] = Person(n)
	}
	return out
}
