package scheduler

import (
	"strings"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/random"
)

// FromInput validates a ScheduleInput and builds the schedule it describes,
// with all overrides registered.
func FromInput(in models.ScheduleInput, opts ...Option) (*Schedule, error) {
	cfg, err := configFromInput(in)
	if err != nil {
		return nil, err
	}
	s := NewSchedule(cfg, opts...)

	for id, tasks := range in.LockedWeeks {
		week, err := parseWeek(id)
		if err != nil {
			return nil, err
		}
		assignment := make(models.Assignment, len(tasks))
		for task, people := range tasks {
			assignment[models.TaskName(task)] = models.People(people...)
		}
		s.Lock(week, assignment)
	}

	for id, people := range in.Leaves {
		week, err := parseWeek(id)
		if err != nil {
			return nil, err
		}
		for _, p := range people {
			s.Leave(models.Person(p), week)
		}
	}

	for id, people := range in.Entrances {
		week, err := parseWeek(id)
		if err != nil {
			return nil, err
		}
		for _, p := range people {
			if strings.TrimSpace(p) == "" {
				return nil, invalidInput("empty person entering at %s", id)
			}
			s.Enter(models.Person(p), week)
		}
	}

	for _, pause := range in.Pauses {
		week, err := parseWeek(pause.Week)
		if err != nil {
			return nil, err
		}
		s.Pause(models.Person(pause.Person), week, atLeastOne(pause.Weeks))
	}

	for _, skip := range in.Skips {
		week, err := parseWeek(skip.Week)
		if err != nil {
			return nil, err
		}
		s.SkipWeek(week, atLeastOne(skip.Weeks))
	}

	return s, nil
}

func configFromInput(in models.ScheduleInput) (Config, error) {
	cfg := Config{
		Seed:    random.DefaultSeed,
		Scoring: models.DefaultScoringParams(),
	}
	if in.Seed != nil {
		cfg.Seed = *in.Seed
	}
	if in.Scoring != nil {
		if err := validateScoring(*in.Scoring); err != nil {
			return Config{}, err
		}
		cfg.Scoring = *in.Scoring
	}

	start, err := parseWeek(in.StartWeek)
	if err != nil {
		return Config{}, err
	}
	cfg.StartWeek = start

	seenPeople := make(map[string]bool, len(in.People))
	for _, p := range in.People {
		if strings.TrimSpace(p) == "" {
			return Config{}, invalidInput("empty person name")
		}
		if seenPeople[p] {
			return Config{}, invalidInput("duplicate person %q", p)
		}
		seenPeople[p] = true
		cfg.People = append(cfg.People, models.Person(p))
	}

	if len(in.Tasks) == 0 {
		return Config{}, invalidInput("at least one task is required")
	}
	seenTasks := make(map[string]bool, len(in.Tasks))
	for _, t := range in.Tasks {
		if strings.TrimSpace(t.Name) == "" {
			return Config{}, invalidInput("empty task name")
		}
		if seenTasks[t.Name] {
			return Config{}, invalidInput("duplicate task %q", t.Name)
		}
		if t.People < 1 {
			return Config{}, invalidInput("task %q needs at least one person", t.Name)
		}
		repeat, err := parseRepeat(t.Kind)
		if err != nil {
			return Config{}, err
		}
		seenTasks[t.Name] = true
		cfg.Tasks = append(cfg.Tasks, models.Task{
			Name:           models.TaskName(t.Name),
			PeopleRequired: t.People,
			Repeat:         repeat,
		})
	}

	for _, pair := range in.Incompatible {
		if len(pair) != 2 {
			return Config{}, invalidInput("incompatible entries must name two people, got %v", pair)
		}
		cfg.Pairs = append(cfg.Pairs, Pair{models.Person(pair[0]), models.Person(pair[1])})
	}

	return cfg, nil
}

func parseRepeat(kind string) (models.Repeat, error) {
	switch models.Repeat(kind) {
	case "", models.RepeatWeekly:
		return models.RepeatWeekly, nil
	case models.RepeatMonthly, models.RepeatWeeklyWithMonthly:
		return models.Repeat(kind), nil
	}
	return "", invalidInput("unknown task kind %q", kind)
}

func validateScoring(p models.ScoringParams) error {
	values := map[string]float64{
		"monthly_weeks_damping":   p.MonthlyWeeksDamping,
		"monthly_times_amplifier": p.MonthlyTimesAmplifier,
		"recent_task_weeks":       p.RecentTaskWeeks,
		"recent_task_factor":      p.RecentTaskFactor,
		"stale_task_numerator":    p.StaleTaskNumerator,
		"times_done_base":         p.TimesDoneBase,
		"very_recent_any_weeks":   p.VeryRecentAnyWeeks,
		"very_recent_any_factor":  p.VeryRecentAnyFactor,
		"recent_any_weeks":        p.RecentAnyWeeks,
		"recent_any_factor":       p.RecentAnyFactor,
		"combo_penalty":           p.ComboPenalty,
	}
	for name, v := range values {
		if v <= 0 {
			return invalidInput("scoring %s must be positive", name)
		}
	}
	return nil
}

func parseWeek(id string) (models.Week, error) {
	week, err := models.ParseWeek(id)
	if err != nil {
		return models.Week{}, invalidInput("%v", err)
	}
	return week, nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
