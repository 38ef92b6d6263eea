package scheduler

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/random"
)

// Config is the already-validated configuration of a rotation
type Config struct {
	People    []models.Person
	Tasks     []models.Task
	StartWeek models.Week
	Seed      uint32
	Scoring   models.ScoringParams
	Pairs     []Pair
}

// Option customizes a Schedule
type Option func(*Schedule)

// WithLogger sets the logger used for skipped counters and terminated timelines
func WithLogger(logger *slog.Logger) Option {
	return func(s *Schedule) { s.logger = logger }
}

// WithHeuristic replaces the default Scorer
func WithHeuristic(h Heuristic) Option {
	return func(s *Schedule) { s.heuristic = h }
}

// WithSpreads replaces the default candidate pool spreads
func WithSpreads(spreads ...int) Option {
	return func(s *Schedule) { s.spreads = slices.Clone(spreads) }
}

// overrides are the manual changes layered on top of the generated rotation
type overrides struct {
	locked    map[models.Week]models.Assignment
	leaves    map[models.Week][]models.Person
	entrances map[models.Week][]models.Person
	pauses    map[models.Week][]models.Person
	skipped   map[models.Week]bool
}

func newOverrides() overrides {
	return overrides{
		locked:    make(map[models.Week]models.Assignment),
		leaves:    make(map[models.Week][]models.Person),
		entrances: make(map[models.Week][]models.Person),
		pauses:    make(map[models.Week][]models.Person),
		skipped:   make(map[models.Week]bool),
	}
}

func (o overrides) clone() overrides {
	locked := make(map[models.Week]models.Assignment, len(o.locked))
	for w, a := range o.locked {
		locked[w] = a.Clone()
	}
	cloneBag := func(bag map[models.Week][]models.Person) map[models.Week][]models.Person {
		out := make(map[models.Week][]models.Person, len(bag))
		for w, people := range bag {
			out[w] = slices.Clone(people)
		}
		return out
	}
	return overrides{
		locked:    locked,
		leaves:    cloneBag(o.leaves),
		entrances: cloneBag(o.entrances),
		pauses:    cloneBag(o.pauses),
		skipped:   maps.Clone(o.skipped),
	}
}

// Schedule is a rotation configuration plus its overrides. Overrides must be
// registered before Timeline is called; a timeline never sees overrides added
// after it was created.
type Schedule struct {
	cfg       Config
	overrides overrides

	logger    *slog.Logger
	heuristic Heuristic
	spreads   []int
}

// NewSchedule creates a schedule from cfg
func NewSchedule(cfg Config, opts ...Option) *Schedule {
	cfg.People = slices.Clone(cfg.People)
	cfg.Tasks = slices.Clone(cfg.Tasks)

	s := &Schedule{
		cfg:       cfg,
		overrides: newOverrides(),
		logger:    slog.Default(),
		spreads:   DefaultSpreads,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.heuristic == nil {
		s.heuristic = NewScorer(cfg.Scoring).Score
	}
	return s
}

// Tasks returns the configured tasks in display order
func (s *Schedule) Tasks() []models.Task { return slices.Clone(s.cfg.Tasks) }

// StartWeek returns the first week of the schedule
func (s *Schedule) StartWeek() models.Week { return s.cfg.StartWeek }

// Lock fixes the assignment of a week, bypassing the search
func (s *Schedule) Lock(week models.Week, assignment models.Assignment) *Schedule {
	s.overrides.locked[week] = assignment.Clone()
	return s
}

// Leave removes person from the roster starting at week
func (s *Schedule) Leave(person models.Person, week models.Week) *Schedule {
	s.overrides.leaves[week] = append(s.overrides.leaves[week], person)
	return s
}

// Enter adds person to the roster starting at week
func (s *Schedule) Enter(person models.Person, week models.Week) *Schedule {
	s.overrides.entrances[week] = append(s.overrides.entrances[week], person)
	return s
}

// Pause keeps person out of the assignable pool for numWeeks weeks starting
// at week. They stay on the roster and keep their counters.
func (s *Schedule) Pause(person models.Person, week models.Week, numWeeks int) *Schedule {
	for i := 0; i < numWeeks; i++ {
		w := week.Add(i)
		s.overrides.pauses[w] = append(s.overrides.pauses[w], person)
	}
	return s
}

// SkipWeek drops numWeeks weeks starting at week from the output
func (s *Schedule) SkipWeek(week models.Week, numWeeks int) *Schedule {
	for i := 0; i < numWeeks; i++ {
		s.overrides.skipped[week.Add(i)] = true
	}
	return s
}

// AvailablePeople filters out of roster whoever is paused during week
func (s *Schedule) AvailablePeople(week models.Week, roster []models.Person) []models.Person {
	return available(s.overrides.pauses[week], roster)
}

func available(paused, roster []models.Person) []models.Person {
	out := make([]models.Person, 0, len(roster))
	for _, person := range roster {
		if !slices.Contains(paused, person) {
			out = append(out, person)
		}
	}
	return out
}

// Timeline starts a fresh, deterministic run of the schedule
func (s *Schedule) Timeline() *Timeline {
	var combo ComboScore
	if len(s.cfg.Pairs) > 0 {
		combo = (&ComboScorer{Pairs: s.cfg.Pairs, Penalty: s.cfg.Scoring.ComboPenalty}).Score
	}

	src := random.NewSource(s.cfg.Seed)
	assigner := NewAssigner(src, s.heuristic, combo)
	assigner.Spreads = s.spreads

	return &Timeline{
		tasks:     s.cfg.Tasks,
		overrides: s.overrides.clone(),
		logger:    s.logger,
		assigner:  assigner,
		week:      s.cfg.StartWeek,
		roster:    slices.Clone(s.cfg.People),
		counters:  InitCounters(s.cfg.People, models.TaskNames(s.cfg.Tasks)),
	}
}
