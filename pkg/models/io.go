package models

// TaskInput is a task as it appears in requests and rotation files
type TaskInput struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	People int    `json:"people" yaml:"people" toml:"people"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
}

// PauseInput removes Person from the assignable pool for Weeks weeks
// starting at Week
type PauseInput struct {
	Person string `json:"person" yaml:"person" toml:"person"`
	Week   string `json:"week" yaml:"week" toml:"week"`
	Weeks  int    `json:"weeks,omitempty" yaml:"weeks,omitempty" toml:"weeks,omitempty"`
}

// SkipInput drops Weeks weeks starting at Week from the schedule
type SkipInput struct {
	Week  string `json:"week" yaml:"week" toml:"week"`
	Weeks int    `json:"weeks,omitempty" yaml:"weeks,omitempty" toml:"weeks,omitempty"`
}

// ScoringParams holds the tunable constants of the scoring heuristic
type ScoringParams struct {
	// Monthly tasks divide weeks-since-done and multiply times-done by these.
	MonthlyWeeksDamping   float64 `json:"monthly_weeks_damping" yaml:"monthly_weeks_damping" toml:"monthly_weeks_damping"`
	MonthlyTimesAmplifier float64 `json:"monthly_times_amplifier" yaml:"monthly_times_amplifier" toml:"monthly_times_amplifier"`

	RecentTaskWeeks    float64 `json:"recent_task_weeks" yaml:"recent_task_weeks" toml:"recent_task_weeks"`
	RecentTaskFactor   float64 `json:"recent_task_factor" yaml:"recent_task_factor" toml:"recent_task_factor"`
	StaleTaskNumerator float64 `json:"stale_task_numerator" yaml:"stale_task_numerator" toml:"stale_task_numerator"`

	TimesDoneBase float64 `json:"times_done_base" yaml:"times_done_base" toml:"times_done_base"`

	VeryRecentAnyWeeks  float64 `json:"very_recent_any_weeks" yaml:"very_recent_any_weeks" toml:"very_recent_any_weeks"`
	VeryRecentAnyFactor float64 `json:"very_recent_any_factor" yaml:"very_recent_any_factor" toml:"very_recent_any_factor"`
	RecentAnyWeeks      float64 `json:"recent_any_weeks" yaml:"recent_any_weeks" toml:"recent_any_weeks"`
	RecentAnyFactor     float64 `json:"recent_any_factor" yaml:"recent_any_factor" toml:"recent_any_factor"`

	// ComboPenalty is added for every incompatible pair sharing a task.
	ComboPenalty float64 `json:"combo_penalty" yaml:"combo_penalty" toml:"combo_penalty"`
}

// DefaultScoringParams returns the constants the engine ships with
func DefaultScoringParams() ScoringParams {
	return ScoringParams{
		MonthlyWeeksDamping:   6,
		MonthlyTimesAmplifier: 10,
		RecentTaskWeeks:       7,
		RecentTaskFactor:      5,
		StaleTaskNumerator:    2,
		TimesDoneBase:         1.5,
		VeryRecentAnyWeeks:    2,
		VeryRecentAnyFactor:   10,
		RecentAnyWeeks:        3,
		RecentAnyFactor:       3,
		ComboPenalty:          100000,
	}
}

// ScheduleInput is the configuration a timeline is generated from
type ScheduleInput struct {
	People    []string    `json:"people" yaml:"people" toml:"people"`
	Tasks     []TaskInput `json:"tasks" yaml:"tasks" toml:"tasks"`
	StartWeek string      `json:"start_week" yaml:"start_week" toml:"start_week"`
	Weeks     int         `json:"weeks,omitempty" yaml:"weeks,omitempty" toml:"weeks,omitempty"`
	Seed      *uint32     `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`

	// week -> task -> people
	LockedWeeks map[string]map[string][]string `json:"locked_weeks,omitempty" yaml:"locked_weeks,omitempty" toml:"locked_weeks,omitempty"`
	// week -> people
	Leaves    map[string][]string `json:"leaves,omitempty" yaml:"leaves,omitempty" toml:"leaves,omitempty"`
	Entrances map[string][]string `json:"entrances,omitempty" yaml:"entrances,omitempty" toml:"entrances,omitempty"`

	Pauses []PauseInput `json:"pauses,omitempty" yaml:"pauses,omitempty" toml:"pauses,omitempty"`
	Skips  []SkipInput  `json:"skips,omitempty" yaml:"skips,omitempty" toml:"skips,omitempty"`

	// pairs of people that should never share a task
	Incompatible [][]string `json:"incompatible,omitempty" yaml:"incompatible,omitempty" toml:"incompatible,omitempty"`

	Scoring *ScoringParams `json:"scoring,omitempty" yaml:"scoring,omitempty" toml:"scoring,omitempty"`
}

// DefaultWeeks is how many weeks are generated when a request does not say
const DefaultWeeks = 27

// WeekResult is one generated week ready for display
type WeekResult struct {
	Week      string     `json:"week"`
	Locked    bool       `json:"locked,omitempty"`
	Assignees [][]string `json:"assignees"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	Tasks         []string                      `json:"tasks"`
	Weeks         []WeekResult                  `json:"weeks"`
	Requested     int                           `json:"requested"`
	Truncated     bool                          `json:"truncated"`
	Reason        string                        `json:"reason,omitempty"`
	FairnessScore float64                       `json:"fairness_score"`
	Counters      map[string]map[string]Counter `json:"counters,omitempty"`
}

// DefaultScheduleInput returns the sample house rotation
func DefaultScheduleInput() ScheduleInput {
	return ScheduleInput{
		People: []string{
			"Eva", "Gabriele", "Ivo", "Meera", "Marko", "Lucas", "Gilles",
			"Estephania", "Dimitra", "Danai", "Kris", "Alex", "Michelle", "Diego",
		},
		Tasks: []TaskInput{
			{Name: "Living Room", People: 2, Kind: string(RepeatWeekly)},
			{Name: "Toilets", People: 1, Kind: string(RepeatWeekly)},
			{Name: "Bathroom", People: 1, Kind: string(RepeatWeekly)},
			{Name: "Showers", People: 1, Kind: string(RepeatWeekly)},
			{Name: "Hallways", People: 1, Kind: string(RepeatWeeklyWithMonthly)},
			{Name: "Kitchen", People: 3, Kind: string(RepeatMonthly)},
			{Name: "Laundry Room", People: 1, Kind: string(RepeatMonthly)},
		},
		StartWeek: "2024-09-02",
		Weeks:     DefaultWeeks,
	}
}
