package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/rotation-api-go/pkg/models"
)

var (
	// ErrNoFeasibleAssignment is returned when no spread yields a complete week.
	ErrNoFeasibleAssignment = errors.New("no feasible assignment")

	// ErrMissingCounter marks an assignment entry without a fairness counter.
	ErrMissingCounter = errors.New("missing counter")

	// ErrInvalidInput is returned when a configuration cannot be turned into a schedule.
	ErrInvalidInput = errors.New("invalid schedule input")
)

// MissingCounterError names the (task, person) pair that had no counter
type MissingCounterError struct {
	Task   models.TaskName
	Person models.Person
}

func (e MissingCounterError) Error() string {
	return fmt.Sprintf("no counter for %s by %s", e.Task, e.Person)
}

func (e MissingCounterError) Unwrap() error { return ErrMissingCounter }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
