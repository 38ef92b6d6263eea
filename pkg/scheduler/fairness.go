package scheduler

import (
	"maps"
	"math"
	"slices"

	"github.com/arnavshah/rotation-api-go/pkg/models"
)

// FairnessScore returns a percentage (0-100) representing how evenly each
// task has been spread over people. 100% is perfectly fair (Standard
// Deviation = 0). Tasks are scored separately and averaged in name order so
// the result is stable for equal counters.
func FairnessScore(counters Counters, people []models.Person) float64 {
	if len(people) == 0 || len(counters) == 0 {
		return 100.0
	}

	var total float64
	for _, task := range slices.Sorted(maps.Keys(counters)) {
		total += taskFairness(counters[task], people)
	}
	return total / float64(len(counters))
}

func taskFairness(perTask map[models.Person]models.Counter, people []models.Person) float64 {
	var sum float64
	for _, p := range people {
		sum += float64(perTask[p].TimesDone)
	}

	if sum == 0 {
		return 100.0 // nobody having done it yet is perfectly fair
	}

	mean := sum / float64(len(people))

	var varianceSum float64
	for _, p := range people {
		diff := float64(perTask[p].TimesDone) - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(people))
	stdDev := math.Sqrt(variance)

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// FairnessScore reports the fairness of the current roster
func (t *Timeline) FairnessScore() float64 {
	return FairnessScore(t.counters, t.roster)
}
