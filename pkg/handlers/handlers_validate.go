package handlers

import (
	"fmt"
	"net/http"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ValidateInput handles the JSON-based validation request
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	s, err := scheduler.FromInput(input, scheduler.WithLogger(h.Logger))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if input.Weeks > h.MaxWeeks {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": fmt.Sprintf("at most %d weeks can be generated", h.MaxWeeks),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": capacityWarnings(s.Tasks(), len(input.People)),
		"stats": gin.H{
			"people_count": len(input.People),
			"task_count":   len(input.Tasks),
			"start_week":   s.StartWeek().ID(),
		},
	})
}

// capacityWarnings flags configurations that need more people than the
// roster has, which would end the timeline on its first such week.
func capacityWarnings(tasks []models.Task, people int) []string {
	weekly, monthly := 0, 0
	for _, t := range tasks {
		monthly += t.PeopleRequired
		if !t.IsMonthly() {
			weekly += t.PeopleRequired
		}
	}

	warnings := []string{}
	if weekly > people {
		warnings = append(warnings, fmt.Sprintf("weekly tasks need %d people but only %d are configured", weekly, people))
	} else if monthly > people {
		warnings = append(warnings, fmt.Sprintf("start-of-month weeks need %d people but only %d are configured", monthly, people))
	}
	return warnings
}
