package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/rotation-api-go/pkg/cache"
	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Generate(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.RecordUsage(c, len(resp.Weeks), len(input.People))
	c.JSON(http.StatusOK, resp)
}

// Generate runs a timeline for in and collects up to in.Weeks weeks. A
// timeline that ends early is reported as truncated, not as an error.
func (h *Handler) Generate(ctx context.Context, in models.ScheduleInput) (models.ScheduleResponse, error) {
	weeks := in.Weeks
	if weeks <= 0 {
		weeks = models.DefaultWeeks
	}
	if weeks > h.MaxWeeks {
		return models.ScheduleResponse{}, fmt.Errorf("%w: at most %d weeks can be generated", scheduler.ErrInvalidInput, h.MaxWeeks)
	}
	in.Weeks = weeks

	key, err := cache.Fingerprint(in)
	if err != nil {
		return models.ScheduleResponse{}, err
	}
	if resp, ok := h.Cache.Get(key); ok {
		h.Metrics.ObserveCache(true)
		return resp, nil
	}
	h.Metrics.ObserveCache(false)

	s, err := scheduler.FromInput(in, scheduler.WithLogger(h.Logger))
	if err != nil {
		return models.ScheduleResponse{}, err
	}

	started := time.Now()
	tasks := s.Tasks()
	tl := s.Timeline()

	resp := models.ScheduleResponse{
		Tasks:     make([]string, len(tasks)),
		Weeks:     make([]models.WeekResult, 0, weeks),
		Requested: weeks,
	}
	for i, task := range tasks {
		resp.Tasks[i] = string(task.Name)
	}

	for wa := range tl.All() {
		if err := ctx.Err(); err != nil {
			return models.ScheduleResponse{}, err
		}
		resp.Weeks = append(resp.Weeks, weekResult(wa, tasks))
		h.Metrics.ObserveWeek(wa.Locked)
		if len(resp.Weeks) == weeks {
			break
		}
	}
	h.Metrics.ObserveGeneration(time.Since(started))

	if len(resp.Weeks) < weeks {
		resp.Truncated = true
		resp.Reason = "timeline ended"
		if err := tl.Err(); err != nil {
			resp.Reason = err.Error()
		}
		h.Metrics.ObserveTruncation()
		h.Logger.Warn("schedule truncated", "requested", weeks, "generated", len(resp.Weeks), "reason", resp.Reason)
	}

	resp.FairnessScore = tl.FairnessScore()
	resp.Counters = make(map[string]map[string]models.Counter)
	for task, perTask := range tl.Counters() {
		out := make(map[string]models.Counter, len(perTask))
		for person, counter := range perTask {
			out[string(person)] = counter
		}
		resp.Counters[string(task)] = out
	}

	h.Cache.Put(key, resp)
	return resp, nil
}

func weekResult(wa scheduler.WeekAssignment, tasks []models.Task) models.WeekResult {
	ordered := wa.Assignment.Ordered(tasks)
	assignees := make([][]string, len(ordered))
	for i, people := range ordered {
		assignees[i] = make([]string, len(people))
		for j, p := range people {
			assignees[i][j] = string(p)
		}
	}
	return models.WeekResult{
		Week:      wa.Week.ID(),
		Locked:    wa.Locked,
		Assignees: assignees,
	}
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, weeks, people int) {
	apiKey := currentKey(c)
	if apiKey == nil {
		return
	}
	if err := database.RecordUsage(c.Request.Context(), h.DB, apiKey.ID, weeks, people); err != nil {
		h.Logger.Error("could not record usage", "key_id", apiKey.ID, "error", err)
	}
}
