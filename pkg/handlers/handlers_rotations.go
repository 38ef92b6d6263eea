package handlers

import (
	"net/http"
	"strconv"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ListRotations returns the rotations saved by the calling key
func (h *Handler) ListRotations(c *gin.Context) {
	rotations, err := h.Rotations.List(c.Request.Context(), currentKey(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rotations": rotations})
}

// SaveRotation validates and stores a rotation under its name
func (h *Handler) SaveRotation(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := scheduler.FromInput(input, scheduler.WithLogger(h.Logger)); err != nil {
		h.fail(c, err)
		return
	}

	saved, err := h.Rotations.Save(c.Request.Context(), currentKey(c).ID, c.Param("name"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetRotation returns a saved rotation with its configuration
func (h *Handler) GetRotation(c *gin.Context) {
	saved, err := h.Rotations.Load(c.Request.Context(), currentKey(c).ID, c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	input, err := saved.Input()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         saved.ID,
		"name":       saved.Name,
		"updated_at": saved.UpdatedAt,
		"config":     input,
	})
}

// DeleteRotation clears a saved rotation
func (h *Handler) DeleteRotation(c *gin.Context) {
	if err := h.Rotations.Delete(c.Request.Context(), currentKey(c).ID, c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rotation deleted"})
}

// ScheduleRotation generates the schedule of a saved rotation. The weeks
// query parameter overrides the saved number of weeks.
func (h *Handler) ScheduleRotation(c *gin.Context) {
	saved, err := h.Rotations.Load(c.Request.Context(), currentKey(c).ID, c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	input, err := saved.Input()
	if err != nil {
		h.fail(c, err)
		return
	}

	if raw := c.Query("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weeks must be a positive number"})
			return
		}
		input.Weeks = weeks
	}

	resp, err := h.Generate(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.RecordUsage(c, len(resp.Weeks), len(input.People))
	c.JSON(http.StatusOK, resp)
}
