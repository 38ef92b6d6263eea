package handlers

import (
	"net/http"

	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/gin-gonic/gin"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey := currentKey(c)
	if apiKey == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	usage, err := database.UsageHistory(c.Request.Context(), h.DB, apiKey.ID, 30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalWeeks, totalPeople int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalWeeks += int64(u.TotalWeeks)
		totalPeople += int64(u.TotalPeople)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"weeks":    totalWeeks,
			"people":   totalPeople,
		},
	})
}
