package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbfcm/salon-relay-go/pkg/conflicts"
	"github.com/dbfcm/salon-relay-go/pkg/models"
)

// ValidateInput handles the JSON-based validation request. It checks
// records and schedules without classifying or scanning, so the data
// collaborator can dry-run an export.
func (h *Handler) ValidateInput(c *gin.Context) {
	var req struct {
		Records   []models.Appointment `json:"records"`
		Schedules []models.DaySchedule `json:"schedules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(req.Records) == 0 && len(req.Schedules) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one record or schedule is required",
		})
		return
	}

	// Check for duplicate IDs
	recIDs := make(map[string]bool)
	for _, rec := range req.Records {
		if rec.ID != "" {
			if recIDs[rec.ID] {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate record ID: " + rec.ID})
				return
			}
			recIDs[rec.ID] = true
		}
		if err := rec.Validate(); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
			return
		}
	}

	if len(req.Schedules) > 0 {
		if err := conflicts.ValidateSchedules(req.Schedules, h.Cfg); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"record_count":   len(req.Records),
			"schedule_count": len(req.Schedules),
		},
	})
}
