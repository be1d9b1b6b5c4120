package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/dbfcm/salon-relay-go/pkg/conflicts"
	"github.com/dbfcm/salon-relay-go/pkg/database"
	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/scancache"
)

// Conflicts runs the full double-booking scan over relayed schedules.
// The caller sends every groomer day inside the horizon; the response
// carries the findings and the cache file records the summary for
// other machines to poll.
func (h *Handler) Conflicts(c *gin.Context) {
	var req struct {
		Schedules []models.DaySchedule `json:"schedules"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Schedules) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No schedules provided"})
		return
	}

	if err := conflicts.ValidateSchedules(req.Schedules, h.Cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	findings, err := conflicts.Detect(req.Schedules, h.Cfg, started)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.annotateAcks(findings)

	today := models.DateOnly(started)
	dateRange := fmt.Sprintf("%s to %s",
		today.AddDate(0, 0, 1).Format(models.DateLayout),
		today.AddDate(0, 0, h.Cfg.HorizonDays).Format(models.DateLayout))

	summary := scancache.Summary{
		ScanID:      scancache.NewScanID(),
		LastChecked: scancache.Stamp(started),
		DateRange:   dateRange,
		Count:       len(findings),
	}
	if err := scancache.Write(h.cachePath(), summary); err != nil {
		log.Printf("[conflicts] cache write failed: %v", err)
	}

	log.Printf("[conflicts] scan completed in %.2fs (found %d findings)",
		time.Since(started).Seconds(), len(findings))

	recordCount := 0
	for _, ds := range req.Schedules {
		recordCount += len(ds.Appointments)
	}
	h.RecordUsage(c, recordCount, len(findings))

	c.JSON(http.StatusOK, gin.H{
		"scan_id":      summary.ScanID,
		"last_checked": summary.LastChecked,
		"date_range":   summary.DateRange,
		"count":        len(findings),
		"findings":     findings,
	})
}

// annotateAcks marks findings the front desk has already signed off on
func (h *Handler) annotateAcks(findings []models.Finding) {
	if len(findings) == 0 {
		return
	}

	var acks []database.ConflictAck
	h.DB.Find(&acks)
	if len(acks) == 0 {
		return
	}

	bySlot := make(map[string]database.ConflictAck, len(acks))
	for _, a := range acks {
		bySlot[conflicts.Fingerprint(a.Groomer, a.Date, a.Slot)] = a
	}

	for i := range findings {
		f := &findings[i]
		if a, ok := bySlot[conflicts.Fingerprint(f.Groomer, f.Date, f.Slot)]; ok {
			f.Acknowledged = true
			f.AckedBy = a.AckedBy
			f.AckedAt = a.AckedAt
			f.AckNote = a.Note
		}
	}
}

// ConflictsCached returns the summary of the most recent scan without
// rerunning it
func (h *Handler) ConflictsCached(c *gin.Context) {
	summary, err := scancache.Read(h.cachePath())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if summary.LastChecked == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No scan recorded yet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AckConflict records that a human reviewed a finding and decided the
// overlap is intentional. Re-acking the same slot updates the note.
func (h *Handler) AckConflict(c *gin.Context) {
	var req struct {
		Groomer string `json:"groomer"`
		Date    string `json:"date"`
		Slot    string `json:"slot"`
		AckedBy string `json:"acked_by"`
		Note    string `json:"note"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, ok := h.Cfg.KnownGroomer(req.Groomer)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown groomer %q", req.Groomer)})
		return
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := models.ParseClock(req.Slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AckedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "acked_by is required"})
		return
	}

	ack := database.ConflictAck{
		ID:      uuid.NewString(),
		Groomer: g.Name,
		Date:    req.Date,
		Slot:    req.Slot,
		AckedBy: req.AckedBy,
		AckedAt: scancache.Stamp(time.Now()),
		Note:    req.Note,
	}

	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "groomer"}, {Name: "date"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"acked_by", "acked_at", "note"}),
	}).Create(&ack).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record acknowledgment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Acknowledged", "ack": ack})
}

// ListAcks returns every recorded acknowledgment
func (h *Handler) ListAcks(c *gin.Context) {
	var acks []database.ConflictAck
	h.DB.Order("date, groomer, slot").Find(&acks)
	c.JSON(http.StatusOK, gin.H{"acks": acks})
}
