package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/dbfcm/salon-relay-go/pkg/availability"
	"github.com/dbfcm/salon-relay-go/pkg/conflicts"
	"github.com/dbfcm/salon-relay-go/pkg/database"
	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/scancache"
	"github.com/dbfcm/salon-relay-go/pkg/stats"
)

// Availability suggests open slots per groomer plus a per-day workload
// summary, so the front desk can answer "when can you take Biscuit?"
// without opening the booking calendar.
func (h *Handler) Availability(c *gin.Context) {
	var req struct {
		Schedules      []models.DaySchedule `json:"schedules"`
		Days           int                  `json:"days"`
		PerGroomer     int                  `json:"per_groomer"`
		IncludeReserve bool                 `json:"include_reserve"`
		Holidays       []string             `json:"holidays"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := conflicts.ValidateSchedules(req.Schedules, h.Cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := availability.Options{
		Days:           req.Days,
		PerGroomer:     req.PerGroomer,
		IncludeReserve: req.IncludeReserve,
		Holidays:       req.Holidays,
	}

	groomers, err := availability.NextOpen(req.Schedules, h.Cfg, time.Now(), opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Per-day workload summary and capacity flags
	byDate := map[string][]models.DaySchedule{}
	for _, ds := range req.Schedules {
		byDate[ds.Date] = append(byDate[ds.Date], ds)
	}
	type daySummary struct {
		Summary availability.DaySummary    `json:"summary"`
		Loads   []availability.GroomerLoad `json:"loads"`
	}
	summaries := make(map[string]daySummary, len(byDate))
	var upcoming []models.Appointment
	for date, days := range byDate {
		var all []models.Appointment
		for _, ds := range days {
			for _, a := range ds.Appointments {
				if a.Date == "" {
					a.Date = ds.Date
				}
				all = append(all, a)
				upcoming = append(upcoming, a)
			}
		}
		summaries[date] = daySummary{
			Summary: availability.Summarize(all),
			Loads:   availability.Load(days, h.Cfg),
		}
	}

	duplicates, err := availability.Duplicates(upcoming)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	recordCount := 0
	for _, ds := range req.Schedules {
		recordCount += len(ds.Appointments)
	}
	h.RecordUsage(c, recordCount, len(duplicates))

	days := opts.Days
	if days <= 0 {
		days = 45
	}

	c.JSON(http.StatusOK, gin.H{
		"groomers":      groomers,
		"compact_text":  availability.CompactText(groomers, days),
		"day_summaries": summaries,
		"duplicates":    duplicates,
	})
}

// RefreshClientStats recomputes behavior rows for a batch of clients
// from raw receipts and visit history, and stores them
func (h *Handler) RefreshClientStats(c *gin.Context) {
	var req struct {
		Clients []struct {
			ClientID   string          `json:"client_id"`
			ClientName string          `json:"client_name"`
			Receipts   []stats.Receipt `json:"receipts"`
			Visits     []stats.Visit   `json:"visits"`
		} `json:"clients"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Clients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No clients provided"})
		return
	}

	now := time.Now()
	updated := 0
	var errs []string
	var rows []stats.ClientStats

	for _, cl := range req.Clients {
		if cl.ClientID == "" {
			errs = append(errs, "client with empty client_id skipped")
			continue
		}

		row, err := stats.Compute(cl.ClientID, cl.ClientName, cl.Receipts, cl.Visits, h.Cfg, now)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		rec := database.ClientStat{
			ClientID:    row.ClientID,
			ClientName:  row.ClientName,
			LastUpdated: scancache.Stamp(now),

			LastTipAmount:    row.LastTipAmount,
			LastTipPct:       row.LastTipPct,
			LastTipDate:      row.LastTipDate,
			AvgTipAmount:     row.AvgTipAmount,
			AvgTipPct:        row.AvgTipPct,
			CardReceiptCount: row.CardReceiptCount,
			PreferredPayment: row.PreferredPayment,
			TipMethod:        row.TipMethod,
			CardTipRate:      row.CardTipRate,

			LastApptDate:   row.LastApptDate,
			AvgCadenceDays: row.AvgCadenceDays,
			PreferredDay:   row.PreferredDay,
			PreferredTime:  row.PreferredTime,
			ApptCount12Mo:  row.ApptCount12Mo,
			SuggestedNext:  row.SuggestedNext,
		}

		err = h.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			UpdateAll: true,
		}).Create(&rec).Error
		if err != nil {
			errs = append(errs, "client "+cl.ClientID+": could not save stats")
			continue
		}

		rows = append(rows, row)
		updated++
	}

	h.RecordUsage(c, len(req.Clients), 0)

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"clients": rows,
		"errors":  errs,
	})
}

// GetClientStats returns the stored behavior row for one client
func (h *Handler) GetClientStats(c *gin.Context) {
	id := c.Param("id")

	var row database.ClientStat
	if err := h.DB.Where("client_id = ?", id).First(&row).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No stats recorded for client " + id})
		return
	}

	c.JSON(http.StatusOK, row)
}
