package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dbfcm/salon-relay-go/pkg/assign"
	"github.com/dbfcm/salon-relay-go/pkg/models"
)

// Assignments classifies a batch of appointment records sent as JSON
func (h *Handler) Assignments(c *gin.Context) {
	var req struct {
		Records []models.Appointment `json:"records"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No records provided"})
		return
	}

	result := assign.ClassifyAll(req.Records, h.Cfg)

	h.RecordUsage(c, len(req.Records), 0)

	c.JSON(http.StatusOK, gin.H{
		"count":       len(result.Assignments),
		"assignments": result.Assignments,
		"buckets":     result.Buckets,
		"errors":      result.Errors,
	})
}

// AssignmentsCSV accepts a CSV upload of appointment records and returns
// the assignments as CSV text, for pasting straight into the booking sheet
func (h *Handler) AssignmentsCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("records_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records_file is required"})
		return
	}
	defer file.Close()

	delimiter := c.PostForm("delimiter")
	if delimiter == "" && strings.HasSuffix(strings.ToLower(header.Filename), ".tsv") {
		delimiter = "\t"
	}
	if delimiter == "" {
		delimiter = ","
	}

	records, err := parseRecordsCSV(file, rune(delimiter[0]))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No records found in file"})
		return
	}

	result := assign.ClassifyAll(records, h.Cfg)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"appointment_id", "pet_name", "groomer", "reason", "rule"})
	for _, a := range result.Assignments {
		_ = w.Write([]string{a.AppointmentID, a.PetName, a.Groomer, a.Reason, a.Rule})
	}
	w.Flush()

	h.RecordUsage(c, len(records), 0)

	c.JSON(http.StatusOK, gin.H{
		"count":  len(result.Assignments),
		"csv":    buf.String(),
		"errors": result.Errors,
	})
}

// parseRecordsCSV reads appointment records from CSV data with a header row.
// Column order does not matter; unknown columns are ignored.
func parseRecordsCSV(r io.Reader, delimiter rune) ([]models.Appointment, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read header row: %w", err)
	}

	// Map column names to indices
	cols := make(map[string]int)
	for i, name := range headerRow {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := cols["pet_name"]; !ok {
		return nil, fmt.Errorf("missing required column: pet_name")
	}

	get := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []models.Appointment
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		service, err := models.ParseServiceType(get(row, "service"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := models.Appointment{
			ID:               get(row, "id"),
			PetID:            get(row, "pet_id"),
			PetName:          get(row, "pet_name"),
			Size:             models.ParseSizeCategory(get(row, "size")),
			Service:          service,
			PreferredGroomer: get(row, "preferred_groomer"),
			Notes:            get(row, "notes"),
			ClientName:       get(row, "client_name"),
			Date:             get(row, "date"),
			Time:             get(row, "time"),
		}

		if v := get(row, "self_bath"); v != "" {
			rec.SelfBath = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
		}
		if v := get(row, "total_visits"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid total_visits %q", line, v)
			}
			rec.History.TotalVisits = n
		}
		rec.History.LastCompletedDate = get(row, "last_completed_date")
		rec.History.NextScheduledDate = get(row, "next_scheduled_date")
		if v := get(row, "groomer_stats"); v != "" {
			counts, err := models.ParseGroomerBreakdown(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.History.GroomerBreakdown = counts
		}

		records = append(records, rec)
	}

	return records, nil
}
