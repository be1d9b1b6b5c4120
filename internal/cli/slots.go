package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbfcm/salon-relay-go/pkg/availability"
	"github.com/dbfcm/salon-relay-go/pkg/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List open slots per groomer",
		Long:  "Walk the upcoming schedule and suggest safe, bookable slots for each groomer.",
		Run:   runSlots,
	}

	cmd.Flags().StringP("input", "i", "", "Schedules JSON file (required)")
	cmd.Flags().Int("days", 45, "How far ahead to look")
	cmd.Flags().Int("per-groomer", 8, "Max suggestions per groomer")
	cmd.Flags().Bool("reserve", false, "Offer the reserve slot too")
	cmd.Flags().StringSlice("holiday", nil, "Dates to skip (YYYY-MM-DD, repeatable)")
	cmd.MarkFlagRequired("input")

	RootCmd.AddCommand(cmd)
}

func runSlots(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")
	days, _ := cmd.Flags().GetInt("days")
	perGroomer, _ := cmd.Flags().GetInt("per-groomer")
	reserve, _ := cmd.Flags().GetBool("reserve")
	holidays, _ := cmd.Flags().GetStringSlice("holiday")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	var req struct {
		Schedules []models.DaySchedule `json:"schedules"`
	}
	if err := readInput(input, &req); err != nil {
		exitErr("read input", err)
	}

	results, err := availability.NextOpen(req.Schedules, cfg, time.Now(), availability.Options{
		Days:           days,
		PerGroomer:     perGroomer,
		IncludeReserve: reserve,
		Holidays:       holidays,
	})
	if err != nil {
		exitErr("slots", err)
	}

	if formatFlag == "text" {
		fmt.Println(availability.CompactText(results, days))
		return
	}

	printJSON(results)
}
