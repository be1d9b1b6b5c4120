package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbfcm/salon-relay-go/pkg/conflicts"
	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/scancache"
)

func init() {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Scan schedules for double-bookings",
		Long:  "Run the full conflict scan over exported schedules and record the summary in the scan cache.",
		Run:   runConflicts,
	}

	cmd.Flags().StringP("input", "i", "", "Schedules JSON file (required)")
	cmd.Flags().String("cache", "conflict_cache.json", "Scan cache file")
	cmd.Flags().Bool("no-cache", false, "Skip writing the scan cache")
	cmd.MarkFlagRequired("input")

	RootCmd.AddCommand(cmd)
}

func runConflicts(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")
	cachePath, _ := cmd.Flags().GetString("cache")
	noCache, _ := cmd.Flags().GetBool("no-cache")

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

	if err := conflicts.ValidateSchedules(req.Schedules, cfg); err != nil {
		exitErr("validate schedules", err)
	}

	started := time.Now()
	findings, err := conflicts.Detect(req.Schedules, cfg, started)
	if err != nil {
		exitErr("scan", err)
	}

	if !noCache {
		today := models.DateOnly(started)
		summary := scancache.Summary{
			ScanID:      scancache.NewScanID(),
			LastChecked: scancache.Stamp(started),
			DateRange: fmt.Sprintf("%s to %s",
				today.AddDate(0, 0, 1).Format(models.DateLayout),
				today.AddDate(0, 0, cfg.HorizonDays).Format(models.DateLayout)),
			Count: len(findings),
		}
		if err := scancache.Write(cachePath, summary); err != nil {
			exitErr("write cache", err)
		}
	}

	if formatFlag == "text" {
		if len(findings) == 0 {
			fmt.Println("no conflicts found")
			return
		}
		for _, f := range findings {
			fmt.Printf("%-8s %s (%s) %s %s\n", strings.ToUpper(string(f.Severity)),
				f.Date, f.DayOfWeek, f.SlotDisplay, f.Groomer)
			fmt.Printf("         %s\n", f.Detail)
			for _, o := range f.Overlaps {
				who := o.PetName
				if o.Groomer != "" {
					who = o.Groomer + ": " + who
				}
				fmt.Printf("         %s %s (%s)\n", o.TimeRange, who, o.Service)
			}
		}
		fmt.Printf("\n%d finding(s)\n", len(findings))
		return
	}

	printJSON(map[string]interface{}{
		"count":    len(findings),
		"findings": findings,
	})
}
