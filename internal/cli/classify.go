package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbfcm/salon-relay-go/pkg/assign"
	"github.com/dbfcm/salon-relay-go/pkg/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Assign waitlist records to groomers",
		Long:  "Run the assignment rules over an exported waitlist file and print who takes each dog.",
		Run:   runClassify,
	}

	cmd.Flags().StringP("input", "i", "", "Waitlist JSON file (required)")
	cmd.MarkFlagRequired("input")

	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	var req struct {
		Records []models.Appointment `json:"records"`
	}
	if err := readInput(input, &req); err != nil {
		exitErr("read input", err)
	}
	if len(req.Records) == 0 {
		exitErr("read input", fmt.Errorf("no records in %s", input))
	}

	result := assign.ClassifyAll(req.Records, cfg)

	if formatFlag == "text" {
		for _, a := range result.Assignments {
			fmt.Printf("%-20s -> %-12s %s\n", a.PetName, a.Groomer, a.Reason)
		}
		var buckets []string
		for b := range result.Buckets {
			buckets = append(buckets, b)
		}
		sort.Strings(buckets)
		fmt.Println()
		for _, b := range buckets {
			fmt.Printf("%s: %d\n", b, len(result.Buckets[b]))
		}
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", e)
		}
		return
	}

	printJSON(result)
}
