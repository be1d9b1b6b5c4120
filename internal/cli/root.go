// Package cli implements the salonctl commands, the offline face of
// the relay: the same classifier and detector the server runs, fed
// from exported JSON files instead of HTTP.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

var (
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "salonctl",
	Short: "Grooming assignment and conflict tools for DBFCM",
	Long:  "Offline tools for Dog's Best Friend & the Cat's Meow: classify waitlist records to groomers, scan schedules for double-bookings, and list open slots.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Salon config file (default: $SALON_CONFIG or ./salon.toml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (*salon.Config, error) {
	if configPath != "" {
		return salon.Load(configPath)
	}
	if env := os.Getenv("SALON_CONFIG"); env != "" {
		return salon.Load(env)
	}
	if _, err := os.Stat("salon.toml"); err == nil {
		return salon.Load("salon.toml")
	}
	return salon.Default(), nil
}

// readInput decodes one exported JSON file into dst. The file shapes
// match the HTTP payloads, so one export feeds both the CLI and the API.
func readInput(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
