package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective salon config",
		Long:  "Show the roster, slot grid, and duration ranges after applying any config file.",
		Run:   runConfig,
	}

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	if formatFlag == "text" {
		fmt.Println("groomers:")
		for _, g := range cfg.Groomers {
			var roles []string
			if g.HandstripSpecialist {
				roles = append(roles, "handstrip")
			}
			if g.LargeBreedDefault {
				roles = append(roles, "LG/XL default")
			}
			if g.NewClientDefault {
				roles = append(roles, "new clients")
			}
			role := ""
			if len(roles) > 0 {
				role = " (" + strings.Join(roles, ", ") + ")"
			}
			fmt.Printf("  %s #%d%s\n", g.Name, g.EmployeeID, role)
		}
		fmt.Printf("slots: %s (reserve %s)\n", strings.Join(cfg.NominalSlots, " "), strings.Join(cfg.ReserveSlots, " "))
		fmt.Printf("block: %d min, horizon: %d days\n", cfg.NominalBlockMinutes, cfg.HorizonDays)
		return
	}

	printJSON(cfg)
}
