package main

import (
	"os"

	"github.com/dbfcm/salon-relay-go/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
