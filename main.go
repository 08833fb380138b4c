// paiAnalyst – chat with your warehouse and your documents.
//
// Entry point: initializes the Cobra root command, which launches
// the Bubble Tea TUI by default. `paianalyst serve` starts the
// HTTP API used by the browser front end.
package main

import (
	"os"

	"github.com/DachengChen/paiAnalyst/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
