// Package cmd contains all Cobra commands for paiAnalyst.
//
// Running `paianalyst` with no subcommand launches the TUI. The same
// services are reachable headless through subcommands:
//
//	paianalyst serve            HTTP API for browser clients
//	paianalyst index --dir d    build the document index
//	paianalyst ask "question"   one-shot document Q&A across models
//
// Settings come from ~/.paianalyst/config.json (or --config), a .env
// file in the working directory, and environment variables.
package cmd

import (
	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/tui"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "paianalyst",
	Short: "Conversational analytics over a SQL warehouse and your documents",
	Long: `paiAnalyst answers questions in two modes:
  • Structured: questions go to a Cortex Analyst endpoint, generated SQL
    runs against your warehouse and results render as tables and charts
  • Documents: questions are answered from an indexed folder of files by
    several AI models side by side

Run 'paianalyst' to start the TUI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := newBackend(cmd.Context(), cfg)
		defer b.Close()

		warehouse := ""
		if b.warehouse != nil {
			warehouse = b.warehouse.String()
		}
		return tui.Start(tui.Options{
			Controller: b.newController(),
			Summarizer: b.summarizer,
			Warehouse:  warehouse,
			ExportDir:  ".",
			LogPath:    applog.Path(),
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.paianalyst/config.json)")
	rootCmd.AddCommand(serveCmd, indexCmd, askCmd)
}

func loadConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadAppConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
