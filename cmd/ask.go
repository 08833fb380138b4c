package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask every configured model a question about the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := newBackend(cmd.Context(), cfg)
		defer b.Close()
		if b.multi == nil {
			return fmt.Errorf("document Q&A is not configured")
		}

		answers, err := b.multi.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, a := range answers {
			cmd.Printf("== %s (%ss)\n%s\n", a.Model, a.Seconds(), a.Text)
			if len(a.Sources) > 0 {
				cmd.Printf("Sources: %s\n", a.SourceList("; "))
			}
			cmd.Println()
		}
		return nil
	},
}
