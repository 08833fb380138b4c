package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b := newBackend(ctx, cfg)
		defer b.Close()

		srv := server.New(func() *chat.Controller { return b.newController() }, b.summarizer)
		cmd.Printf("listening on %s\n", cfg.Server.Addr)
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
