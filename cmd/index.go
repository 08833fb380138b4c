package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DachengChen/paiAnalyst/retrieval"
	"github.com/spf13/cobra"
)

var (
	indexDir   string
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a folder of .txt and .md files for document Q&A",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := indexDir
		if dir == "" {
			dir = cfg.Retrieval.DocsDir
		}
		if dir == "" {
			return fmt.Errorf("no folder to index: pass --dir or set retrieval.docs_dir")
		}

		ix, err := openIndex(cfg)
		if err != nil {
			return err
		}
		ing := retrieval.NewIngester(ix, retrieval.DefaultChunkSize, retrieval.DefaultChunkOverlap)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		files, chunks, err := ing.IngestDir(ctx, dir)
		if err != nil {
			return err
		}
		cmd.Printf("indexed %d files (%d chunks); %d chunks in %s\n",
			files, chunks, ix.Count(), cfg.Retrieval.Collection)

		if !indexWatch {
			return nil
		}
		w, err := retrieval.NewWatcher(ing)
		if err != nil {
			return err
		}
		w.Notify = func(e retrieval.WatchEvent) {
			switch {
			case e.Err != nil:
				cmd.PrintErrf("%s: %v\n", e.Path, e.Err)
			case e.Removed:
				cmd.Printf("removed %s\n", e.Path)
			default:
				cmd.Printf("updated %s (%d chunks)\n", e.Path, e.Chunks)
			}
		}
		cmd.Printf("watching %s, Ctrl+C to stop\n", dir)
		return w.Run(ctx, dir)
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "folder to index (overrides retrieval.docs_dir)")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and re-index files as they change")
}
