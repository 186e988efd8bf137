// Command cricketstats loads cricsheet match files into PostgreSQL, rebuilds the
// derived statistics and answers free-text questions over them.
//
// Usage:
//
//	cricketstats migrate up
//	cricketstats ingest --data-dir data/ipl_json --reset
//	cricketstats recompute
//	cricketstats query "Who took the most wickets?"
//	cricketstats serve
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	// .env is optional; real deployments pass APP_* variables directly
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "cricketstats",
		Short:         "Cricket match ingestion, statistics and question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config file")

	root.AddCommand(migrateCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(recomputeCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
