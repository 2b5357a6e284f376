// Command kplc runs the power-interruption bulletin ingestion and
// subscriber-notification service: the HTTP subscriber API, the task-queue
// worker pool, the rate-limit bucket tokenizer, the bulletin import
// pipeline, migrations, and the notification-retry backfill, all as
// subcommands of one binary.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kplc",
		Short: "Power-interruption bulletin ingestion and notification service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(tokenizerCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(notifyRetryCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
