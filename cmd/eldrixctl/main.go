package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eldrix/admin/internal/config"
	"eldrix/admin/internal/database"
)

var rootCmd = &cobra.Command{
	Use:           "eldrixctl",
	Short:         "Operator commands for the Eldrix admin database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connect loads the shared config and opens the database the commands act on.
func connect(ctx context.Context) (*database.Postgres, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.NewPostgres(ctx, cfg.Postgres)
}
