package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eldrix/admin/internal/repository"
)

type maintenance interface {
	Reset(ctx context.Context, tables []string) error
	DeleteByIDs(ctx context.Context, table string, ids []string) (int64, error)
}

var (
	resetTables  []string
	resetConfirm bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <table> <id>...",
	Short: "Delete rows by id from one table",
	Long:  "Delete rows by id. Deleting users or sessions cascades to their messages.\nTables: " + repository.TableList(),
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		return runDelete(cmd.Context(), repository.NewMaintenanceRepository(db.Pool()), cmd.OutOrStdout(), args[0], args[1:])
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Truncate tables in a single transaction",
	Long:  "Truncate the given tables (default: all) in one transaction. Nothing is removed unless every table succeeds.\nTables: " + repository.TableList(),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !resetConfirm {
			return errors.New("refusing to reset without --confirm")
		}

		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		return runReset(cmd.Context(), repository.NewMaintenanceRepository(db.Pool()), cmd.OutOrStdout(), resetTables)
	},
}

func runDelete(ctx context.Context, repo maintenance, out io.Writer, table string, ids []string) error {
	n, err := repo.DeleteByIDs(ctx, table, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d of %d row(s) from %s\n", n, len(ids), table)
	return nil
}

func runReset(ctx context.Context, repo maintenance, out io.Writer, tables []string) error {
	if len(tables) == 0 {
		tables = repository.KnownTables
	}
	if err := repo.Reset(ctx, tables); err != nil {
		return fmt.Errorf("reset rolled back: %w", err)
	}
	fmt.Fprintf(out, "truncated %d table(s)\n", len(tables))
	return nil
}

func init() {
	resetCmd.Flags().StringSliceVar(&resetTables, "tables", nil, "comma separated tables to truncate")
	resetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "required; confirms data loss")
	rootCmd.AddCommand(deleteCmd, resetCmd)
}
