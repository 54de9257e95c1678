package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Tables that operator commands may touch, in truncation-safe order.
var KnownTables = []string{"messages", "help_sessions", "tech_usage", "users"}

type MaintenanceRepository struct {
	db DB
}

func NewMaintenanceRepository(db DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func checkTable(table string) error {
	for _, known := range KnownTables {
		if table == known {
			return nil
		}
	}
	return fmt.Errorf("unknown table %q", table)
}

// Reset truncates tables in a single transaction. Any failure rolls back
// every table.
func (r *MaintenanceRepository) Reset(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables given")
	}
	for _, t := range tables {
		if err := checkTable(t); err != nil {
			return err
		}
	}

	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, t := range tables {
			if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{t}.Sanitize()+" CASCADE"); err != nil {
				return fmt.Errorf("truncate %s: %w", t, err)
			}
		}
		return nil
	})
}

// DeleteByIDs removes rows by primary key and reports how many existed.
func (r *MaintenanceRepository) DeleteByIDs(ctx context.Context, table string, ids []string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	query := "DELETE FROM " + pgx.Identifier{table}.Sanitize() + " WHERE id = ANY($1)"
	cmd, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return cmd.RowsAffected(), nil
}

func TableList() string {
	return strings.Join(KnownTables, ", ")
}
