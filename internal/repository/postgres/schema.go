package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the draft and live page tables if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		pageTableDDL(tables.Pages, "gen_random_uuid()"),
		pageTableDDL(tables.PagesLive, ""),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_sort_idx ON %s (parent_id, sort, created_at)`, tables.Pages, tables.Pages),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_sort_idx ON %s (parent_id, sort, created_at)`, tables.PagesLive, tables.PagesLive),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the page tables
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s CASCADE`, tables.PagesLive, tables.Pages)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// ClearData removes every page from both stages, keeping the schema
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`TRUNCATE %s, %s`, tables.PagesLive, tables.Pages)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

func pageTableDDL(table, idDefault string) string {
	id := "id UUID PRIMARY KEY"
	if idDefault != "" {
		id += " DEFAULT " + idDefault
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s,
			parent_id UUID,
			class_name TEXT NOT NULL,
			title VARCHAR(255) NOT NULL,
			url_segment VARCHAR(255) NOT NULL DEFAULT '',
			show_in_menus BOOLEAN NOT NULL DEFAULT TRUE,
			sort INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, table, id)
}
