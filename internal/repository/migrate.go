package repository

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate создаёт таблицы и индексы, если их ещё нет. Повторный вызов безопасен.
func Migrate(ctx context.Context, db *PostgresDB) error {
	// Без аргументов pgx использует simple protocol, поэтому несколько
	// выражений в одном Exec допустимы
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
