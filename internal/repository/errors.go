package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrSlugExists    = errors.New("slug already exists")
	ErrEntryNotFound = errors.New("catalog entry not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrCacheMiss     = errors.New("cache miss")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}
