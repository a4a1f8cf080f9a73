package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository справочники socials, content_types, objectives, audiences, channels.
// Все таблицы имеют одинаковую форму, у channels дополнительно есть url.
type CatalogRepository interface {
	// List возвращает системные записи и записи пользователя
	List(ctx context.Context, kind models.CatalogKind, userID int64) ([]*models.CatalogEntry, error)
	GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error)
	// FindByName ищет сначала системную запись, затем запись пользователя.
	// userID == nil ограничивает поиск системными записями.
	FindByName(ctx context.Context, kind models.CatalogKind, name string, userID *int64) (*models.CatalogEntry, error)
	Create(ctx context.Context, entry *models.CatalogEntry) error
	// DeleteMatching удаляет записи, имя которых содержит marker. Системные записи
	// затрагиваются только при includeSystem.
	DeleteMatching(ctx context.Context, kind models.CatalogKind, marker string, includeSystem bool) (int64, error)
}

type catalogRepository struct {
	db *PostgresDB
}

func NewCatalogRepository(db *PostgresDB) CatalogRepository {
	return &catalogRepository{db: db}
}

func catalogSelect(kind models.CatalogKind) *goqu.SelectDataset {
	url := goqu.L("''")
	if kind == models.CatalogChannels {
		url = goqu.L("COALESCE(url, '')")
	}
	return dialect.From(string(kind)).Select("id", "name", url, "user_id", "created_at")
}

func scanCatalogEntry(kind models.CatalogKind, row pgx.Row) (*models.CatalogEntry, error) {
	entry := &models.CatalogEntry{Kind: kind}
	if err := row.Scan(&entry.ID, &entry.Name, &entry.URL, &entry.UserID, &entry.CreatedAt); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *catalogRepository) List(ctx context.Context, kind models.CatalogKind, userID int64) ([]*models.CatalogEntry, error) {
	query, args, err := catalogSelect(kind).
		Where(goqu.Or(
			goqu.C("user_id").IsNull(),
			goqu.C("user_id").Eq(userID),
		)).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", kind, err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	entries := make([]*models.CatalogEntry, 0)
	for rows.Next() {
		entry, err := scanCatalogEntry(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", kind, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind, err)
	}

	return entries, nil
}

func (r *catalogRepository) GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error) {
	query, args, err := catalogSelect(kind).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", kind, err)
	}

	entry, err := scanCatalogEntry(kind, r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get %s entry: %w", kind, err)
	}

	return entry, nil
}

func (r *catalogRepository) FindByName(ctx context.Context, kind models.CatalogKind, name string, userID *int64) (*models.CatalogEntry, error) {
	var owner exp.Expression = goqu.C("user_id").IsNull()
	if userID != nil {
		owner = goqu.Or(goqu.C("user_id").IsNull(), goqu.C("user_id").Eq(*userID))
	}

	query, args, err := catalogSelect(kind).
		Where(goqu.C("name").Eq(name), owner).
		Order(goqu.C("user_id").Asc().NullsFirst(), goqu.C("id").Asc()).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", kind, err)
	}

	entry, err := scanCatalogEntry(kind, r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find %s entry: %w", kind, err)
	}

	return entry, nil
}

func (r *catalogRepository) Create(ctx context.Context, entry *models.CatalogEntry) error {
	record := goqu.Record{"name": entry.Name}
	if entry.UserID != nil {
		record["user_id"] = *entry.UserID
	}
	if entry.Kind == models.CatalogChannels && entry.URL != "" {
		record["url"] = entry.URL
	}

	query, args, err := dialect.Insert(string(entry.Kind)).
		Rows(record).
		Returning("id", "created_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", entry.Kind, err)
	}

	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to create %s entry: %w", entry.Kind, err)
	}

	return nil
}

func (r *catalogRepository) DeleteMatching(ctx context.Context, kind models.CatalogKind, marker string, includeSystem bool) (int64, error) {
	where := []exp.Expression{goqu.L("LOWER(name) LIKE ?", likePattern(marker))}
	if !includeSystem {
		where = append(where, goqu.C("user_id").IsNotNull())
	}

	query, args, err := dialect.Delete(string(kind)).Where(where...).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s delete: %w", kind, err)
	}

	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s entries: %w", kind, err)
	}

	return result.RowsAffected(), nil
}
