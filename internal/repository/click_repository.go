package repository

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

type ClickRepository interface {
	Create(ctx context.Context, click *models.Click) error
	ListByLink(ctx context.Context, linkID int64) ([]models.Click, error)
	// ListByLinks загружает клики набора ссылок одним запросом
	ListByLinks(ctx context.Context, linkIDs []int64) ([]models.Click, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

var clickColumns = []any{
	"id",
	"utm_link_id",
	goqu.L("COALESCE(country, '')"),
	goqu.L("COALESCE(country_code, '')"),
	goqu.L("COALESCE(region, '')"),
	goqu.L("COALESCE(city, '')"),
	goqu.L("COALESCE(device_type, '')"),
	goqu.L("COALESCE(browser, '')"),
	goqu.L("COALESCE(browser_version, '')"),
	goqu.L("COALESCE(os, '')"),
	goqu.L("COALESCE(os_version, '')"),
	goqu.L("COALESCE(platform, '')"),
	goqu.L("COALESCE(referer, '')"),
	goqu.L("COALESCE(user_agent, '')"),
	goqu.L("COALESCE(ip_address, '')"),
	"clicked_at",
}

// Create записывает клик. Время клика назначает БД.
func (r *clickRepository) Create(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO click_events (
			utm_link_id, country, country_code, region, city,
			device_type, browser, browser_version, os, os_version,
			platform, referer, user_agent, ip_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, clicked_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		click.LinkID,
		nullIfEmpty(click.Country),
		nullIfEmpty(click.CountryCode),
		nullIfEmpty(click.Region),
		nullIfEmpty(click.City),
		nullIfEmpty(click.DeviceType),
		nullIfEmpty(click.Browser),
		nullIfEmpty(click.BrowserVersion),
		nullIfEmpty(click.OS),
		nullIfEmpty(click.OSVersion),
		nullIfEmpty(click.Platform),
		nullIfEmpty(click.Referer),
		nullIfEmpty(click.UserAgent),
		nullIfEmpty(click.IPAddress),
	).Scan(&click.ID, &click.ClickedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

func (r *clickRepository) ListByLink(ctx context.Context, linkID int64) ([]models.Click, error) {
	return r.list(ctx, goqu.C("utm_link_id").Eq(linkID))
}

func (r *clickRepository) ListByLinks(ctx context.Context, linkIDs []int64) ([]models.Click, error) {
	if len(linkIDs) == 0 {
		return []models.Click{}, nil
	}
	return r.list(ctx, linksFilter(linkIDs))
}

// int8Array литерал массива Postgres "{1,2,3}". goqu раскрывает срезы в список
// плейсхолдеров, а driver.Valuer передаёт одним параметром.
type int8Array []int64

func (a int8Array) Value() (driver.Value, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('}')
	return b.String(), nil
}

func clicksQuery(where exp.Expression) (string, []any, error) {
	return dialect.From("click_events").
		Select(clickColumns...).
		Where(where).
		Order(goqu.C("clicked_at").Desc(), goqu.C("id").Desc()).
		Prepared(true).
		ToSQL()
}

func linksFilter(linkIDs []int64) exp.Expression {
	// Один параметр-массив вместо IN (...): число параметров запроса ограничено 65535
	return goqu.L("utm_link_id = ANY(?::bigint[])", int8Array(linkIDs))
}

func (r *clickRepository) list(ctx context.Context, where exp.Expression) ([]models.Click, error) {
	query, args, err := clicksQuery(where)
	if err != nil {
		return nil, fmt.Errorf("failed to build clicks query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	clicks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Click, error) {
		var c models.Click
		err := row.Scan(
			&c.ID,
			&c.LinkID,
			&c.Country,
			&c.CountryCode,
			&c.Region,
			&c.City,
			&c.DeviceType,
			&c.Browser,
			&c.BrowserVersion,
			&c.OS,
			&c.OSVersion,
			&c.Platform,
			&c.Referer,
			&c.UserAgent,
			&c.IPAddress,
			&c.ClickedAt,
		)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan clicks: %w", err)
	}

	return clicks, nil
}
