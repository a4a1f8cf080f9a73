package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
)

var dialect = goqu.Dialect("postgres")

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id int64) (*models.Link, error)
	GetBySlug(ctx context.Context, slug string) (*models.Link, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// List возвращает ссылки владельца или все ссылки при ownerID == nil
	List(ctx context.Context, ownerID *int64) ([]*models.Link, error)
	ListIDs(ctx context.Context, ownerID *int64) ([]int64, error)
	ListWithOwner(ctx context.Context, ownerID *int64) ([]*models.LinkWithOwner, error)
	Delete(ctx context.Context, id int64) error
	// DeleteMatching удаляет ссылки, у которых destination_url, utm_source, utm_campaign,
	// hook или angle содержат marker без учёта регистра. Возвращает slug удалённых.
	DeleteMatching(ctx context.Context, marker string) ([]string, error)
	IncrementClickCount(ctx context.Context, id int64) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

// Колонки utm_links в порядке scanLink, таблица под алиасом l
var linkColumns = []any{
	goqu.L("l.id"),
	goqu.L("l.user_id"),
	goqu.L("COALESCE(l.slug, '')"),
	goqu.L("COALESCE(l.short_url, '')"),
	goqu.L("l.destination_url"),
	goqu.L("l.utm_source"),
	goqu.L("l.utm_medium"),
	goqu.L("l.utm_campaign"),
	goqu.L("COALESCE(l.utm_term, '')"),
	goqu.L("COALESCE(l.utm_content, '')"),
	goqu.L("l.generated_url"),
	goqu.L("l.social_id"),
	goqu.L("l.content_type_id"),
	goqu.L("l.objective_id"),
	goqu.L("l.audience_id"),
	goqu.L("l.channel_id"),
	goqu.L("COALESCE(l.hook, '')"),
	goqu.L("COALESCE(l.angle, '')"),
	goqu.L("COALESCE(l.audience_target, '')"),
	goqu.L("COALESCE(l.budget, '')"),
	goqu.L("l.click_count"),
	goqu.L("l.created_at"),
}

func linkFields(link *models.Link) []any {
	return []any{
		&link.ID,
		&link.UserID,
		&link.Slug,
		&link.ShortURL,
		&link.DestinationURL,
		&link.UTMSource,
		&link.UTMMedium,
		&link.UTMCampaign,
		&link.UTMTerm,
		&link.UTMContent,
		&link.GeneratedURL,
		&link.SocialID,
		&link.ContentTypeID,
		&link.ObjectiveID,
		&link.AudienceID,
		&link.ChannelID,
		&link.Hook,
		&link.Angle,
		&link.AudienceTarget,
		&link.Budget,
		&link.ClickCount,
		&link.CreatedAt,
	}
}

func linksFrom() *goqu.SelectDataset {
	return dialect.From(goqu.T("utm_links").As("l")).Select(linkColumns...)
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO utm_links (
			user_id, slug, short_url, destination_url,
			utm_source, utm_medium, utm_campaign, utm_term, utm_content, generated_url,
			social_id, content_type_id, objective_id, audience_id, channel_id,
			hook, angle, audience_target, budget
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, click_count, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		link.UserID,
		nullIfEmpty(link.Slug),
		nullIfEmpty(link.ShortURL),
		link.DestinationURL,
		link.UTMSource,
		link.UTMMedium,
		link.UTMCampaign,
		nullIfEmpty(link.UTMTerm),
		nullIfEmpty(link.UTMContent),
		link.GeneratedURL,
		link.SocialID,
		link.ContentTypeID,
		link.ObjectiveID,
		link.AudienceID,
		link.ChannelID,
		nullIfEmpty(link.Hook),
		nullIfEmpty(link.Angle),
		nullIfEmpty(link.AudienceTarget),
		nullIfEmpty(link.Budget),
	).Scan(&link.ID, &link.ClickCount, &link.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	return r.getOne(ctx, goqu.Ex{"l.id": id})
}

func (r *linkRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	return r.getOne(ctx, goqu.Ex{"l.slug": slug})
}

func (r *linkRepository) getOne(ctx context.Context, where goqu.Ex) (*models.Link, error) {
	query, args, err := linksFrom().Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build link query: %w", err)
	}

	link := &models.Link{}
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(linkFields(link)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (r *linkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM utm_links WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *linkRepository) List(ctx context.Context, ownerID *int64) ([]*models.Link, error) {
	ds := linksFrom().Order(goqu.I("l.created_at").Desc(), goqu.I("l.id").Desc())
	if ownerID != nil {
		ds = ds.Where(goqu.Ex{"l.user_id": *ownerID})
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build links query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]*models.Link, 0)
	for rows.Next() {
		link := &models.Link{}
		if err := rows.Scan(linkFields(link)...); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) ListIDs(ctx context.Context, ownerID *int64) ([]int64, error) {
	ds := dialect.From("utm_links").Select("id").Order(goqu.C("id").Asc())
	if ownerID != nil {
		ds = ds.Where(goqu.C("user_id").Eq(*ownerID))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build link ids query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list link ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect link ids: %w", err)
	}

	return ids, nil
}

func (r *linkRepository) ListWithOwner(ctx context.Context, ownerID *int64) ([]*models.LinkWithOwner, error) {
	ds := linksFrom().
		SelectAppend(goqu.L("COALESCE(u.name, '')"), goqu.L("COALESCE(u.email, '')")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("l.user_id")))).
		Order(goqu.I("l.created_at").Desc(), goqu.I("l.id").Desc())
	if ownerID != nil {
		ds = ds.Where(goqu.Ex{"l.user_id": *ownerID})
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build export query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links with owners: %w", err)
	}
	defer rows.Close()

	result := make([]*models.LinkWithOwner, 0)
	for rows.Next() {
		row := &models.LinkWithOwner{}
		dest := append(linkFields(&row.Link), &row.UserName, &row.UserEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return result, nil
}

// Delete удаляет ссылку, клики удаляются каскадно
func (r *linkRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM utm_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) DeleteMatching(ctx context.Context, marker string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		DELETE FROM utm_links
		WHERE LOWER(destination_url) LIKE $1
		   OR LOWER(utm_source) LIKE $1
		   OR LOWER(utm_campaign) LIKE $1
		   OR LOWER(COALESCE(hook, '')) LIKE $1
		   OR LOWER(COALESCE(angle, '')) LIKE $1
		RETURNING COALESCE(slug, '')`, likePattern(marker))
	if err != nil {
		return nil, fmt.Errorf("failed to delete links: %w", err)
	}

	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to delete links: %w", err)
	}

	return slugs, nil
}

// IncrementClickCount атомарно увеличивает счётчик на стороне БД
func (r *linkRepository) IncrementClickCount(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE utm_links SET click_count = click_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// likePattern "%marker%" в нижнем регистре, символы LIKE экранируются
func likePattern(marker string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(marker)) + "%"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
