package sitetree

import (
	"context"
	"fmt"
	"strings"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	"sitetree/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pageColumns = `id, parent_id, class_name, title, url_segment, show_in_menus, sort, created_at, updated_at`

// PostgresPageRepository implements the PageRepository interface
type PostgresPageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPageRepository creates a new page repository
func NewPageRepository(config *postgres.RepositoryConfig) sitetreeRepo.PageRepository {
	return &PostgresPageRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a draft page
func (r *PostgresPageRepository) Create(ctx context.Context, page *models.Page) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (parent_id, class_name, title, url_segment, show_in_menus, sort, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Pages)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		page.ParentID,
		page.ClassName,
		page.Title,
		page.URLSegment,
		page.ShowInMenus,
		page.Sort,
		page.CreatedAt,
		page.UpdatedAt,
	).Scan(&page.ID, &page.CreatedAt, &page.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("page '%s' already exists", page.Title),
				ResourceType: "page",
			}
		}
		return fmt.Errorf("create page: %w", err)
	}

	return nil
}

// GetByID retrieves a page from the given stage
func (r *PostgresPageRepository) GetByID(ctx context.Context, id string, stage models.Stage) (*models.Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, pageColumns, r.table(stage))

	executor := postgres.GetExecutor(ctx, r.pool)
	page, err := scanPage(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("page %s (%s): %w", id, stage, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get page: %w", err)
	}

	return page, nil
}

// Update writes a draft page
func (r *PostgresPageRepository) Update(ctx context.Context, page *models.Page) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, title = $2, url_segment = $3, show_in_menus = $4, sort = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Pages)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		page.ParentID,
		page.Title,
		page.URLSegment,
		page.ShowInMenus,
		page.Sort,
		page.UpdatedAt,
		page.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("page %s: %w", page.ID, domain.ErrNotFound)
	}

	return nil
}

// ChildrenOf lists the direct children of q.ParentID in one stage
func (r *PostgresPageRepository) ChildrenOf(ctx context.Context, q sitetreeRepo.ChildQuery) ([]models.Page, error) {
	query, args := r.childrenQuery(q)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	pages := []models.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	return pages, nil
}

// Publish copies the draft row into the live table
func (r *PostgresPageRepository) Publish(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[3]s)
		SELECT %[3]s FROM %[2]s WHERE id = $1
		ON CONFLICT (id) DO UPDATE SET
			parent_id = EXCLUDED.parent_id,
			class_name = EXCLUDED.class_name,
			title = EXCLUDED.title,
			url_segment = EXCLUDED.url_segment,
			show_in_menus = EXCLUDED.show_in_menus,
			sort = EXCLUDED.sort,
			updated_at = EXCLUDED.updated_at
	`, r.tables.PagesLive, r.tables.Pages, pageColumns)

	return r.execOne(ctx, "publish page", id, query)
}

// Unpublish removes the live row
func (r *PostgresPageRepository) Unpublish(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.PagesLive)
	return r.execOne(ctx, "unpublish page", id, query)
}

// DeleteFromStage removes the draft row
func (r *PostgresPageRepository) DeleteFromStage(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Pages)
	return r.execOne(ctx, "delete page", id, query)
}

func (r *PostgresPageRepository) execOne(ctx context.Context, op, id, query string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// childrenQuery builds the child listing SQL; a nil ParentID matches root-level rows
func (r *PostgresPageRepository) childrenQuery(q sitetreeRepo.ChildQuery) (string, []any) {
	conditions := []string{"p.parent_id IS NOT DISTINCT FROM $1"}
	args := []any{q.ParentID}

	if q.ExcludeID != "" {
		args = append(args, q.ExcludeID)
		conditions = append(conditions, fmt.Sprintf("p.id <> $%d", len(args)))
	}
	if q.OnlyShowInMenus {
		conditions = append(conditions, "p.show_in_menus")
	}
	if q.Stage == models.StageLive && q.Mode == models.LiveModeRemovedFromStage {
		conditions = append(conditions,
			fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s d WHERE d.id = p.id)", r.tables.Pages))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE %s ORDER BY p.sort ASC, p.created_at ASC`,
		prefixColumns("p"), r.table(q.Stage), strings.Join(conditions, " AND "))
	return query, args
}

func (r *PostgresPageRepository) table(stage models.Stage) string {
	if stage == models.StageLive {
		return r.tables.PagesLive
	}
	return r.tables.Pages
}

func prefixColumns(alias string) string {
	cols := strings.Split(pageColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanPage(row pgx.Row) (*models.Page, error) {
	var page models.Page
	err := row.Scan(
		&page.ID,
		&page.ParentID,
		&page.ClassName,
		&page.Title,
		&page.URLSegment,
		&page.ShowInMenus,
		&page.Sort,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
