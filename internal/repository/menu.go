package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coffeeshop-api/internal/domain/menu"
)

var menuItemColumns = []string{"id", "name", "category", "price", "is_available", "created_at"}

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL. Queries
// are built with squirrel so the list filters and partial updates compose
// from the same column set.
type MenuRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new menu item and fills in the assigned id and timestamp.
func (r *MenuRepository) Create(ctx context.Context, it *menu.Item) error {
	query, args, err := r.sb.Insert("menu_items").
		Columns("name", "category", "price", "is_available").
		Values(it.Name, it.Category, it.Price, it.IsAvailable).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.ID, &it.CreatedAt); err != nil {
		return fmt.Errorf("creating menu item: %w", err)
	}
	return nil
}

// Get returns a single menu item by id.
func (r *MenuRepository) Get(ctx context.Context, id int64) (*menu.Item, error) {
	query, args, err := r.sb.Select(menuItemColumns...).
		From("menu_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}
	return &it, nil
}

// List returns the full menu ordered by id, unavailable items included.
func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	return r.list(ctx, nil)
}

// ListAvailable returns only items with the availability flag set.
func (r *MenuRepository) ListAvailable(ctx context.Context) ([]menu.Item, error) {
	return r.list(ctx, sq.Eq{"is_available": true})
}

// ListByCategory returns available items in the given category. Matching is
// exact string equality.
func (r *MenuRepository) ListByCategory(ctx context.Context, category string) ([]menu.Item, error) {
	return r.list(ctx, sq.Eq{"category": category, "is_available": true})
}

func (r *MenuRepository) list(ctx context.Context, where any) ([]menu.Item, error) {
	b := r.sb.Select(menuItemColumns...).From("menu_items").OrderBy("id")
	if where != nil {
		b = b.Where(where)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// Update applies only the non-nil fields of upd and returns the updated row.
func (r *MenuRepository) Update(ctx context.Context, id int64, upd menu.Update) (*menu.Item, error) {
	b := r.sb.Update("menu_items").Where(sq.Eq{"id": id})
	if upd.Name != nil {
		b = b.Set("name", *upd.Name)
	}
	if upd.Category != nil {
		b = b.Set("category", *upd.Category)
	}
	if upd.Price != nil {
		b = b.Set("price", *upd.Price)
	}
	if upd.IsAvailable != nil {
		b = b.Set("is_available", *upd.IsAvailable)
	}
	if upd.Name == nil && upd.Category == nil && upd.Price == nil && upd.IsAvailable == nil {
		// Nothing to apply; degrade to a read so the caller still gets
		// NotFound for a missing id.
		return r.Get(ctx, id)
	}

	query, args, err := b.Suffix("RETURNING " + strings.Join(menuItemColumns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating menu item %d: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("updating menu item %d: %w", id, err)
	}
	return &it, nil
}

// Delete removes a menu item row. Referential checks happen in the service.
func (r *MenuRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("menu_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting menu item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var it menu.Item
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Price, &it.IsAvailable, &it.CreatedAt)
	return it, err
}
