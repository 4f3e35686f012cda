package category

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain"
)

var sortable = map[string]string{
	"categoryId":   "id",
	"categoryName": "name",
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, name string) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
RETURNING id, name, created_at
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return nil, fmt.Errorf("category %q: %w", name, domain.ErrDuplicateResource)
		}
		return nil, err
	}
	r.logger.Printf("category repo: created id=%d name=%q", c.ID, c.Name)
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM categories WHERE id = $1`, id)
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM categories WHERE name = $1`, name)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg any) (*domain.Category, error) {
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Category, int64, error) {
	page = page.Normalize()
	order, err := db.OrderBy(page, sortable, "id")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories `+order+` LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $2
WHERE id = $1
RETURNING id, name, created_at
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if _, ok := db.UniqueViolation(err); ok {
			return nil, fmt.Errorf("category %q: %w", name, domain.ErrDuplicateResource)
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if _, ok := db.ForeignKeyViolation(err); ok {
			return fmt.Errorf("category %d: %w", id, domain.ErrReferenced)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("category repo: deleted id=%d", id)
	return nil
}
