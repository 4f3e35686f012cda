package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain"
)

const columns = `id, category_id, name, description, image, quantity, price, discount, special_price, created_at, updated_at`

var sortable = map[string]string{
	"productId":    "id",
	"productName":  "name",
	"price":        "price",
	"specialPrice": "special_price",
	"quantity":     "quantity",
	"discount":     "discount",
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

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Image, &p.Quantity, &p.Price, &p.Discount, &p.SpecialPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Image == "" {
		p.Image = domain.DefaultImage
	}
	q := `
INSERT INTO products (category_id, name, description, image, quantity, price, discount, special_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.CategoryID, p.Name, p.Description, p.Image, p.Quantity, p.Price, p.Discount, p.SpecialPrice))
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return nil, fmt.Errorf("product %q: %w", p.Name, domain.ErrDuplicateResource)
		}
		if _, ok := db.ForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("category %d: %w", p.CategoryID, domain.ErrNotFound)
		}
		r.logger.Printf("product repo: create category_id=%d error=%v", p.CategoryID, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	out, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) FindByCategoryAndName(ctx context.Context, categoryID int64, name string) (*domain.Product, error) {
	out, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE category_id = $1 AND name = $2`, categoryID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error) {
	page = page.Normalize()
	order, err := db.OrderBy(page, sortable, "id")
	if err != nil {
		return nil, 0, err
	}

	var (
		conds []string
		args  []any
	)
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(kw))+"%")
		conds = append(conds, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM products%s %s LIMIT $%d OFFSET $%d`, columns, where, order, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, q, append(args, page.Size, page.Offset())...)
	if err != nil {
		r.logger.Printf("product repo: list keyword=%q category_id=%d error=%v", filter.Keyword, filter.CategoryID, err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products
SET name = $2,
    description = $3,
    quantity = $4,
    price = $5,
    discount = $6,
    special_price = $7,
    updated_at = now()
WHERE id = $1
RETURNING ` + columns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Quantity, p.Price, p.Discount, p.SpecialPrice))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if _, ok := db.UniqueViolation(err); ok {
			return nil, fmt.Errorf("product %q: %w", p.Name, domain.ErrDuplicateResource)
		}
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%d special_price=%s", out.ID, out.SpecialPrice)
	return out, nil
}

func (r *postgresRepo) UpdateImage(ctx context.Context, id int64, image string) (*domain.Product, error) {
	q := `UPDATE products SET image = $2, updated_at = now() WHERE id = $1 RETURNING ` + columns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id, image))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if _, ok := db.ForeignKeyViolation(err); ok {
			return fmt.Errorf("product %d: %w", id, domain.ErrReferenced)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%d", id)
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n)
	return n, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
