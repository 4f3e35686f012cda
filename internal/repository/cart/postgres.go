package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/db"
	"storefront/internal/domain"
)

var sortable = map[string]string{
	"cartId":     "id",
	"totalPrice": "total_price",
	"createdAt":  "created_at",
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
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

func (r *postgresRepo) GetOrCreate(ctx context.Context, user domain.User) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, user_email)
VALUES ($1, $2)
ON CONFLICT ON CONSTRAINT carts_user_id_key DO UPDATE
SET user_email = COALESCE(NULLIF(EXCLUDED.user_email, ''), carts.user_email)
RETURNING id
`
	var cartID int64
	if err := r.pool.QueryRow(ctx, q, user.ID, user.Email).Scan(&cartID); err != nil {
		r.logger.Printf("cart repo: get or create user_id=%s error=%v", user.ID, err)
		return nil, err
	}
	return r.GetByID(ctx, cartID)
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, r.pool, `
SELECT id, user_id, user_email, total_price, created_at
FROM carts
WHERE user_id = $1
`, userID)
}

func (r *postgresRepo) GetByID(ctx context.Context, cartID int64) (*domain.Cart, error) {
	return r.fetchCart(ctx, r.pool, `
SELECT id, user_id, user_email, total_price, created_at
FROM carts
WHERE id = $1
`, cartID)
}

func (r *postgresRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Cart, int64, error) {
	page = page.Normalize()
	order, err := db.OrderBy(page, sortable, "id")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM carts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, user_id, user_email, total_price, created_at FROM carts `+order+` LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		carts []domain.Cart
		ids   []int64
	)
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserEmail, &c.TotalPrice, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		carts = append(carts, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range carts {
		carts[i].Items = items[carts[i].ID]
	}
	return carts, total, nil
}

// FindCartIDsByProduct returns the ids of every cart currently holding the
// product, in ascending order.
func (r *postgresRepo) FindCartIDsByProduct(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT cart_id FROM cart_items WHERE product_id = $1 ORDER BY cart_id`, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *postgresRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	stock, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM cart_items WHERE cart_id = $1 AND product_id = $2)
`, cartID, productID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("product %d: %w", productID, domain.ErrAlreadyInCart)
	}
	if quantity > stock.quantity {
		return fmt.Errorf("product %d: requested %d, available %d: %w", productID, quantity, stock.quantity, domain.ErrInsufficientStock)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity, product_price, discount)
VALUES ($1, $2, $3, $4, $5)
`, cartID, productID, quantity, stock.specialPrice, stock.discount); err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return fmt.Errorf("product %d: %w", productID, domain.ErrAlreadyInCart)
		}
		return err
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IncrementItem adds quantity to an existing line or creates it. The resulting
// quantity must not exceed stock.
func (r *postgresRepo) IncrementItem(ctx context.Context, cartID, productID int64, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	stock, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	var current int
	err = tx.QueryRow(ctx, `SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if current+quantity > stock.quantity {
		return fmt.Errorf("product %d: requested %d, available %d: %w", productID, current+quantity, stock.quantity, domain.ErrInsufficientStock)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity, product_price, discount)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ON CONSTRAINT cart_items_cart_product_key DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    product_price = EXCLUDED.product_price,
    discount = EXCLUDED.discount
`, cartID, productID, quantity, stock.specialPrice, stock.discount); err != nil {
		return err
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ChangeItemQuantity applies delta to a line. Increments are checked against
// stock; decrements are always allowed and a line reaching zero is removed.
// The price snapshot is refreshed either way.
func (r *postgresRepo) ChangeItemQuantity(ctx context.Context, cartID, productID int64, delta int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}

	var current int
	if err := tx.QueryRow(ctx, `SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d in cart %d: %w", productID, cartID, domain.ErrNotFound)
		}
		return err
	}
	stock, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	next := current + delta
	if delta > 0 && next > stock.quantity {
		return fmt.Errorf("product %d: requested %d, available %d: %w", productID, next, stock.quantity, domain.ErrInsufficientStock)
	}

	if next <= 0 {
		_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	} else {
		_, err = tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $3, product_price = $4, discount = $5
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID, next, stock.specialPrice, stock.discount)
	}
	if err != nil {
		return err
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RefreshItem copies the product's current special price and discount onto
// the line without touching its quantity.
func (r *postgresRepo) RefreshItem(ctx context.Context, cartID, productID int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	stock, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET product_price = $3, discount = $4
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID, stock.specialPrice, stock.discount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %d in cart %d: %w", productID, cartID, domain.ErrNotFound)
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) DeleteItem(ctx context.Context, cartID, productID int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %d in cart %d: %w", productID, cartID, domain.ErrNotFound)
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("cart repo: removed product_id=%d from cart_id=%d", productID, cartID)
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, q querier, cartQuery string, args ...any) (*domain.Cart, error) {
	var cart domain.Cart
	err := q.QueryRow(ctx, cartQuery, args...).Scan(&cart.ID, &cart.UserID, &cart.UserEmail, &cart.TotalPrice, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := loadItems(ctx, q, []int64{cart.ID})
	if err != nil {
		return nil, err
	}
	cart.Items = items[cart.ID]
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func loadItems(ctx context.Context, q querier, cartIDs []int64) (map[int64][]domain.CartItem, error) {
	out := make(map[int64][]domain.CartItem, len(cartIDs))
	if len(cartIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.image, ci.quantity, ci.product_price, ci.discount, ci.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = ANY($1)
ORDER BY ci.cart_id, ci.id
`, cartIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.ProductName, &it.Image, &it.Quantity, &it.ProductPrice, &it.Discount, &it.CreatedAt); err != nil {
			return nil, err
		}
		out[it.CartID] = append(out[it.CartID], it)
	}
	return out, rows.Err()
}

type productStock struct {
	quantity     int
	specialPrice decimal.Decimal
	discount     decimal.Decimal
}

func lockCart(ctx context.Context, tx pgx.Tx, cartID int64) error {
	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("cart %d: %w", cartID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) (productStock, error) {
	var s productStock
	err := tx.QueryRow(ctx, `
SELECT quantity, special_price, discount
FROM products
WHERE id = $1
FOR SHARE
`, productID).Scan(&s.quantity, &s.specialPrice, &s.discount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return s, err
	}
	return s, nil
}

func updateCartTotal(ctx context.Context, tx pgx.Tx, cartID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_price = COALESCE((
	SELECT SUM(quantity * product_price)
	FROM cart_items
	WHERE cart_id = $1
), 0)
WHERE id = $1
`, cartID)
	return err
}
