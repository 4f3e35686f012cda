package order

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

const orderColumns = `id, email, address_id, order_date, total_amount, status, payment_method, pg_name, pg_payment_id, pg_status, pg_response_message`

var sortable = map[string]string{
	"orderId":     "id",
	"orderDate":   "order_date",
	"totalAmount": "total_amount",
	"orderStatus": "status",
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
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

type cartLine struct {
	productID   int64
	productName string
	quantity    int
	price       decimal.Decimal
	discount    decimal.Decimal
}

// PlaceFromCart converts the user's cart into an order in one transaction.
// Stock is taken with a conditional decrement per product in ascending id
// order; any shortfall rolls the whole checkout back.
func (r *postgresRepo) PlaceFromCart(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		cartID int64
		total  decimal.Decimal
	)
	if err := tx.QueryRow(ctx, `SELECT id, total_price FROM carts WHERE user_id = $1 FOR UPDATE`, in.UserID).Scan(&cartID, &total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cart for user %s: %w", in.UserID, domain.ErrNotFound)
		}
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT ci.product_id, p.name, ci.quantity, ci.product_price, ci.discount
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.product_id
`, cartID)
	if err != nil {
		return nil, err
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cartLine, error) {
		var l cartLine
		err := row.Scan(&l.productID, &l.productName, &l.quantity, &l.price, &l.discount)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart %d is empty: %w", cartID, domain.ErrNotFound)
	}

	for _, l := range lines {
		cmd, err := tx.Exec(ctx, `
UPDATE products
SET quantity = quantity - $2, updated_at = now()
WHERE id = $1 AND quantity >= $2
`, l.productID, l.quantity)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, fmt.Errorf("product %d (%s): %w", l.productID, l.productName, domain.ErrInsufficientStock)
		}
	}

	o := domain.Order{
		Email:       in.Email,
		AddressID:   in.AddressID,
		TotalAmount: total,
		Status:      domain.OrderStatusPlaced,
		Payment:     in.Payment,
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO orders (email, address_id, total_amount, status, payment_method, pg_name, pg_payment_id, pg_status, pg_response_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_date
`, o.Email, o.AddressID, o.TotalAmount, o.Status, o.Payment.Method, o.Payment.PGName, o.Payment.PGPaymentID, o.Payment.PGStatus, o.Payment.PGResponseMessage).Scan(&o.ID, &o.OrderDate); err != nil {
		if _, ok := db.ForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("address %d: %w", in.AddressID, domain.ErrNotFound)
		}
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, discount)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`, o.ID, l.productID, l.productName, l.quantity, l.price, l.discount)
	}
	br := tx.SendBatch(ctx, batch)
	for _, l := range lines {
		item := domain.OrderItem{
			OrderID:     o.ID,
			ProductName: l.productName,
			Quantity:    l.quantity,
			UnitPrice:   l.price,
			Discount:    l.discount,
		}
		pid := l.productID
		item.ProductID = &pid
		if err := br.QueryRow().Scan(&item.ID); err != nil {
			br.Close()
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET total_price = 0 WHERE id = $1`, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: placed order_id=%d cart_id=%d items=%d total=%s", o.ID, cartID, len(o.Items), o.TotalAmount)
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	orders, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *postgresRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Order, int64, error) {
	return r.listWhere(ctx, "", nil, page)
}

func (r *postgresRepo) ListByEmail(ctx context.Context, email string, page domain.PageRequest) ([]domain.Order, int64, error) {
	return r.listWhere(ctx, " WHERE email = $1", []any{email}, page)
}

func (r *postgresRepo) listWhere(ctx context.Context, where string, args []any, page domain.PageRequest) ([]domain.Order, int64, error) {
	page = page.Normalize()
	order, err := db.OrderBy(page, sortable, "id")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM orders%s %s LIMIT $%d OFFSET $%d`, orderColumns, where, order, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, q, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	r.logger.Printf("order repo: order_id=%d status=%q", id, status)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var (
		count   int64
		revenue decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, `SELECT count(*), COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&count, &revenue)
	return count, revenue, err
}

func (r *postgresRepo) collect(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		var o domain.Order
		err := row.Scan(&o.ID, &o.Email, &o.AddressID, &o.OrderDate, &o.TotalAmount, &o.Status,
			&o.Payment.Method, &o.Payment.PGName, &o.Payment.PGPaymentID, &o.Payment.PGStatus, &o.Payment.PGResponseMessage)
		return o, err
	})
	if err != nil || len(orders) == 0 {
		return orders, err
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
SELECT id, order_id, product_id, product_name, quantity, unit_price, discount
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, id
`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Discount); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
