package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain"
)

const columns = `id, user_id, street, building_name, city, state, country, pincode, created_at`

var sortable = map[string]string{
	"addressId": "id",
	"city":      "city",
	"country":   "country",
	"userId":    "user_id",
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func scanAddress(row pgx.Row) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.BuildingName, &a.City, &a.State, &a.Country, &a.Pincode, &a.CreatedAt)
	return a, err
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	q := `
INSERT INTO addresses (user_id, street, building_name, city, state, country, pincode)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns
	out, err := scanAddress(r.pool.QueryRow(ctx, q, a.UserID, a.Street, a.BuildingName, a.City, a.State, a.Country, a.Pincode))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Address, error) {
		return scanAddress(row)
	})
}

// GetForUser returns the address only when userID owns it.
func (r *postgresRepo) GetForUser(ctx context.Context, userID string, id int64) (*domain.Address, error) {
	out, err := scanAddress(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	out, err := scanAddress(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM addresses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Address, int64, error) {
	page = page.Normalize()
	order, err := db.OrderBy(page, sortable, "id")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM addresses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM addresses `+order+` LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Address, error) {
		return scanAddress(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, a domain.Address) (*domain.Address, error) {
	q := `
UPDATE addresses
SET street = $2, building_name = $3, city = $4, state = $5, country = $6, pincode = $7
WHERE id = $1
RETURNING ` + columns
	out, err := scanAddress(r.pool.QueryRow(ctx, q, a.ID, a.Street, a.BuildingName, a.City, a.State, a.Country, a.Pincode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Delete removes an address. Addresses used by an order are kept and report
// ErrReferenced.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		if _, ok := db.ForeignKeyViolation(err); ok {
			return fmt.Errorf("address %d is used by an order: %w", id, domain.ErrReferenced)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
