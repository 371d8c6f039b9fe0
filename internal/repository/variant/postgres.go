package variant

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	const q = `
SELECT id, sku, title, price_cents, created_at
FROM product_variants
WHERE id = $1
`
	return r.scanVariant(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error) {
	const q = `
SELECT id, sku, title, price_cents, created_at
FROM product_variants
WHERE sku = $1
`
	return r.scanVariant(r.pool.QueryRow(ctx, q, sku))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.ProductVariant, error) {
	const q = `
SELECT id, sku, title, price_cents, created_at
FROM product_variants
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("variant repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.SKU, &v.Title, &v.PriceCents, &v.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("variant repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error) {
	const q = `
INSERT INTO product_variants (sku, title, price_cents)
VALUES ($1, $2, $3)
ON CONFLICT (sku) DO UPDATE SET
    title = EXCLUDED.title,
    price_cents = EXCLUDED.price_cents
RETURNING id, sku, title, price_cents, created_at
`
	return r.scanVariant(r.pool.QueryRow(ctx, q, v.SKU, v.Title, v.PriceCents))
}

func (r *postgresRepo) scanVariant(row pgx.Row) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	if err := row.Scan(&v.ID, &v.SKU, &v.Title, &v.PriceCents, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("variant repo: scan error=%v", err)
		return nil, err
	}
	return &v, nil
}
