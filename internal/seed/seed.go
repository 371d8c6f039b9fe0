package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type variantSeed struct {
	SKU        string
	Title      string
	PriceCents int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	variants := []variantSeed{
		{SKU: "SKU-TSHIRT-M", Title: "ZYNK T-Shirt (M)", PriceCents: 1999},
		{SKU: "SKU-TSHIRT-L", Title: "ZYNK T-Shirt (L)", PriceCents: 1999},
		{SKU: "SKU-MUG", Title: "ZYNK Mug", PriceCents: 1299},
		{SKU: "SKU-HOODIE-M", Title: "ZYNK Hoodie (M)", PriceCents: 4999},
	}

	for _, v := range variants {
		if err := upsertVariant(ctx, pool, v); err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
		}
	}

	return nil
}

func upsertVariant(ctx context.Context, pool *pgxpool.Pool, v variantSeed) error {
	const q = `
INSERT INTO product_variants (sku, title, price_cents)
VALUES ($1, $2, $3)
ON CONFLICT (sku) DO UPDATE
SET title = EXCLUDED.title,
    price_cents = EXCLUDED.price_cents
`
	_, err := pool.Exec(ctx, q, v.SKU, v.Title, v.PriceCents)
	return err
}
