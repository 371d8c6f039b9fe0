package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *postgresRepo) List(ctx context.Context, owner domain.Owner) ([]domain.CartLine, error) {
	const byUser = `
SELECT l.id, l.variant_id, l.quantity, v.price_cents, v.title, l.added_at, l.updated_at
FROM cart_lines l
JOIN product_variants v ON v.id = l.variant_id
WHERE l.user_id = $1
ORDER BY l.added_at DESC, l.id DESC
`
	const bySession = `
SELECT l.id, l.variant_id, l.quantity, v.price_cents, v.title, l.added_at, l.updated_at
FROM cart_lines l
JOIN product_variants v ON v.id = l.variant_id
WHERE l.session_id = $1
ORDER BY l.added_at DESC, l.id DESC
`
	q, key := ownerQuery(owner, byUser, bySession)
	rows, err := r.pool.Query(ctx, q, key)
	if err != nil {
		r.logger.Printf("cart repo: list owner=%s error=%v", owner.Kind, err)
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.VariantID,
			&line.Quantity,
			&line.PriceCents,
			&line.Title,
			&line.AddedAt,
			&line.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("cart repo: list rows owner=%s error=%v", owner.Kind, err)
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) UpsertAdd(ctx context.Context, owner domain.Owner, variantID int64, quantity int) (int64, error) {
	// A single conflict-resolving insert keeps the per-owner-per-variant
	// uniqueness invariant under concurrent adds.
	const forUser = `
INSERT INTO cart_lines (user_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, variant_id) WHERE user_id IS NOT NULL
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING id
`
	const forSession = `
INSERT INTO cart_lines (session_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, variant_id) WHERE session_id IS NOT NULL
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING id
`
	q, key := ownerQuery(owner, forUser, forSession)
	var id int64
	if err := r.pool.QueryRow(ctx, q, key, variantID, quantity).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: upsert add owner=%s variant=%d error=%v", owner.Kind, variantID, err)
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, owner domain.Owner, lineID int64, quantity int) error {
	const forUser = `
UPDATE cart_lines
SET quantity = $1, updated_at = now()
WHERE id = $2 AND user_id = $3
`
	const forSession = `
UPDATE cart_lines
SET quantity = $1, updated_at = now()
WHERE id = $2 AND session_id = $3
`
	q, key := ownerQuery(owner, forUser, forSession)
	cmd, err := r.pool.Exec(ctx, q, quantity, lineID, key)
	if err != nil {
		r.logger.Printf("cart repo: set quantity owner=%s line=%d error=%v", owner.Kind, lineID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, owner domain.Owner, lineID int64) error {
	const forUser = `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2`
	const forSession = `DELETE FROM cart_lines WHERE id = $1 AND session_id = $2`
	q, key := ownerQuery(owner, forUser, forSession)
	cmd, err := r.pool.Exec(ctx, q, lineID, key)
	if err != nil {
		r.logger.Printf("cart repo: remove owner=%s line=%d error=%v", owner.Kind, lineID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) MergeGuest(ctx context.Context, userID int64, sessionID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Fold and delete run in one transaction so a crash leaves either the
	// pre-merge or the fully merged state. The guest line's added_at is
	// kept when it becomes a new user line.
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (user_id, variant_id, quantity, added_at, updated_at)
SELECT $1, variant_id, quantity, added_at, now()
FROM cart_lines
WHERE session_id = $2
ON CONFLICT (user_id, variant_id) WHERE user_id IS NOT NULL
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
`, userID, sessionID); err != nil {
		r.logger.Printf("cart repo: merge fold user=%d error=%v", userID, err)
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Printf("cart repo: merge cleanup user=%d error=%v", userID, err)
		return err
	}

	return tx.Commit(ctx)
}

func ownerQuery(owner domain.Owner, forUser, forSession string) (string, interface{}) {
	if owner.Kind == domain.OwnerUser {
		return forUser, owner.UserID
	}
	return forSession, owner.SessionID
}
