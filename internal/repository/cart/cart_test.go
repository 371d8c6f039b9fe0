package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/MulubahzumuKSipor/zynk-cart/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping Postgres integration test")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, tokens, product_variants, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func seedVariant(ctx context.Context, t *testing.T, pool *pgxpool.Pool, sku, title string, priceCents int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO product_variants (sku, title, price_cents) VALUES ($1, $2, $3) RETURNING id
`, sku, title, priceCents).Scan(&id)
	if err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	return id
}

func seedUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id
`, email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func TestPostgres_UpsertAddIncrements(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	repo := NewPostgres(pool, nil)
	owner := domain.GuestOwner("guest-1")

	firstID, err := repo.UpsertAdd(ctx, owner, variantID, 2)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	secondID, err := repo.UpsertAdd(ctx, owner, variantID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if firstID != secondID {
		t.Fatalf("expected the same line on repeated add, got %d and %d", firstID, secondID)
	}

	lines, err := repo.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %+v", lines)
	}
	if lines[0].Quantity != 5 || lines[0].VariantID != variantID {
		t.Fatalf("unexpected line %+v", lines[0])
	}
	if lines[0].PriceCents != 1999 || lines[0].Title != "Tee" {
		t.Fatalf("variant join missing: %+v", lines[0])
	}
	if !lines[0].UpdatedAt.After(lines[0].AddedAt) {
		t.Fatalf("updated_at must be refreshed on increment: %+v", lines[0])
	}
}

func TestPostgres_UpsertAddUnknownVariant(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	repo := NewPostgres(pool, nil)
	_, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), 12345, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown variant, got %v", err)
	}
}

func TestPostgres_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	repo := NewPostgres(pool, nil)

	ownerA := domain.GuestOwner("guest-a")
	lineID, err := repo.UpsertAdd(ctx, ownerA, variantID, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	userID := seedUser(ctx, t, pool, "b@example.com")
	for _, other := range []domain.Owner{domain.GuestOwner("guest-b"), domain.UserOwner(userID)} {
		if err := repo.SetQuantity(ctx, other, lineID, 9); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("owner %s: expected not found on foreign update, got %v", other.Kind, err)
		}
		if err := repo.Remove(ctx, other, lineID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("owner %s: expected not found on foreign remove, got %v", other.Kind, err)
		}
		if lines, err := repo.List(ctx, other); err != nil || len(lines) != 0 {
			t.Fatalf("owner %s: expected empty cart, got %+v err=%v", other.Kind, lines, err)
		}
	}

	lines, err := repo.List(ctx, ownerA)
	if err != nil || len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("owner A's cart must be untouched, got %+v err=%v", lines, err)
	}
}

func TestPostgres_SetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	repo := NewPostgres(pool, nil)
	owner := domain.GuestOwner("guest-1")

	lineID, err := repo.UpsertAdd(ctx, owner, variantID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := repo.SetQuantity(ctx, owner, lineID, 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	lines, err := repo.List(ctx, owner)
	if err != nil || len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("unexpected lines %+v err=%v", lines, err)
	}

	if err := repo.Remove(ctx, owner, lineID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove(ctx, owner, lineID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
	if lines, err := repo.List(ctx, owner); err != nil || len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v err=%v", lines, err)
	}
}

func TestPostgres_MergeDisjointCarts(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	userID := seedUser(ctx, t, pool, "user@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), variantID, 2); err != nil {
		t.Fatalf("add guest line: %v", err)
	}

	if err := repo.MergeGuest(ctx, userID, "guest-1"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	userLines, err := repo.List(ctx, domain.UserOwner(userID))
	if err != nil || len(userLines) != 1 || userLines[0].Quantity != 2 {
		t.Fatalf("expected user line qty 2, got %+v err=%v", userLines, err)
	}
	guestLines, err := repo.List(ctx, domain.GuestOwner("guest-1"))
	if err != nil || len(guestLines) != 0 {
		t.Fatalf("expected zero guest lines, got %+v err=%v", guestLines, err)
	}
}

func TestPostgres_MergeOverlappingCarts(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	otherID := seedVariant(ctx, t, pool, "SKU-B", "Mug", 1299)
	userID := seedUser(ctx, t, pool, "user@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), variantID, 2); err != nil {
		t.Fatalf("add guest line: %v", err)
	}
	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), otherID, 1); err != nil {
		t.Fatalf("add guest line: %v", err)
	}
	if _, err := repo.UpsertAdd(ctx, domain.UserOwner(userID), variantID, 3); err != nil {
		t.Fatalf("add user line: %v", err)
	}

	if err := repo.MergeGuest(ctx, userID, "guest-1"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	userLines, err := repo.List(ctx, domain.UserOwner(userID))
	if err != nil || len(userLines) != 2 {
		t.Fatalf("expected two user lines, got %+v err=%v", userLines, err)
	}
	byVariant := map[int64]int{}
	for _, l := range userLines {
		byVariant[l.VariantID] = l.Quantity
	}
	if byVariant[variantID] != 5 || byVariant[otherID] != 1 {
		t.Fatalf("unexpected merged quantities %+v", byVariant)
	}
	if guestLines, err := repo.List(ctx, domain.GuestOwner("guest-1")); err != nil || len(guestLines) != 0 {
		t.Fatalf("expected zero guest lines, got %+v err=%v", guestLines, err)
	}
}

func TestPostgres_MergeEmptyGuestCartAndIdempotence(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantID := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	userID := seedUser(ctx, t, pool, "user@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.UpsertAdd(ctx, domain.UserOwner(userID), variantID, 3); err != nil {
		t.Fatalf("add user line: %v", err)
	}

	// Merging a session with no lines changes nothing.
	if err := repo.MergeGuest(ctx, userID, "never-used"); err != nil {
		t.Fatalf("merge empty session: %v", err)
	}

	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), variantID, 2); err != nil {
		t.Fatalf("add guest line: %v", err)
	}
	if err := repo.MergeGuest(ctx, userID, "guest-1"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	// A repeated merge is a no-op: the session's lines are already gone.
	if err := repo.MergeGuest(ctx, userID, "guest-1"); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	userLines, err := repo.List(ctx, domain.UserOwner(userID))
	if err != nil || len(userLines) != 1 || userLines[0].Quantity != 5 {
		t.Fatalf("expected single user line qty 5, got %+v err=%v", userLines, err)
	}
}

func TestPostgres_MergeAtomicity(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantA := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	variantB := seedVariant(ctx, t, pool, "SKU-B", "Mug", 1299)
	userID := seedUser(ctx, t, pool, "user@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), variantA, 2); err != nil {
		t.Fatalf("add guest line: %v", err)
	}
	if _, err := repo.UpsertAdd(ctx, domain.GuestOwner("guest-1"), variantB, 1); err != nil {
		t.Fatalf("add guest line: %v", err)
	}
	if _, err := repo.UpsertAdd(ctx, domain.UserOwner(userID), variantA, 3); err != nil {
		t.Fatalf("add user line: %v", err)
	}

	// Inject a failure after the fold step: deleting the guest rows raises,
	// forcing the merge transaction to roll back.
	if _, err := pool.Exec(ctx, `
CREATE OR REPLACE FUNCTION cart_lines_fail_delete() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'injected failure';
END;
$$ LANGUAGE plpgsql;
CREATE TRIGGER cart_lines_fail_delete BEFORE DELETE ON cart_lines
FOR EACH ROW EXECUTE FUNCTION cart_lines_fail_delete();
`); err != nil {
		t.Fatalf("install trigger: %v", err)
	}

	if err := repo.MergeGuest(ctx, userID, "guest-1"); err == nil {
		t.Fatalf("expected merge to fail with injected trigger")
	}

	if _, err := pool.Exec(ctx, `
DROP TRIGGER cart_lines_fail_delete ON cart_lines;
DROP FUNCTION cart_lines_fail_delete();
`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}

	// The pre-merge state must be fully intact: nothing folded, nothing lost.
	userLines, err := repo.List(ctx, domain.UserOwner(userID))
	if err != nil || len(userLines) != 1 || userLines[0].Quantity != 3 {
		t.Fatalf("user cart must be untouched after failed merge, got %+v err=%v", userLines, err)
	}
	guestLines, err := repo.List(ctx, domain.GuestOwner("guest-1"))
	if err != nil || len(guestLines) != 2 {
		t.Fatalf("guest cart must be untouched after failed merge, got %+v err=%v", guestLines, err)
	}

	// The merge succeeds once the failure is gone.
	if err := repo.MergeGuest(ctx, userID, "guest-1"); err != nil {
		t.Fatalf("merge after recovery: %v", err)
	}
	userLines, err = repo.List(ctx, domain.UserOwner(userID))
	if err != nil || len(userLines) != 2 {
		t.Fatalf("expected fully merged cart, got %+v err=%v", userLines, err)
	}
}

func TestPostgres_ListOrdersMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	variantA := seedVariant(ctx, t, pool, "SKU-A", "Tee", 1999)
	variantB := seedVariant(ctx, t, pool, "SKU-B", "Mug", 1299)
	repo := NewPostgres(pool, nil)
	owner := domain.GuestOwner("guest-1")

	if _, err := repo.UpsertAdd(ctx, owner, variantA, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := repo.UpsertAdd(ctx, owner, variantB, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, err := repo.List(ctx, owner)
	if err != nil || len(lines) != 2 {
		t.Fatalf("unexpected lines %+v err=%v", lines, err)
	}
	if lines[0].VariantID != variantB || lines[1].VariantID != variantA {
		t.Fatalf("expected most recently added first, got %+v", lines)
	}
}
