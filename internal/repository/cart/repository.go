package cart

import (
	"context"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
)

// Repository is the durable store for cart lines. All reads and writes are
// scoped by the owner key; a line is never visible to any other owner.
type Repository interface {
	// List returns the owner's lines joined with variant price and title,
	// most recently added first. An empty cart is not an error.
	List(ctx context.Context, owner domain.Owner) ([]domain.CartLine, error)
	// UpsertAdd inserts a line or atomically increments the existing one
	// for the same owner and variant, returning the line id.
	UpsertAdd(ctx context.Context, owner domain.Owner, variantID int64, quantity int) (int64, error)
	// SetQuantity overwrites a line's quantity. Returns domain.ErrNotFound
	// when no line matches the id under the given owner.
	SetQuantity(ctx context.Context, owner domain.Owner, lineID int64, quantity int) error
	// Remove deletes a line. Returns domain.ErrNotFound when no line
	// matches the id under the given owner.
	Remove(ctx context.Context, owner domain.Owner, lineID int64) error
	// MergeGuest folds every line owned by the session into the user's
	// cart and deletes the session's rows, all in one transaction.
	MergeGuest(ctx context.Context, userID int64, sessionID string) error
}
