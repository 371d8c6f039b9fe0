package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	cartrepo "github.com/MulubahzumuKSipor/zynk-cart/internal/repository/cart"
)

// Service applies the cart invariants on top of the line store: positive
// quantities only, variants must exist, and owner scoping on every call.
type Service struct {
	repo     lineRepo
	variants variantRepo
}

type lineRepo interface {
	List(ctx context.Context, owner domain.Owner) ([]domain.CartLine, error)
	UpsertAdd(ctx context.Context, owner domain.Owner, variantID int64, quantity int) (int64, error)
	SetQuantity(ctx context.Context, owner domain.Owner, lineID int64, quantity int) error
	Remove(ctx context.Context, owner domain.Owner, lineID int64) error
	MergeGuest(ctx context.Context, userID int64, sessionID string) error
}

type variantRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.ProductVariant, error)
}

func New(repo cartrepo.Repository, variants variantRepo) *Service {
	return &Service{repo: repo, variants: variants}
}

// List returns the owner's lines, most recently added first. An empty cart
// yields an empty slice, not an error.
func (s *Service) List(ctx context.Context, owner domain.Owner) ([]domain.CartLine, error) {
	return s.repo.List(ctx, owner)
}

// Add inserts a line for the variant or increments the existing one.
// Repeated adds are additive.
func (s *Service) Add(ctx context.Context, owner domain.Owner, variantID int64, quantity int) (int64, error) {
	if variantID <= 0 {
		return 0, fmt.Errorf("%w: product variant required", domain.ErrValidation)
	}
	if quantity < 1 {
		return 0, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: unknown product variant", domain.ErrValidation)
		}
		return 0, err
	}
	return s.repo.UpsertAdd(ctx, owner, variantID, quantity)
}

// SetQuantity overwrites a line's quantity. A non-positive quantity is
// rejected; removal is an explicit call, never a side effect of an update.
func (s *Service) SetQuantity(ctx context.Context, owner domain.Owner, lineID int64, quantity int) error {
	if lineID <= 0 {
		return fmt.Errorf("%w: cart item required", domain.ErrValidation)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive, use remove to delete a line", domain.ErrValidation)
	}
	return s.repo.SetQuantity(ctx, owner, lineID, quantity)
}

// Remove deletes a line belonging to the owner.
func (s *Service) Remove(ctx context.Context, owner domain.Owner, lineID int64) error {
	if lineID <= 0 {
		return fmt.Errorf("%w: cart item required", domain.ErrValidation)
	}
	return s.repo.Remove(ctx, owner, lineID)
}

// Merge folds the guest session's cart into the user's cart and retires
// the session's lines. Safe to call with an empty or already merged
// session token.
func (s *Service) Merge(ctx context.Context, userID int64, sessionToken string) error {
	if strings.TrimSpace(sessionToken) == "" {
		return nil
	}
	return s.repo.MergeGuest(ctx, userID, sessionToken)
}
