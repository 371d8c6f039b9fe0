package variant

import (
	"context"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.ProductVariant, error)
	GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error)
	List(ctx context.Context) ([]domain.ProductVariant, error)
	Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error)
}
