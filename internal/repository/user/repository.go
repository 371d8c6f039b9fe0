package user

import (
	"context"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
