package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartService is the surface the cart handlers need.
type CartService interface {
	List(ctx context.Context, owner domain.Owner) ([]domain.CartLine, error)
	Add(ctx context.Context, owner domain.Owner, variantID int64, quantity int) (int64, error)
	SetQuantity(ctx context.Context, owner domain.Owner, lineID int64, quantity int) error
	Remove(ctx context.Context, owner domain.Owner, lineID int64) error
	Merge(ctx context.Context, userID int64, sessionToken string) error
}

// AuthService is the surface the auth handlers and the identity resolver need.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

// Deps carries the services the router depends on.
type Deps struct {
	CartSvc        CartService
	AuthSvc        AuthService
	CORSOrigins    []string
	GuestCookieTTL time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.AuthSvc == nil {
		return nil, errors.New("cart and auth services required")
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		// Credentials must be allowed so the guest cookie flows from
		// browser clients.
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	resolver := &identityResolver{
		auth:      deps.AuthSvc,
		cookieTTL: deps.GuestCookieTTL,
	}

	cart := &cartHandlers{svc: deps.CartSvc, resolver: resolver, logger: logger}
	router.GET("/cart", cart.list)
	router.POST("/cart", cart.add)
	router.PATCH("/cart", cart.update)
	router.DELETE("/cart", cart.remove)

	auth := &authHandlers{auth: deps.AuthSvc, cart: deps.CartSvc, logger: logger}
	router.POST("/auth/signup", auth.signup)
	router.POST("/auth/login", auth.login)
	router.GET("/auth/me", auth.me)

	return router, nil
}
