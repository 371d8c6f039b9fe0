package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	authsvc "github.com/MulubahzumuKSipor/zynk-cart/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type authHandlers struct {
	auth   AuthService
	cart   CartService
	logger *log.Logger
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandlers) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	u, access, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			h.logger.Printf("auth handler: signup error=%v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":         u,
		"access_token": access,
		"expires_in":   h.auth.AccessTTLSeconds(),
	})
}

// login authenticates the user and, if the request carried a guest session
// cookie, folds that guest cart into the user's cart before responding and
// clears the cookie. The merge runs server-side exactly once per login.
func (h *authHandlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	u, access, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Printf("auth handler: login error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if token, cookieErr := c.Cookie(sessionCookieName); cookieErr == nil && token != "" {
		if err := h.cart.Merge(c.Request.Context(), u.ID, token); err != nil {
			// The merge is transactional; on failure the guest cart is
			// intact, so keep the cookie for a retry on the next login.
			h.logger.Printf("auth handler: cart merge user=%d error=%v", u.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart merge failed"})
			return
		}
		clearGuestCookie(c)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         u,
		"access_token": access,
		"expires_in":   h.auth.AccessTTLSeconds(),
	})
}

func (h *authHandlers) me(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	u, err := h.auth.LookupByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		h.logger.Printf("auth handler: me error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
