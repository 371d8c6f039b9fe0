package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/gin-gonic/gin"
)

type cartHandlers struct {
	svc      CartService
	resolver *identityResolver
	logger   *log.Logger
}

type cartLineResponse struct {
	CartItemID       int64  `json:"cart_item_id"`
	ProductVariantID int64  `json:"product_variant_id"`
	Quantity         int    `json:"quantity"`
	Price            int64  `json:"price"`
	ProductTitle     string `json:"product_title"`
}

type addCartRequest struct {
	ProductVariantID int64 `json:"product_variant_id"`
	Quantity         *int  `json:"quantity"`
}

type updateCartRequest struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity"`
}

func (h *cartHandlers) list(c *gin.Context) {
	owner, ok := h.resolver.resolveOwner(c, true)
	if !ok {
		c.JSON(http.StatusOK, []cartLineResponse{})
		return
	}
	lines, err := h.svc.List(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineResponse{
			CartItemID:       line.ID,
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
			Price:            line.PriceCents,
			ProductTitle:     line.Title,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *cartHandlers) add(c *gin.Context) {
	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	owner, ok := h.resolver.resolveOwner(c, true)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no owner"})
		return
	}
	lineID, err := h.svc.Add(c.Request.Context(), owner, req.ProductVariantID, quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart_item_id": lineID})
}

func (h *cartHandlers) update(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	owner, ok := h.resolver.resolveOwner(c, false)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no owner"})
		return
	}
	if err := h.svc.SetQuantity(c.Request.Context(), owner, req.CartItemID, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *cartHandlers) remove(c *gin.Context) {
	lineID, err := strconv.ParseInt(c.Query("cart_item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart_item_id required"})
		return
	}
	owner, ok := h.resolver.resolveOwner(c, false)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no owner"})
		return
	}
	if err := h.svc.Remove(c.Request.Context(), owner, lineID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *cartHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		// "doesn't exist" and "not yours" are deliberately the same answer.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Printf("cart handler: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
