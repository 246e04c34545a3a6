package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/domain"
)

// CartService is implemented by *usecase.Carts.
type CartService interface {
	Add(ctx context.Context, userID, productID string, quantity int) error
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	Remove(ctx context.Context, userID, itemID string) error
}

type CartHandler struct {
	svc CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

type addToCartReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func (h *CartHandler) Add(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req addToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "productId and positive quantity are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Add(ctx, caller.UserID, req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

func (h *CartHandler) List(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.svc.List(ctx, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "cart": items})
}

type updateCartReq struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (h *CartHandler) Update(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req updateCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "positive quantity is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.UpdateQuantity(ctx, caller.UserID, c.Param("id"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *CartHandler) Remove(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Remove(ctx, caller.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
