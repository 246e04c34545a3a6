package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

// OrderService is implemented by *usecase.Orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error)
	PlaceOrderFromCart(ctx context.Context, userID string, shipping domain.ShippingAddress) (usecase.PlaceOrderOutput, error)
	GetOrder(ctx context.Context, orderID string, caller usecase.Caller) (*domain.Order, error)
	GetOrderStatus(ctx context.Context, orderID string, caller usecase.Caller) (domain.Status, error)
	ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context, caller usecase.Caller) ([]domain.Order, error)
	SetOrderStatus(ctx context.Context, orderID, newStatus string, caller usecase.Caller) (*domain.Order, error)
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderLineReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type placeOrderReq struct {
	Lines    []orderLineReq         `json:"lines" binding:"required,min=1,dive"`
	Shipping domain.ShippingAddress `json:"shipping" binding:"required"`
}

type placeOrderResp struct {
	OrderID string        `json:"orderId"`
	Total   string        `json:"total"`
	Status  domain.Status `json:"status"`
}

// PlaceOrder handles POST /api/orders with explicit lines.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "malformed order payload"})
		return
	}

	lines := make([]usecase.DraftLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.DraftLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.svc.PlaceOrder(ctx, usecase.PlaceOrderInput{
		UserID:         caller.UserID,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Lines:          lines,
		Shipping:       req.Shipping,
	})
	if err != nil {
		middleware.CountOrderOutcome(domain.ReasonCode(err))
		respondError(c, err)
		return
	}

	middleware.CountOrderOutcome("placed")
	c.JSON(http.StatusCreated, placeOrderResp{OrderID: out.OrderID, Total: out.Total, Status: out.Status})
}

type checkoutReq struct {
	Shipping domain.ShippingAddress `json:"shipping" binding:"required"`
}

// Checkout handles POST /api/orders/checkout: the order is built
// from the caller's cart, which empties on success.
func (h *OrderHandler) Checkout(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "malformed checkout payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.svc.PlaceOrderFromCart(ctx, caller.UserID, req.Shipping)
	if err != nil {
		middleware.CountOrderOutcome(domain.ReasonCode(err))
		respondError(c, err)
		return
	}

	middleware.CountOrderOutcome("placed")
	c.JSON(http.StatusCreated, placeOrderResp{OrderID: out.OrderID, Total: out.Total, Status: out.Status})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.svc.GetOrder(ctx, c.Param("id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

// GetOrderStatus serves cheap status polls, cache first.
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	st, err := h.svc.GetOrderStatus(ctx, c.Param("id"), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "status": st})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.svc.ListMyOrders(ctx, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.svc.ListAllOrders(ctx, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

type setStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) SetOrderStatus(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "status is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	o, err := h.svc.SetOrderStatus(ctx, c.Param("id"), req.Status, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}
