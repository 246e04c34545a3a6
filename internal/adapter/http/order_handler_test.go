package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Furnituredemo/configs"
	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

func testConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "storefront-api"
	cfg.Security.Audience = "storefront-clients"
	cfg.Security.TokenTTL = time.Hour
	return cfg
}

func signToken(t *testing.T, cfg configs.Config, sub string, admin bool) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": cfg.Security.Issuer,
		"aud": cfg.Security.Audience,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(cfg.Security.TokenTTL).Unix(),
		"sub": sub,
		"adm": admin,
	})
	s, err := token.SignedString([]byte(cfg.Security.JWTSecret))
	require.NoError(t, err)
	return s
}

type stubOrderService struct {
	placeFn     func(ctx context.Context, in usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error)
	checkoutFn  func(ctx context.Context, userID string, shipping domain.ShippingAddress) (usecase.PlaceOrderOutput, error)
	getFn       func(ctx context.Context, orderID string, caller usecase.Caller) (*domain.Order, error)
	statusFn    func(ctx context.Context, orderID string, caller usecase.Caller) (domain.Status, error)
	listMineFn  func(ctx context.Context, userID string) ([]domain.Order, error)
	listAllFn   func(ctx context.Context, caller usecase.Caller) ([]domain.Order, error)
	setStatusFn func(ctx context.Context, orderID, newStatus string, caller usecase.Caller) (*domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error) {
	return s.placeFn(ctx, in)
}

func (s *stubOrderService) PlaceOrderFromCart(ctx context.Context, userID string, shipping domain.ShippingAddress) (usecase.PlaceOrderOutput, error) {
	return s.checkoutFn(ctx, userID, shipping)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string, caller usecase.Caller) (*domain.Order, error) {
	return s.getFn(ctx, orderID, caller)
}

func (s *stubOrderService) GetOrderStatus(ctx context.Context, orderID string, caller usecase.Caller) (domain.Status, error) {
	return s.statusFn(ctx, orderID, caller)
}

func (s *stubOrderService) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listMineFn(ctx, userID)
}

func (s *stubOrderService) ListAllOrders(ctx context.Context, caller usecase.Caller) ([]domain.Order, error) {
	return s.listAllFn(ctx, caller)
}

func (s *stubOrderService) SetOrderStatus(ctx context.Context, orderID, newStatus string, caller usecase.Caller) (*domain.Order, error) {
	return s.setStatusFn(ctx, orderID, newStatus, caller)
}

func orderTestRouter(svc OrderService, cfg configs.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(svc)
	authz := middleware.NewAuthz(cfg)

	r := gin.New()
	orders := r.Group("/api/orders")
	{
		orders.POST("", authz.RequireUser(), h.PlaceOrder)
		orders.POST("/checkout", authz.RequireUser(), h.Checkout)
		orders.GET("/myorders", authz.RequireUser(), h.ListMyOrders)
		orders.GET("/:id", authz.RequireUser(), h.GetOrder)
		orders.GET("/:id/status", authz.RequireUser(), h.GetOrderStatus)
		orders.GET("", authz.RequireAdmin(), h.ListAllOrders)
		orders.PUT("/:id/status", authz.RequireAdmin(), h.SetOrderStatus)
	}
	return r
}

const placeOrderBody = `{
	"lines": [{"productId": "pA", "quantity": 2}],
	"shipping": {"name": "Jo", "street": "1 Main St", "city": "Town", "postalCode": "12345", "country": "US"}
}`

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderHandler_Created(t *testing.T) {
	cfg := testConfig()
	var got usecase.PlaceOrderInput
	svc := &stubOrderService{
		placeFn: func(_ context.Context, in usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error) {
			got = in
			return usecase.PlaceOrderOutput{OrderID: "o-1", Total: "20.00", Status: domain.StatusPending}, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(placeOrderBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "u1", false))
	req.Header.Set("X-Idempotency-Key", "key-9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "o-1", resp["orderId"])
	assert.Equal(t, "20.00", resp["total"])
	assert.Equal(t, "pending", resp["status"])

	// the caller identity and idempotency key reach the service
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "key-9", got.IdempotencyKey)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "pA", got.Lines[0].ProductID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
}

func TestPlaceOrderHandler_InsufficientStock(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		placeFn: func(context.Context, usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error) {
			return usecase.PlaceOrderOutput{}, &domain.InsufficientStockError{
				Line: 0, ProductID: "pA", Requested: 2, Available: 1,
			}
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodPost, "/api/orders", signToken(t, cfg, "u1", false), placeOrderBody)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_stock", resp["error"])
	assert.Equal(t, float64(0), resp["line"])
}

func TestPlaceOrderHandler_MalformedPayload(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		placeFn: func(context.Context, usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error) {
			t.Fatal("service must not be called")
			return usecase.PlaceOrderOutput{}, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	for _, body := range []string{
		`{}`,
		`{"lines": []}`,
		`{"lines": [{"productId": "pA", "quantity": 0}]}`,
		`not json`,
	} {
		w := doJSON(r, http.MethodPost, "/api/orders", signToken(t, cfg, "u1", false), body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestPlaceOrderHandler_RequiresToken(t *testing.T) {
	cfg := testConfig()
	r := orderTestRouter(&stubOrderService{}, cfg)

	w := doJSON(r, http.MethodPost, "/api/orders", "", placeOrderBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// wrong signing key
	otherCfg := testConfig()
	otherCfg.Security.JWTSecret = "other-secret"
	w = doJSON(r, http.MethodPost, "/api/orders", signToken(t, otherCfg, "u1", false), placeOrderBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceOrderHandler_DuplicateRequest(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		placeFn: func(context.Context, usecase.PlaceOrderInput) (usecase.PlaceOrderOutput, error) {
			return usecase.PlaceOrderOutput{}, usecase.ErrDuplicate
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodPost, "/api/orders", signToken(t, cfg, "u1", false), placeOrderBody)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate_request")
}

func TestGetOrderHandler(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string, caller usecase.Caller) (*domain.Order, error) {
			switch orderID {
			case "o-1":
				if caller.UserID != "u1" && !caller.IsAdmin {
					return nil, domain.ErrForbidden
				}
				return &domain.Order{ID: "o-1", UserID: "u1", Status: domain.StatusPending}, nil
			default:
				return nil, domain.ErrNotFound
			}
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodGet, "/api/orders/o-1", signToken(t, cfg, "u1", false), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"o-1"`)

	w = doJSON(r, http.MethodGet, "/api/orders/o-1", signToken(t, cfg, "u2", false), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/orders/missing", signToken(t, cfg, "u1", false), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderStatusHandler(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		statusFn: func(_ context.Context, orderID string, caller usecase.Caller) (domain.Status, error) {
			if orderID != "o-1" {
				return "", domain.ErrNotFound
			}
			if caller.UserID != "u1" && !caller.IsAdmin {
				return "", domain.ErrForbidden
			}
			return domain.StatusShipped, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodGet, "/api/orders/o-1/status", signToken(t, cfg, "u1", false), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "o-1", resp["orderId"])
	assert.Equal(t, "shipped", resp["status"])

	w = doJSON(r, http.MethodGet, "/api/orders/o-1/status", signToken(t, cfg, "u2", false), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/orders/missing/status", signToken(t, cfg, "u1", false), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMyOrdersHandler_EmptyList(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		listMineFn: func(context.Context, string) ([]domain.Order, error) {
			return nil, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodGet, "/api/orders/myorders", signToken(t, cfg, "u1", false), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count  int            `json:"count"`
		Orders []domain.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Orders)
}

func TestListAllOrdersHandler_AdminGate(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		listAllFn: func(context.Context, usecase.Caller) ([]domain.Order, error) {
			return []domain.Order{{ID: "o-1"}}, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	w := doJSON(r, http.MethodGet, "/api/orders", signToken(t, cfg, "u1", false), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/orders", signToken(t, cfg, "admin", true), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetOrderStatusHandler(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		setStatusFn: func(_ context.Context, orderID, newStatus string, _ usecase.Caller) (*domain.Order, error) {
			if newStatus != "shipped" {
				return nil, domain.ErrIllegalTransition
			}
			return &domain.Order{ID: orderID, Status: domain.StatusShipped}, nil
		},
	}
	r := orderTestRouter(svc, cfg)
	admin := signToken(t, cfg, "admin", true)

	w := doJSON(r, http.MethodPut, "/api/orders/o-1/status", admin, `{"status": "shipped"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"shipped"`)

	w = doJSON(r, http.MethodPut, "/api/orders/o-1/status", admin, `{"status": "pending"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "illegal_transition")

	w = doJSON(r, http.MethodPut, "/api/orders/o-1/status", admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// non-admin blocked by the middleware
	w = doJSON(r, http.MethodPut, "/api/orders/o-1/status", signToken(t, cfg, "u1", false), `{"status": "shipped"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckoutHandler(t *testing.T) {
	cfg := testConfig()
	svc := &stubOrderService{
		checkoutFn: func(_ context.Context, userID string, shipping domain.ShippingAddress) (usecase.PlaceOrderOutput, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "Jo", shipping.Name)
			return usecase.PlaceOrderOutput{OrderID: "o-2", Total: "25.00", Status: domain.StatusPending}, nil
		},
	}
	r := orderTestRouter(svc, cfg)

	body := `{"shipping": {"name": "Jo", "street": "1 Main St", "city": "Town", "postalCode": "12345", "country": "US"}}`
	w := doJSON(r, http.MethodPost, "/api/orders/checkout", signToken(t, cfg, "u1", false), body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"o-2"`)
}
