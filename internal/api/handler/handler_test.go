package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/api"
	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/handler"
	"github.com/RoyceAzure/lab/shopcore/internal/api/router"
	"github.com/RoyceAzure/lab/shopcore/internal/constants"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/limiter"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db/dbtest"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/RoyceAzure/lab/shopcore/internal/metrics"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type HandlerTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *db.UnifiedDBImpl
	maker   *token.JWTMaker
	metrics *metrics.ServerMetrics
	handler http.Handler
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.handler = suite.newRouter(&limiter.LimiterConfig{Capacity: 1000, RatePS: 1000})

	require.NoError(suite.T(), suite.store.CreateProduct(suite.ctx, &model.Product{
		ID:       3,
		Name:     "Mug",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    100,
		ImageURL: "mug.png",
	}))
}

func (suite *HandlerTestSuite) newRouter(limitCfg *limiter.LimiterConfig) http.Handler {
	t := suite.T()
	conn := dbtest.Open(t)
	suite.store = db.NewUnifiedDB(conn)
	require.NoError(t, suite.store.InitMigrate())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)
	suite.maker = maker

	rateLimiter := limiter.NewTokenBucket(limitCfg)
	t.Cleanup(rateLimiter.Stop)

	logger := zerolog.Nop()
	suite.metrics = metrics.NewServerMetrics(nil)
	cartService := service.NewCartService(suite.store, service.NewCatalogReader(suite.store), logger)
	checkoutService := service.NewCheckoutService(suite.store, logger,
		service.WithIdempotencyStore(redis_repo.NewIdempotencyRepo(client, time.Minute, 10*time.Second)))
	orderService := service.NewOrderService(suite.store, "", logger)

	server := api.NewServer(
		handler.NewCartHandler(cartService),
		handler.NewOrderHandler(checkoutService, orderService, suite.metrics, logger),
	)
	return router.SetupRouter(server, maker, rateLimiter, suite.metrics, logger)
}

func (suite *HandlerTestSuite) bearer(buyerID int64, role model.Role) string {
	tok, _, err := suite.maker.CreateToken(buyerID, "buyer"+strconv.FormatInt(buyerID, 10)+"@example.com", string(role), "Buyer", time.Hour)
	require.NoError(suite.T(), err)
	return tok
}

func (suite *HandlerTestSuite) do(method, path, tok string, body interface{}, headers map[string]string) (int, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"totalAmount": 20,
		"items": []map[string]interface{}{
			{"productId": 3, "name": "Mug", "image": "mug.png", "quantity": 2, "price": 10},
		},
		"shippingAddress": shippingBody(),
	}
}

func shippingBody() map[string]string {
	return map[string]string{
		"fullName": "Ann Buyer",
		"address":  "1 Main St",
		"city":     "Springfield",
		"state":    "IL",
		"zip":      "62701",
		"country":  "US",
		"phone":    "555-0100",
	}
}

func (suite *HandlerTestSuite) TestHealthIsPublic() {
	code, env := suite.do(http.MethodGet, "/health", "", nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	require.True(suite.T(), env.Success)
}

func (suite *HandlerTestSuite) TestRequiresToken() {
	code, env := suite.do(http.MethodGet, "/api/v1/cart", "", nil, nil)
	require.Equal(suite.T(), http.StatusUnauthorized, code)
	require.False(suite.T(), env.Success)
	require.NotEmpty(suite.T(), env.Message)

	code, _ = suite.do(http.MethodGet, "/api/v1/cart", "not-a-token", nil, nil)
	require.Equal(suite.T(), http.StatusUnauthorized, code)
}

func (suite *HandlerTestSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(constants.RequestIDHeaderKey, "req-1")
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)
	require.Equal(suite.T(), "req-1", rec.Header().Get(constants.RequestIDHeaderKey))

	rec = httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(suite.T(), rec.Header().Get(constants.RequestIDHeaderKey))
}

func (suite *HandlerTestSuite) TestCart_AddMergeListCount() {
	tok := suite.bearer(7, model.RoleBuyer)

	code, env := suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 3, Quantity: 2}, nil)
	require.Equal(suite.T(), http.StatusOK, code, env.Message)
	first := decodeData[dto.CartLineResponse](suite.T(), env)
	require.Equal(suite.T(), int64(7), first.BuyerID)
	require.Equal(suite.T(), "Mug", first.Name)

	code, env = suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 3, Quantity: 1}, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	merged := decodeData[dto.CartLineResponse](suite.T(), env)
	require.Equal(suite.T(), first.ID, merged.ID)
	require.Equal(suite.T(), 3, merged.Quantity)
	require.True(suite.T(), merged.Total.Equal(decimal.NewFromInt(30)))

	code, env = suite.do(http.MethodGet, "/api/v1/cart", tok, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	lines := decodeData[[]dto.CartLineResponse](suite.T(), env)
	require.Len(suite.T(), lines, 1)

	code, env = suite.do(http.MethodGet, "/api/v1/cart/count", tok, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	require.Equal(suite.T(), int64(1), decodeData[dto.CountResponse](suite.T(), env).Count)
}

func (suite *HandlerTestSuite) TestCart_AddErrors() {
	tok := suite.bearer(7, model.RoleBuyer)

	code, env := suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 999, Quantity: 1}, nil)
	require.Equal(suite.T(), http.StatusNotFound, code)
	require.False(suite.T(), env.Success)

	code, _ = suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 3, Quantity: 0}, nil)
	require.Equal(suite.T(), http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlerTestSuite) TestCart_Ownership() {
	owner := suite.bearer(7, model.RoleBuyer)
	other := suite.bearer(8, model.RoleBuyer)

	_, env := suite.do(http.MethodPost, "/api/v1/cart", owner, dto.AddCartRequest{ProductID: 3, Quantity: 1}, nil)
	line := decodeData[dto.CartLineResponse](suite.T(), env)
	path := "/api/v1/cart/" + strconv.FormatInt(line.ID, 10)

	code, _ := suite.do(http.MethodPut, path, other, dto.UpdateCartRequest{Quantity: 5}, nil)
	require.Equal(suite.T(), http.StatusForbidden, code)
	code, _ = suite.do(http.MethodDelete, path, other, nil, nil)
	require.Equal(suite.T(), http.StatusForbidden, code)

	code, env = suite.do(http.MethodPut, path, owner, dto.UpdateCartRequest{Quantity: 5}, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	updated := decodeData[dto.CartLineResponse](suite.T(), env)
	require.Equal(suite.T(), 5, updated.Quantity)
	require.True(suite.T(), updated.Total.Equal(decimal.NewFromInt(50)))

	code, _ = suite.do(http.MethodDelete, path, owner, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	// 再刪一次仍成功
	code, _ = suite.do(http.MethodDelete, path, owner, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)

	code, _ = suite.do(http.MethodPut, path, owner, dto.UpdateCartRequest{Quantity: 1}, nil)
	require.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodPut, "/api/v1/cart/abc", owner, dto.UpdateCartRequest{Quantity: 1}, nil)
	require.Equal(suite.T(), http.StatusBadRequest, code)
}

func (suite *HandlerTestSuite) TestCart_Clear() {
	tok := suite.bearer(7, model.RoleBuyer)
	suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 3, Quantity: 1}, nil)

	code, _ := suite.do(http.MethodDelete, "/api/v1/cart", tok, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)

	_, env := suite.do(http.MethodGet, "/api/v1/cart", tok, nil, nil)
	require.Empty(suite.T(), decodeData[[]dto.CartLineResponse](suite.T(), env))
}

func (suite *HandlerTestSuite) TestCheckout_Items() {
	tok := suite.bearer(7, model.RoleBuyer)

	code, env := suite.do(http.MethodPost, "/api/v1/orders/checkout", tok, checkoutBody(), nil)
	require.Equal(suite.T(), http.StatusCreated, code, env.Message)
	order := decodeData[dto.OrderResponse](suite.T(), env)
	require.Equal(suite.T(), "ORD-"+strconv.FormatInt(order.ID, 10), order.OrderNumber)
	require.Equal(suite.T(), int64(7), order.BuyerID)
	require.Equal(suite.T(), model.OrderStatusPlaced, order.Status)
	require.Equal(suite.T(), "62701", order.ShippingAddress.Zip)

	code, env = suite.do(http.MethodGet, "/api/v1/orders", tok, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	history := decodeData[[]model.OrderHistory](suite.T(), env)
	require.Len(suite.T(), history, 1)
	require.Equal(suite.T(), order.ID, history[0].ID)
}

func (suite *HandlerTestSuite) TestCheckout_ValidationMessage() {
	tok := suite.bearer(7, model.RoleBuyer)
	body := checkoutBody()
	body["items"] = []interface{}{}

	code, env := suite.do(http.MethodPost, "/api/v1/orders/checkout", tok, body, nil)
	require.Equal(suite.T(), http.StatusBadRequest, code)
	require.False(suite.T(), env.Success)
	require.NotEmpty(suite.T(), env.Message)
}

func (suite *HandlerTestSuite) TestCheckout_IdempotencyKeyReplays() {
	tok := suite.bearer(7, model.RoleBuyer)
	headers := map[string]string{constants.IdempotencyHeaderKey: "key-1"}

	code, env := suite.do(http.MethodPost, "/api/v1/orders/checkout", tok, checkoutBody(), headers)
	require.Equal(suite.T(), http.StatusCreated, code)
	first := decodeData[dto.OrderResponse](suite.T(), env)

	code, env = suite.do(http.MethodPost, "/api/v1/orders/checkout", tok, checkoutBody(), headers)
	require.Equal(suite.T(), http.StatusCreated, code)
	second := decodeData[dto.OrderResponse](suite.T(), env)
	require.Equal(suite.T(), first.ID, second.ID)

	count, err := suite.store.CountOrdersByBuyer(suite.ctx, 7)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), count)
}

func (suite *HandlerTestSuite) TestCheckout_FromCart() {
	tok := suite.bearer(7, model.RoleBuyer)
	suite.do(http.MethodPost, "/api/v1/cart", tok, dto.AddCartRequest{ProductID: 3, Quantity: 2}, nil)

	code, env := suite.do(http.MethodPost, "/api/v1/orders/checkout/cart", tok,
		map[string]interface{}{"shippingAddress": shippingBody()}, nil)
	require.Equal(suite.T(), http.StatusCreated, code, env.Message)
	order := decodeData[dto.OrderResponse](suite.T(), env)
	require.True(suite.T(), order.TotalAmount.Equal(decimal.NewFromInt(20)))

	_, env = suite.do(http.MethodGet, "/api/v1/cart/count", tok, nil, nil)
	require.Equal(suite.T(), int64(0), decodeData[dto.CountResponse](suite.T(), env).Count)

	// 空購物車
	code, _ = suite.do(http.MethodPost, "/api/v1/orders/checkout/cart", tok,
		map[string]interface{}{"shippingAddress": shippingBody()}, nil)
	require.Equal(suite.T(), http.StatusBadRequest, code)
}

func (suite *HandlerTestSuite) TestOrder_DetailsAccess() {
	owner := suite.bearer(7, model.RoleBuyer)
	_, env := suite.do(http.MethodPost, "/api/v1/orders/checkout", owner, checkoutBody(), nil)
	order := decodeData[dto.OrderResponse](suite.T(), env)
	path := "/api/v1/orders/" + strconv.FormatInt(order.ID, 10)

	code, env := suite.do(http.MethodGet, path, owner, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
	details := decodeData[model.OrderDetails](suite.T(), env)
	require.Len(suite.T(), details.Items, 1)
	require.Equal(suite.T(), "Mug", details.Items[0].ProductName)

	code, _ = suite.do(http.MethodGet, path, suite.bearer(8, model.RoleBuyer), nil, nil)
	require.Equal(suite.T(), http.StatusForbidden, code)

	code, _ = suite.do(http.MethodGet, path, suite.bearer(99, model.RoleSeller), nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)

	code, env = suite.do(http.MethodGet, "/api/v1/orders/12345", owner, nil, nil)
	require.Equal(suite.T(), http.StatusNotFound, code)
	require.False(suite.T(), env.Success)
}

func (suite *HandlerTestSuite) TestOrder_StatusAndCancel() {
	owner := suite.bearer(7, model.RoleBuyer)
	seller := suite.bearer(99, model.RoleSeller)
	_, env := suite.do(http.MethodPost, "/api/v1/orders/checkout", owner, checkoutBody(), nil)
	order := decodeData[dto.OrderResponse](suite.T(), env)
	path := "/api/v1/orders/" + strconv.FormatInt(order.ID, 10)

	code, _ := suite.do(http.MethodPut, path+"/status", owner, dto.UpdateStatusRequest{Status: "SHIPPED"}, nil)
	require.Equal(suite.T(), http.StatusForbidden, code)

	code, _ = suite.do(http.MethodPut, path+"/status", seller, dto.UpdateStatusRequest{Status: " "}, nil)
	require.Equal(suite.T(), http.StatusBadRequest, code)

	code, _ = suite.do(http.MethodPut, path+"/status", seller, dto.UpdateStatusRequest{Status: "SHIPPED"}, nil)
	require.Equal(suite.T(), http.StatusOK, code)

	code, _ = suite.do(http.MethodPut, "/api/v1/orders/12345/status", seller, dto.UpdateStatusRequest{Status: "SHIPPED"}, nil)
	require.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodDelete, path, suite.bearer(8, model.RoleBuyer), nil, nil)
	require.Equal(suite.T(), http.StatusForbidden, code)

	code, _ = suite.do(http.MethodDelete, path, owner, nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)

	_, env = suite.do(http.MethodGet, path, owner, nil, nil)
	require.Equal(suite.T(), model.OrderStatusCancelled, decodeData[model.OrderDetails](suite.T(), env).Status)
}

func (suite *HandlerTestSuite) TestMetricsEndpoint() {
	tok := suite.bearer(7, model.RoleBuyer)
	suite.do(http.MethodPost, "/api/v1/orders/checkout", tok, checkoutBody(), nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(suite.T(), body, "shopcore_http_requests_total")
	require.Contains(suite.T(), body, `shopcore_checkout_total{result="success",source="items"} 1`)
}

func (suite *HandlerTestSuite) TestRateLimited() {
	suite.handler = suite.newRouter(&limiter.LimiterConfig{Capacity: 2, RatePS: 0.001})
	tok := suite.bearer(7, model.RoleBuyer)

	for i := 0; i < 2; i++ {
		code, _ := suite.do(http.MethodGet, "/api/v1/cart", tok, nil, nil)
		require.Equal(suite.T(), http.StatusOK, code)
	}
	code, env := suite.do(http.MethodGet, "/api/v1/cart", tok, nil, nil)
	require.Equal(suite.T(), http.StatusTooManyRequests, code)
	require.False(suite.T(), env.Success)

	// 其他買家不受影響
	code, _ = suite.do(http.MethodGet, "/api/v1/cart", suite.bearer(8, model.RoleBuyer), nil, nil)
	require.Equal(suite.T(), http.StatusOK, code)
}
