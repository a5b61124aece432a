package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/constants"
	"github.com/RoyceAzure/lab/shopcore/internal/metrics"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/rs/zerolog"
)

const (
	checkoutSourceItems = "items"
	checkoutSourceCart  = "cart"
)

type OrderHandler struct {
	checkoutService service.ICheckoutService
	orderService    service.IOrderService
	metrics         *metrics.ServerMetrics
	logger          zerolog.Logger
}

func NewOrderHandler(checkoutService service.ICheckoutService, orderService service.IOrderService, m *metrics.ServerMetrics, logger zerolog.Logger) *OrderHandler {
	if util.IsNil(checkoutService) {
		panic("checkoutService cannot be nil")
	}
	if util.IsNil(orderService) {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		metrics:         m,
		logger:          logger,
	}
}

// Checkout POST /orders/checkout, 明細由呼叫端提供
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	idemKey := r.Header.Get(constants.IdempotencyHeaderKey)
	order, err := h.checkoutService.CheckoutOnce(r.Context(), idemKey, req.ToService(payload.BuyerID))
	h.observe(checkoutSourceItems, err)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.CreatedJSON(w, dto.NewOrderResponse(order), "Order placed successfully")
}

// CheckoutFromCart POST /orders/checkout/cart
func (h *OrderHandler) CheckoutFromCart(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	var req dto.CheckoutFromCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	idemKey := r.Header.Get(constants.IdempotencyHeaderKey)
	order, err := h.checkoutService.CheckoutFromCartOnce(r.Context(), idemKey, payload.BuyerID, req.ShippingAddress.ToModel())
	h.observe(checkoutSourceCart, err)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.CreatedJSON(w, dto.NewOrderResponse(order), "Order placed successfully")
}

// History GET /orders
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	history, err := h.orderService.HistoryByBuyer(r.Context(), payload.BuyerID)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, history, "Order history retrieved successfully")
}

// Details GET /orders/{orderId}, 本人或賣家可讀
func (h *OrderHandler) Details(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	details, found, err := h.orderService.DetailsByOrderID(r.Context(), orderID)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	if !found {
		rjapi.ErrorJSON(w, rjerr.NotFoundCode, "order not found")
		return
	}
	if details.BuyerID != payload.BuyerID && !isSeller(payload) {
		rjapi.ErrorJSON(w, rjerr.UnauthorizedCode, "order belongs to another buyer")
		return
	}
	rjapi.SuccessJSON(w, details, "Order details retrieved successfully")
}

// UpdateStatus PUT /orders/{orderId}/status, 限賣家
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	if !isSeller(payload) {
		rjapi.ErrorJSON(w, rjerr.UnauthorizedCode, "only sellers can update order status")
		return
	}
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, nil, "Order status updated successfully")
}

// Cancel DELETE /orders/{orderId}, 限本人
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	details, found, err := h.orderService.DetailsByOrderID(r.Context(), orderID)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	if !found {
		rjapi.ErrorJSON(w, rjerr.NotFoundCode, "order not found")
		return
	}
	if details.BuyerID != payload.BuyerID {
		rjapi.ErrorJSON(w, rjerr.UnauthorizedCode, "order belongs to another buyer")
		return
	}

	if err := h.orderService.Cancel(r.Context(), orderID); err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, nil, "Order cancelled successfully")
}

func (h *OrderHandler) observe(source string, err error) {
	if h.metrics != nil {
		h.metrics.ObserveCheckout(source, err)
	}
	if err != nil && rjerr.As(err).Code >= rjerr.InternalErrorCode {
		h.logger.Error().Err(err).Str("source", source).Msg("checkout failed")
	}
}
