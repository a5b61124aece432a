package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if util.IsNil(cartService) {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

// Add POST /cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	var req dto.AddCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	line, err := h.cartService.AddItem(r.Context(), payload.BuyerID, req.ProductID, req.Quantity)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, dto.NewCartLineResponse(line), "Item added to cart successfully")
}

// List GET /cart
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	lines, err := h.cartService.ListItems(r.Context(), payload.BuyerID)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, dto.NewCartLineResponses(lines), "Cart items retrieved successfully")
}

// Count GET /cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	count, err := h.cartService.CountItems(r.Context(), payload.BuyerID)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, dto.CountResponse{Count: count}, "Cart count retrieved successfully")
}

// Update PUT /cart/{lineId}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineId")
	if !ok {
		return
	}
	var req dto.UpdateCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.ownsLine(w, r, payload.BuyerID, lineID, false) {
		return
	}
	line, err := h.cartService.UpdateQuantity(r.Context(), lineID, req.Quantity)
	if err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, dto.NewCartLineResponse(line), "Cart item updated successfully")
}

// Remove DELETE /cart/{lineId}, 不存在視為成功
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineId")
	if !ok {
		return
	}
	if !h.ownsLine(w, r, payload.BuyerID, lineID, true) {
		return
	}
	if err := h.cartService.RemoveItem(r.Context(), lineID); err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, nil, "Item removed from cart successfully")
}

// Clear DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	payload, ok := requirePayload(w, r)
	if !ok {
		return
	}
	if err := h.cartService.ClearCart(r.Context(), payload.BuyerID); err != nil {
		rjapi.ErrorFrom(w, err)
		return
	}
	rjapi.SuccessJSON(w, nil, "Cart cleared successfully")
}

// ownsLine 明細屬於其他買家回 403
// allowAbsent 為 true 時, 明細不存在直接回成功
func (h *CartHandler) ownsLine(w http.ResponseWriter, r *http.Request, buyerID, lineID int64, allowAbsent bool) bool {
	line, err := h.cartService.GetLine(r.Context(), lineID)
	if err != nil {
		if allowAbsent && rjerr.IsCode(err, rjerr.NotFoundCode) {
			rjapi.SuccessJSON(w, nil, "Item removed from cart successfully")
			return false
		}
		rjapi.ErrorFrom(w, err)
		return false
	}
	if line.BuyerID != buyerID {
		rjapi.ErrorJSON(w, rjerr.UnauthorizedCode, "cart item belongs to another buyer")
		return false
	}
	return true
}
