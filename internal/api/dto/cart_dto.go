package dto

import (
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/shopspring/decimal"
)

type AddCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse 購物車明細
type CartLineResponse struct {
	ID        int64           `json:"id"`
	BuyerID   int64           `json:"buyerId"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func NewCartLineResponse(line *model.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        line.ID,
		BuyerID:   line.BuyerID,
		ProductID: line.ProductID,
		Name:      line.ProductName,
		Image:     line.ImageURL,
		Price:     line.Price,
		Quantity:  line.Quantity,
		Total:     line.TotalPrice,
	}
}

func NewCartLineResponses(lines []model.CartLine) []CartLineResponse {
	res := make([]CartLineResponse, 0, len(lines))
	for i := range lines {
		res = append(res, NewCartLineResponse(&lines[i]))
	}
	return res
}
