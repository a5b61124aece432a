package dto

import (
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/shopspring/decimal"
)

type CheckoutItemDTO struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type ShippingAddressDTO struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// CheckoutRequest 買家由 token 取得, 不接受 body 指定
type CheckoutRequest struct {
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	Items           []CheckoutItemDTO  `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
}

type CheckoutFromCartRequest struct {
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID              int64              `json:"id"`
	OrderNumber     string             `json:"orderNumber"`
	BuyerID         int64              `json:"buyerId"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	Status          string             `json:"status"`
	OrderDate       time.Time          `json:"orderDate"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
}

func (s ShippingAddressDTO) ToModel() model.ShippingAddress {
	return model.ShippingAddress{
		FullName: s.FullName,
		Address:  s.Address,
		City:     s.City,
		State:    s.State,
		ZipCode:  s.Zip,
		Country:  s.Country,
		Phone:    s.Phone,
	}
}

func newShippingAddressDTO(s model.ShippingAddress) ShippingAddressDTO {
	return ShippingAddressDTO{
		FullName: s.FullName,
		Address:  s.Address,
		City:     s.City,
		State:    s.State,
		Zip:      s.ZipCode,
		Country:  s.Country,
		Phone:    s.Phone,
	}
}

func (c CheckoutRequest) ToService(buyerID int64) service.CheckoutRequest {
	items := make([]service.CheckoutItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, service.CheckoutItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return service.CheckoutRequest{
		BuyerID:     buyerID,
		TotalAmount: c.TotalAmount,
		Items:       items,
		Shipping:    c.ShippingAddress.ToModel(),
	}
}

func NewOrderResponse(order *model.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		OrderDate:       order.OrderDate,
		ShippingAddress: newShippingAddressDTO(order.Shipping),
	}
}
