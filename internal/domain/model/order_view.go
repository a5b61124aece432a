package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 讀取端投影, 只使用訂單上已擷取的快照欄位

type OrderHistory struct {
	ID          int64           `json:"id"`
	BuyerID     int64           `json:"buyerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	OrderDate   time.Time       `json:"orderDate"`
	OrderNumber string          `json:"orderNumber"`
}

type OrderItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderDetails struct {
	OrderHistory
	Shipping ShippingAddress `json:"shippingAddress"`
	Items    []OrderItemView `json:"items"`
}

func NewOrderDetails(order *Order, items []OrderItem) *OrderDetails {
	views := make([]OrderItemView, 0, len(items))
	for _, item := range items {
		views = append(views, OrderItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &OrderDetails{
		OrderHistory: OrderHistory{
			ID:          order.ID,
			BuyerID:     order.BuyerID,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			OrderDate:   order.OrderDate,
			OrderNumber: order.OrderNumber,
		},
		Shipping: order.Shipping,
		Items:    views,
	}
}
