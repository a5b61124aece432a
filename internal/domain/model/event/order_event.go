package event

import (
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderPlacedItem struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64             `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	BuyerID     int64             `json:"buyerId"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	OrderDate   time.Time         `json:"orderDate"`
	Items       []OrderPlacedItem `json:"items"`
}

func (e *OrderPlacedEvent) Type() EventType {
	return OrderPlacedEventName
}

func NewOrderPlacedEvent(order *model.Order, items []model.OrderItem) *OrderPlacedEvent {
	evtItems := make([]OrderPlacedItem, 0, len(items))
	for _, item := range items {
		evtItems = append(evtItems, OrderPlacedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &OrderPlacedEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.New().String(),
			AggregateID: strconv.FormatInt(order.ID, 10),
			CreatedAt:   time.Now().UTC(),
			EventType:   OrderPlacedEventName,
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		TotalAmount: order.TotalAmount,
		OrderDate:   order.OrderDate,
		Items:       evtItems,
	}
}

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID  int64  `json:"orderId"`
	ToStatus string `json:"toStatus"`
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedName
}

func NewOrderStatusChangedEvent(orderID int64, status string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.New().String(),
			AggregateID: strconv.FormatInt(orderID, 10),
			CreatedAt:   time.Now().UTC(),
			EventType:   OrderStatusChangedName,
		},
		OrderID:  orderID,
		ToStatus: status,
	}
}
