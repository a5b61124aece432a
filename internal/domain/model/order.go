package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// ShippingAddress 結帳當下的收件資訊快照, 不回頭參照買家資料
type ShippingAddress struct {
	FullName string `gorm:"type:varchar(100)" json:"fullName"`
	Address  string `gorm:"type:varchar(255)" json:"address"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	State    string `gorm:"type:varchar(100)" json:"state"`
	ZipCode  string `gorm:"type:varchar(20)" json:"zip"`
	Country  string `gorm:"type:varchar(100)" json:"country"`
	Phone    string `gorm:"type:varchar(50)" json:"phone"`
}

// Order 結帳時建立一次, 之後只有 Status 可變
// BuyerID 只存值, 不建立物件關聯
type Order struct {
	ID          int64           `gorm:"column:order_id;primaryKey;autoIncrement" json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;not null;type:varchar(32)" json:"orderNumber"`
	BuyerID     int64           `gorm:"not null;index" json:"buyerId"`
	TotalAmount decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"totalAmount"`
	Status      string          `gorm:"not null;type:varchar(32)" json:"status"`
	OrderDate   time.Time       `gorm:"not null;index" json:"orderDate"`
	Shipping    ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	UpdatedAt   time.Time       `json:"-"`
}

// OrderItem 訂單明細快照
// 建立後不再由商品目錄重新推導, 商品改價改名都不影響
type OrderItem struct {
	ID          int64           `gorm:"column:order_item_id;primaryKey" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"orderId"`
	ProductID   int64           `gorm:"not null" json:"productId"`
	ProductName string          `gorm:"type:varchar(255)" json:"productName"`
	ImageURL    string          `gorm:"type:varchar(1024)" json:"imageUrl"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	CreatedAt   time.Time       `json:"-"`
}

// Amount 單項小計
func (i OrderItem) Amount() decimal.Decimal {
	return LineTotal(i.Price, i.Quantity)
}
