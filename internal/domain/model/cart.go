package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine 單一買家對單一商品的待結帳數量
// (buyer_id, product_id) 唯一, 價格於加入時擷取, 不會隨目錄變動
// TotalPrice 恆等於 Price * Quantity
type CartLine struct {
	ID          int64           `gorm:"column:cart_id;primaryKey" json:"id"`
	BuyerID     int64           `gorm:"not null;uniqueIndex:idx_cart_buyer_product,priority:1" json:"buyerId"`
	ProductID   int64           `gorm:"not null;uniqueIndex:idx_cart_buyer_product,priority:2" json:"productId"`
	ProductName string          `gorm:"not null;type:varchar(255)" json:"name"`
	ImageURL    string          `gorm:"type:varchar(1024)" json:"image"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (CartLine) TableName() string {
	return "cart"
}

// LineTotal 單價 * 數量
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
