package model

import "github.com/shopspring/decimal"

// Product 商品目錄投影, 由目錄服務維護
// 購物車加入時以此取得當下單價
type Product struct {
	ID                int64           `gorm:"column:product_id;primaryKey" json:"id"`
	Name              string          `gorm:"not null;type:varchar(255)" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock             int             `gorm:"not null;default:0" json:"stock"`
	LowStockThreshold int             `gorm:"not null;default:0" json:"lowStockThreshold"`
	Category          string          `gorm:"type:varchar(100)" json:"category"`
	ImageURL          string          `gorm:"type:varchar(1024)" json:"imageUrl"`
	SellerID          int64           `gorm:"index" json:"sellerId"`
	BaseModel
}
