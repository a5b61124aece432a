package db

import (
	"context"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	GetDB() *gorm.DB
	InitMigrate() error
	// Transaction fn 內只能使用 tx, 任一錯誤整筆 rollback
	Transaction(ctx context.Context, fn func(tx UnifiedDB) error) error

	ICartRepository
	IOrderRepository
	IProductRepository
	IOutboxRepository
}

type ICartRepository interface {
	UpsertAddCartLine(ctx context.Context, line *model.CartLine) (*model.CartLine, error)
	GetCartLineByID(ctx context.Context, id int64) (*model.CartLine, error)
	GetCartLineByBuyerAndProduct(ctx context.Context, buyerID, productID int64) (*model.CartLine, error)
	ListCartLines(ctx context.Context, buyerID int64) ([]model.CartLine, error)
	ListCartLinesForCheckout(ctx context.Context, buyerID int64) ([]model.CartLine, error)
	CountCartLines(ctx context.Context, buyerID int64) (int64, error)
	UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) (*model.CartLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	DeleteCartLines(ctx context.Context, buyerID int64, ids []int64) error
	ClearCart(ctx context.Context, buyerID int64) (int64, error)
}

type IOrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	ListOrderHistoryByBuyer(ctx context.Context, buyerID int64) ([]model.OrderHistory, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	CountOrdersByBuyer(ctx context.Context, buyerID int64) (int64, error)
}

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
}

type IOutboxRepository interface {
	InsertOutbox(ctx context.Context, record *model.OutboxRecord) error
	FetchPendingOutbox(ctx context.Context, limit int) ([]model.OutboxRecord, error)
	MarkOutboxSent(ctx context.Context, ids []int64) error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*CartRepo
	*OrderRepo
	*ProductRepo
	*OutboxRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:          db,
		dbDao:       dbDao,
		CartRepo:    NewCartRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
		ProductRepo: NewProductRepo(dbDao),
		OutboxRepo:  NewOutboxRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// Transaction 開始事務, fn 拿到的是綁定同一個 tx 的 UnifiedDB
func (u *UnifiedDBImpl) Transaction(ctx context.Context, fn func(tx UnifiedDB) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

var (
	_ UnifiedDB          = (*UnifiedDBImpl)(nil)
	_ ICartRepository    = (*CartRepo)(nil)
	_ IOrderRepository   = (*OrderRepo)(nil)
	_ IProductRepository = (*ProductRepo)(nil)
	_ IOutboxRepository  = (*OutboxRepo)(nil)
)
