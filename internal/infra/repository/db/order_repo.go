package db

import (
	"context"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrderWithItems 建立訂單與明細
// 先由序列取得訂單ID, 訂單號碼與訂單同一次 INSERT 寫入, 不存在未編號的中間狀態
// 明細與訂單在同一交易, 外層已有交易時以 savepoint 併入
func (s *OrderRepo) CreateOrderWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextOrderID(tx)
		if err != nil {
			return err
		}
		order.ID = id
		order.OrderNumber = util.OrderNumber(id)

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = id
		}
		return tx.Create(&items).Error
	})
}

// nextOrderID 預先配置訂單ID
// postgres 直接取 serial 序列, 其他 dialect 在寫入交易內取 MAX+1
func nextOrderID(tx *gorm.DB) (int64, error) {
	var id int64
	var err error
	switch tx.Dialector.Name() {
	case "postgres":
		err = tx.Raw("SELECT nextval(pg_get_serial_sequence('orders', 'order_id'))").Scan(&id).Error
	default:
		err = tx.Raw("SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders").Scan(&id).Error
	}
	return id, err
}

func (s *OrderRepo) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, "order_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0)
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("order_item_id").
		Find(&items).Error
	return items, err
}

// ListOrderHistoryByBuyer 訂單摘要, 新到舊
func (s *OrderRepo) ListOrderHistoryByBuyer(ctx context.Context, buyerID int64) ([]model.OrderHistory, error) {
	history := make([]model.OrderHistory, 0)
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Select("order_id AS id, buyer_id, total_amount, status, order_date, order_number").
		Where("buyer_id = ?", buyerID).
		Order("order_date DESC").
		Order("order_id DESC").
		Scan(&history).Error
	return history, err
}

// UpdateOrderStatus 訂單唯一允許的異動
// 找不到回傳 gorm.ErrRecordNotFound
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *OrderRepo) CountOrdersByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Where("buyer_id = ?", buyerID).Count(&count).Error
	return count, err
}
