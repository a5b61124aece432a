package db

import (
	"context"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 購物車明細, 每個 (buyer_id, product_id) 只會有一筆
type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

// UpsertAddCartLine 加入購物車
// 單一 INSERT ... ON CONFLICT, 已存在則數量累加並以擷取單價重算小計
// 不存在時以傳入的名稱/單價/圖片建立新明細
func (s *CartRepo) UpsertAddCartLine(ctx context.Context, line *model.CartLine) (*model.CartLine, error) {
	line.ID = 0
	line.TotalPrice = model.LineTotal(line.Price, line.Quantity)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "buyer_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":    gorm.Expr("cart.quantity + excluded.quantity"),
			"total_price": gorm.Expr("cart.price * (cart.quantity + excluded.quantity)"),
			"updated_at":  gorm.Expr("excluded.updated_at"),
		}),
	}).Create(line).Error
	if err != nil {
		return nil, err
	}

	return s.GetCartLineByBuyerAndProduct(ctx, line.BuyerID, line.ProductID)
}

func (s *CartRepo) GetCartLineByID(ctx context.Context, id int64) (*model.CartLine, error) {
	var line model.CartLine
	err := s.db.WithContext(ctx).First(&line, "cart_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *CartRepo) GetCartLineByBuyerAndProduct(ctx context.Context, buyerID, productID int64) (*model.CartLine, error) {
	var line model.CartLine
	err := s.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *CartRepo) ListCartLines(ctx context.Context, buyerID int64) ([]model.CartLine, error) {
	lines := make([]model.CartLine, 0)
	err := s.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("cart_id").
		Find(&lines).Error
	return lines, err
}

// ListCartLinesForCheckout 結帳時鎖定明細, 避免同時加購的數量被一併刪除
// sqlite 無 row lock, 由單一寫入者保證
func (s *CartRepo) ListCartLinesForCheckout(ctx context.Context, buyerID int64) ([]model.CartLine, error) {
	lines := make([]model.CartLine, 0)
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("buyer_id = ?", buyerID).
		Order("cart_id").
		Find(&lines).Error
	return lines, err
}

func (s *CartRepo) CountCartLines(ctx context.Context, buyerID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CartLine{}).Where("buyer_id = ?", buyerID).Count(&count).Error
	return count, err
}

// UpdateCartLineQuantity 直接取代數量, 小計由已擷取的單價重算, 不回查商品目錄
// 找不到回傳 gorm.ErrRecordNotFound
func (s *CartRepo) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) (*model.CartLine, error) {
	res := s.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("cart_id = ?", id).
		Updates(map[string]interface{}{
			"quantity":    quantity,
			"total_price": gorm.Expr("price * ?", quantity),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.GetCartLineByID(ctx, id)
}

// DeleteCartLine 不存在不視為錯誤
func (s *CartRepo) DeleteCartLine(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Where("cart_id = ?", id).Delete(&model.CartLine{}).Error
}

// DeleteCartLines 只刪除指定明細, 結帳消耗購物車時使用
func (s *CartRepo) DeleteCartLines(ctx context.Context, buyerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("buyer_id = ? AND cart_id IN ?", buyerID, ids).
		Delete(&model.CartLine{}).Error
}

// ClearCart 一次刪除買家所有明細, 回傳刪除筆數
func (s *CartRepo) ClearCart(ctx context.Context, buyerID int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}
