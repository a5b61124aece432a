package service

import (
	"context"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/rs/zerolog"
)

// 合併衝突時最多嘗試次數, 第二次仍衝突才回 ErrCartConflict
const cartMergeAttempts = 2

type ICartService interface {
	AddItem(ctx context.Context, buyerID, productID int64, quantity int) (*model.CartLine, error)
	ListItems(ctx context.Context, buyerID int64) ([]model.CartLine, error)
	CountItems(ctx context.Context, buyerID int64) (int64, error)
	GetLine(ctx context.Context, lineID int64) (*model.CartLine, error)
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) (*model.CartLine, error)
	RemoveItem(ctx context.Context, lineID int64) error
	ClearCart(ctx context.Context, buyerID int64) error
}

type CartService struct {
	cartRepo db.ICartRepository
	catalog  CatalogReader
	logger   zerolog.Logger
}

func NewCartService(cartRepo db.ICartRepository, catalog CatalogReader, logger zerolog.Logger) *CartService {
	if util.IsNil(cartRepo) || util.IsNil(catalog) {
		panic("NewCartService: cartRepo and catalog cannot be nil")
	}
	return &CartService{cartRepo: cartRepo, catalog: catalog, logger: logger}
}

// AddItem 加入購物車
// 單價由商品目錄取得並擷取在明細上, 已有同商品明細則數量累加
func (c *CartService) AddItem(ctx context.Context, buyerID, productID int64, quantity int) (*model.CartLine, error) {
	if buyerID <= 0 {
		return nil, ErrBuyerRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := &model.CartLine{
		BuyerID:     buyerID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ImageURL:    productImage(product),
		Price:       product.Price,
		Quantity:    quantity,
	}

	for attempt := 1; attempt <= cartMergeAttempts; attempt++ {
		merged, err := c.cartRepo.UpsertAddCartLine(ctx, line)
		if err == nil {
			return merged, nil
		}
		if !db.IsDuplicateKey(err) {
			c.logger.Error().Err(err).
				Int64("buyer_id", buyerID).
				Int64("product_id", productID).
				Msg("add cart item failed")
			return nil, rjerr.Storage("add cart item", err)
		}
		c.logger.Warn().Err(err).
			Int64("buyer_id", buyerID).
			Int64("product_id", productID).
			Int("attempt", attempt).
			Msg("cart merge conflict")
	}
	return nil, ErrCartConflict
}

// ListItems 空購物車回傳空 slice
func (c *CartService) ListItems(ctx context.Context, buyerID int64) ([]model.CartLine, error) {
	lines, err := c.cartRepo.ListCartLines(ctx, buyerID)
	if err != nil {
		c.logger.Error().Err(err).Int64("buyer_id", buyerID).Msg("list cart failed")
		return nil, rjerr.Storage("list cart", err)
	}
	return lines, nil
}

func (c *CartService) CountItems(ctx context.Context, buyerID int64) (int64, error) {
	count, err := c.cartRepo.CountCartLines(ctx, buyerID)
	if err != nil {
		c.logger.Error().Err(err).Int64("buyer_id", buyerID).Msg("count cart failed")
		return 0, rjerr.Storage("count cart", err)
	}
	return count, nil
}

func (c *CartService) GetLine(ctx context.Context, lineID int64) (*model.CartLine, error) {
	line, err := c.cartRepo.GetCartLineByID(ctx, lineID)
	if db.IsNotFound(err) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		c.logger.Error().Err(err).Int64("cart_id", lineID).Msg("get cart item failed")
		return nil, rjerr.Storage("get cart item", err)
	}
	return line, nil
}

// UpdateQuantity 取代數量, 小計由已擷取單價重算
// 商品改價不會改變購物車中的單價
func (c *CartService) UpdateQuantity(ctx context.Context, lineID int64, quantity int) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	line, err := c.cartRepo.UpdateCartLineQuantity(ctx, lineID, quantity)
	if db.IsNotFound(err) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		c.logger.Error().Err(err).Int64("cart_id", lineID).Msg("update cart item failed")
		return nil, rjerr.Storage("update cart item", err)
	}
	return line, nil
}

// RemoveItem 冪等, 不存在也回成功
func (c *CartService) RemoveItem(ctx context.Context, lineID int64) error {
	if err := c.cartRepo.DeleteCartLine(ctx, lineID); err != nil {
		c.logger.Error().Err(err).Int64("cart_id", lineID).Msg("remove cart item failed")
		return rjerr.Storage("remove cart item", err)
	}
	return nil
}

func (c *CartService) ClearCart(ctx context.Context, buyerID int64) error {
	if _, err := c.cartRepo.ClearCart(ctx, buyerID); err != nil {
		c.logger.Error().Err(err).Int64("buyer_id", buyerID).Msg("clear cart failed")
		return rjerr.Storage("clear cart", err)
	}
	return nil
}

var _ ICartService = (*CartService)(nil)
