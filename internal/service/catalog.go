package service

import (
	"context"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
)

// DefaultProductImage 商品沒有圖片時擷取的預設圖
const DefaultProductImage = "https://images.unsplash.com/photo-1560472354-b33ff4b4c40?w=80&h=80&fit=crop&auto=format"

// CatalogReader 商品目錄唯讀查詢, 提供加入購物車當下的權威單價
type CatalogReader interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}

type catalogReader struct {
	productRepo db.IProductRepository
}

func NewCatalogReader(productRepo db.IProductRepository) CatalogReader {
	return &catalogReader{productRepo: productRepo}
}

func (c *catalogReader) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := c.productRepo.GetProductByID(ctx, productID)
	if db.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, rjerr.Storage("get product", err)
	}
	return product, nil
}

func productImage(product *model.Product) string {
	if product.ImageURL == "" {
		return DefaultProductImage
	}
	return product.ImageURL
}
