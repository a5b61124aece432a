// Package dbtest 測試用 in-memory sqlite, 只給 _test 使用
package dbtest

import (
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 每次呼叫都是獨立的資料庫, 尚未 migrate
// 單一連線, 併發寫入由連線池排隊
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return conn
}

// UpdateProductPrice 模擬目錄端改價
func UpdateProductPrice(t testing.TB, conn *gorm.DB, id int64, price decimal.Decimal) {
	t.Helper()
	require.NoError(t, conn.Model(&model.Product{}).Where("product_id = ?", id).Update("price", price).Error)
}

// UpdateProductName 模擬目錄端改名
func UpdateProductName(t testing.TB, conn *gorm.DB, id int64, name string) {
	t.Helper()
	require.NoError(t, conn.Model(&model.Product{}).Where("product_id = ?", id).Update("name", name).Error)
}
