package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultIdempotencyTTL = 24 * time.Hour
	// 保留中的鍵只活到請求逾時, 程序中途結束時不會卡住重試
	DefaultPendingTTL = time.Minute

	// 保留中的值, 完成後改為訂單ID
	pendingValue = "pending"
)

var ErrInvalidIdempotencyValue = errors.New("invalid idempotency value")

/*	結帳冪等鍵
	結構:
	checkout:idem:{buyerID}:{key} = "pending" | "{orderID}"
	pending 使用 pendingTTL, Complete 後延長為 ttl
*/

type IdempotencyRepo struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

func NewIdempotencyRepo(client *redis.Client, ttl, pendingTTL time.Duration) *IdempotencyRepo {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if pendingTTL <= 0 {
		pendingTTL = DefaultPendingTTL
	}
	if pendingTTL > ttl {
		pendingTTL = ttl
	}
	return &IdempotencyRepo{client: client, ttl: ttl, pendingTTL: pendingTTL}
}

func generateIdempotencyKey(buyerID int64, key string) string {
	return fmt.Sprintf("checkout:idem:%d:%s", buyerID, key)
}

// Reserve SET NX 取得保留權
// 回傳:
//   - (0, true): 取得保留權, 呼叫端需執行結帳後 Complete 或 Release
//   - (orderID, false): 已完成, 回放原訂單
//   - (0, false): 其他請求執行中
func (r *IdempotencyRepo) Reserve(ctx context.Context, buyerID int64, key string) (int64, bool, error) {
	redisKey := generateIdempotencyKey(buyerID, key)
	ok, err := r.client.SetNX(ctx, redisKey, pendingValue, r.pendingTTL).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}

	val, err := r.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// 在 SETNX 與 GET 之間被釋放, 重新保留
		return r.Reserve(ctx, buyerID, key)
	}
	if err != nil {
		return 0, false, err
	}
	if val == pendingValue {
		return 0, false, nil
	}
	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrInvalidIdempotencyValue, val)
	}
	return orderID, false, nil
}

// Complete 寫入訂單ID並延長為完整 ttl
func (r *IdempotencyRepo) Complete(ctx context.Context, buyerID int64, key string, orderID int64) error {
	return r.client.Set(ctx, generateIdempotencyKey(buyerID, key), strconv.FormatInt(orderID, 10), r.ttl).Err()
}

// Release 結帳失敗時釋放, 允許以同一個鍵重試
func (r *IdempotencyRepo) Release(ctx context.Context, buyerID int64, key string) error {
	return r.client.Del(ctx, generateIdempotencyKey(buyerID, key)).Err()
}
