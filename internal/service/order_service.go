package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model/event"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/rs/zerolog"
)

type IOrderService interface {
	HistoryByBuyer(ctx context.Context, buyerID int64) ([]model.OrderHistory, error)
	DetailsByOrderID(ctx context.Context, orderID int64) (*model.OrderDetails, bool, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	Cancel(ctx context.Context, orderID int64) error
}

// OrderService 訂單讀取端投影, 只讀訂單上的快照欄位
type OrderService struct {
	store  db.UnifiedDB
	topic  string
	logger zerolog.Logger
}

func NewOrderService(store db.UnifiedDB, topic string, logger zerolog.Logger) *OrderService {
	if util.IsNil(store) {
		panic("NewOrderService: store cannot be nil")
	}
	if topic == "" {
		topic = DefaultOrderTopic
	}
	return &OrderService{store: store, topic: topic, logger: logger}
}

// HistoryByBuyer 依下單時間新到舊, 不含明細
func (o *OrderService) HistoryByBuyer(ctx context.Context, buyerID int64) ([]model.OrderHistory, error) {
	history, err := o.store.ListOrderHistoryByBuyer(ctx, buyerID)
	if err != nil {
		o.logger.Error().Err(err).Int64("buyer_id", buyerID).Msg("list order history failed")
		return nil, rjerr.Storage("list order history", err)
	}
	return history, nil
}

// DetailsByOrderID 訂單不存在回傳 (nil, false, nil)
func (o *OrderService) DetailsByOrderID(ctx context.Context, orderID int64) (*model.OrderDetails, bool, error) {
	order, err := o.store.GetOrderByID(ctx, orderID)
	if db.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		o.logger.Error().Err(err).Int64("order_id", orderID).Msg("get order failed")
		return nil, false, rjerr.Storage("get order", err)
	}

	items, err := o.store.ListOrderItems(ctx, orderID)
	if err != nil {
		o.logger.Error().Err(err).Int64("order_id", orderID).Msg("list order items failed")
		return nil, false, rjerr.Storage("list order items", err)
	}
	return model.NewOrderDetails(order, items), true, nil
}

// UpdateStatus 狀態為不透明字串, 不做流程檢查
func (o *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return rjerr.Validation(ReasonInvalidStatus, "status is required")
	}

	err := o.store.Transaction(ctx, func(tx db.UnifiedDB) error {
		if err := tx.UpdateOrderStatus(ctx, orderID, status); err != nil {
			return err
		}
		record, err := newOutboxRecord(event.NewOrderStatusChangedEvent(orderID, status), o.topic, strconv.FormatInt(orderID, 10))
		if err != nil {
			return err
		}
		return tx.InsertOutbox(ctx, record)
	})
	if db.IsNotFound(err) {
		return ErrOrderNotFound
	}
	if err != nil {
		o.logger.Error().Err(err).Int64("order_id", orderID).Str("status", status).Msg("update order status failed")
		return rjerr.Storage("update order status", err)
	}
	o.logger.Info().Int64("order_id", orderID).Str("status", status).Msg("order status updated")
	return nil
}

func (o *OrderService) Cancel(ctx context.Context, orderID int64) error {
	return o.UpdateStatus(ctx, orderID, model.OrderStatusCancelled)
}

var _ IOrderService = (*OrderService)(nil)
