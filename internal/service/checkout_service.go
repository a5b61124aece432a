package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model/event"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultOrderTopic = "order-events"

var tracer = otel.Tracer("github.com/RoyceAzure/lab/shopcore/internal/service")

// CheckoutItem 呼叫端送來的明細快照, 原樣寫入訂單明細
type CheckoutItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	BuyerID     int64
	TotalAmount decimal.Decimal
	Items       []CheckoutItem
	Shipping    model.ShippingAddress
}

// CheckoutPolicy
// VerifyTotal 開啟時, 總金額必須等於明細加總
type CheckoutPolicy struct {
	VerifyTotal bool
}

// IdempotencyStore 結帳冪等鍵
// Reserve: 取得保留權回傳 (0, true); 已完成回傳 (orderID, false); 執行中回傳 (0, false)
type IdempotencyStore interface {
	Reserve(ctx context.Context, buyerID int64, key string) (int64, bool, error)
	Complete(ctx context.Context, buyerID int64, key string, orderID int64) error
	Release(ctx context.Context, buyerID int64, key string) error
}

type ICheckoutService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error)
	CheckoutOnce(ctx context.Context, idemKey string, req CheckoutRequest) (*model.Order, error)
	CheckoutFromCart(ctx context.Context, buyerID int64, shipping model.ShippingAddress) (*model.Order, error)
	CheckoutFromCartOnce(ctx context.Context, idemKey string, buyerID int64, shipping model.ShippingAddress) (*model.Order, error)
}

type CheckoutService struct {
	store  db.UnifiedDB
	idem   IdempotencyStore
	policy CheckoutPolicy
	topic  string
	logger zerolog.Logger
	now    func() time.Time
}

type CheckoutOption func(*CheckoutService)

func WithIdempotencyStore(idem IdempotencyStore) CheckoutOption {
	return func(s *CheckoutService) {
		s.idem = idem
	}
}

func WithCheckoutPolicy(policy CheckoutPolicy) CheckoutOption {
	return func(s *CheckoutService) {
		s.policy = policy
	}
}

func WithOrderTopic(topic string) CheckoutOption {
	return func(s *CheckoutService) {
		if topic != "" {
			s.topic = topic
		}
	}
}

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

func NewCheckoutService(store db.UnifiedDB, logger zerolog.Logger, opts ...CheckoutOption) *CheckoutService {
	if util.IsNil(store) {
		panic("NewCheckoutService: store cannot be nil")
	}
	s := &CheckoutService{
		store:  store,
		topic:  DefaultOrderTopic,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout 以呼叫端提供的明細建立訂單
// 訂單, 明細, outbox 事件在同一個交易內寫入, 任一失敗全部 rollback
// 明細價格不與商品目錄比對, 商品庫存不扣
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Checkout",
		trace.WithAttributes(
			attribute.Int64("buyer.id", req.BuyerID),
			attribute.Int("checkout.items", len(req.Items)),
		))
	defer span.End()

	if err := s.validate(req); err != nil {
		endSpan(span, err)
		return nil, err
	}

	order, items := s.buildOrder(req.BuyerID, req.TotalAmount, req.Shipping, req.Items)
	err := s.store.Transaction(ctx, func(tx db.UnifiedDB) error {
		return s.placeOrder(ctx, tx, order, items)
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("buyer_id", req.BuyerID).Msg("checkout failed")
		err = rjerr.Storage("checkout", err)
		endSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	s.logger.Info().
		Int64("buyer_id", order.BuyerID).
		Str("order_number", order.OrderNumber).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Msg("order placed")
	return order, nil
}

// CheckoutFromCart 以購物車目前內容結帳, 使用加入購物車時擷取的單價
// 讀取明細, 建立訂單, 刪除已結帳明細都在同一個交易內
func (s *CheckoutService) CheckoutFromCart(ctx context.Context, buyerID int64, shipping model.ShippingAddress) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.CheckoutFromCart",
		trace.WithAttributes(attribute.Int64("buyer.id", buyerID)))
	defer span.End()

	if buyerID <= 0 {
		endSpan(span, ErrBuyerRequired)
		return nil, invalidCheckout(ReasonBuyerRequired, ErrBuyerRequired.Msg)
	}
	if err := validateShipping(shipping); err != nil {
		endSpan(span, err)
		return nil, err
	}

	var order *model.Order
	err := s.store.Transaction(ctx, func(tx db.UnifiedDB) error {
		lines, err := tx.ListCartLinesForCheckout(ctx, buyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errEmptyCart
		}

		total := decimal.Zero
		checkoutItems := make([]CheckoutItem, 0, len(lines))
		lineIDs := make([]int64, 0, len(lines))
		for _, line := range lines {
			total = total.Add(model.LineTotal(line.Price, line.Quantity))
			checkoutItems = append(checkoutItems, CheckoutItem{
				ProductID: line.ProductID,
				Name:      line.ProductName,
				Image:     line.ImageURL,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
			lineIDs = append(lineIDs, line.ID)
		}
		if !total.IsPositive() {
			return errInvalidCartTotal
		}

		var items []model.OrderItem
		order, items = s.buildOrder(buyerID, total, shipping, checkoutItems)
		if err := s.placeOrder(ctx, tx, order, items); err != nil {
			return err
		}
		return tx.DeleteCartLines(ctx, buyerID, lineIDs)
	})
	if errors.Is(err, errEmptyCart) {
		err = invalidCheckout(ReasonNoItems, msgNoItems)
		endSpan(span, err)
		return nil, err
	}
	if errors.Is(err, errInvalidCartTotal) {
		err = invalidCheckout(ReasonInvalidTotal, msgInvalidTotal)
		endSpan(span, err)
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("buyer_id", buyerID).Msg("checkout from cart failed")
		err = rjerr.Storage("checkout from cart", err)
		endSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	s.logger.Info().
		Int64("buyer_id", order.BuyerID).
		Str("order_number", order.OrderNumber).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Msg("order placed from cart")
	return order, nil
}

// CheckoutOnce 帶冪等鍵的 Checkout, 鍵為空時等同 Checkout
func (s *CheckoutService) CheckoutOnce(ctx context.Context, idemKey string, req CheckoutRequest) (*model.Order, error) {
	if idemKey == "" || s.idem == nil {
		return s.Checkout(ctx, req)
	}
	// 驗證失敗不佔用冪等鍵
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.once(ctx, idemKey, req.BuyerID, func() (*model.Order, error) {
		return s.Checkout(ctx, req)
	})
}

func (s *CheckoutService) CheckoutFromCartOnce(ctx context.Context, idemKey string, buyerID int64, shipping model.ShippingAddress) (*model.Order, error) {
	if idemKey == "" || s.idem == nil {
		return s.CheckoutFromCart(ctx, buyerID, shipping)
	}
	return s.once(ctx, idemKey, buyerID, func() (*model.Order, error) {
		return s.CheckoutFromCart(ctx, buyerID, shipping)
	})
}

func (s *CheckoutService) once(ctx context.Context, idemKey string, buyerID int64, fn func() (*model.Order, error)) (*model.Order, error) {
	orderID, reserved, err := s.idem.Reserve(ctx, buyerID, idemKey)
	if err != nil {
		s.logger.Error().Err(err).Int64("buyer_id", buyerID).Str("idempotency_key", idemKey).Msg("reserve idempotency key failed")
		return nil, rjerr.Storage("reserve idempotency key", err)
	}
	if !reserved {
		if orderID == 0 {
			return nil, ErrCheckoutInProgress
		}
		order, err := s.store.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, rjerr.Storage("replay checkout", err)
		}
		s.logger.Info().Int64("buyer_id", buyerID).Str("idempotency_key", idemKey).
			Str("order_number", order.OrderNumber).Msg("checkout replayed")
		return order, nil
	}

	order, err := fn()
	if err != nil {
		if relErr := s.idem.Release(ctx, buyerID, idemKey); relErr != nil {
			s.logger.Warn().Err(relErr).Str("idempotency_key", idemKey).Msg("release idempotency key failed")
		}
		return nil, err
	}
	if err := s.idem.Complete(ctx, buyerID, idemKey, order.ID); err != nil {
		// 訂單已建立, 冪等鍵寫入失敗只記錄
		s.logger.Warn().Err(err).Str("idempotency_key", idemKey).Str("order_number", order.OrderNumber).Msg("complete idempotency key failed")
	}
	return order, nil
}

func (s *CheckoutService) buildOrder(buyerID int64, total decimal.Decimal, shipping model.ShippingAddress, in []CheckoutItem) (*model.Order, []model.OrderItem) {
	order := &model.Order{
		BuyerID:     buyerID,
		TotalAmount: total,
		Status:      model.OrderStatusPlaced,
		OrderDate:   s.now().UTC(),
		Shipping:    shipping,
	}
	items := make([]model.OrderItem, 0, len(in))
	for _, item := range in {
		items = append(items, model.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			ImageURL:    item.Image,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return order, items
}

// placeOrder 必須在交易內呼叫
func (s *CheckoutService) placeOrder(ctx context.Context, tx db.UnifiedDB, order *model.Order, items []model.OrderItem) error {
	if err := tx.CreateOrderWithItems(ctx, order, items); err != nil {
		return err
	}
	record, err := newOutboxRecord(event.NewOrderPlacedEvent(order, items), s.topic, strconv.FormatInt(order.BuyerID, 10))
	if err != nil {
		return err
	}
	return tx.InsertOutbox(ctx, record)
}

func (s *CheckoutService) validate(req CheckoutRequest) error {
	if req.BuyerID <= 0 {
		return invalidCheckout(ReasonBuyerRequired, ErrBuyerRequired.Msg)
	}
	if !req.TotalAmount.IsPositive() {
		return invalidCheckout(ReasonInvalidTotal, msgInvalidTotal)
	}
	if len(req.Items) == 0 {
		return invalidCheckout(ReasonNoItems, msgNoItems)
	}
	sum := decimal.Zero
	for i, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity < 1 || item.Price.IsNegative() {
			return invalidCheckout(ReasonInvalidItem, "Invalid item at position "+strconv.Itoa(i+1)+". Please review your cart and try again.")
		}
		sum = sum.Add(model.LineTotal(item.Price, item.Quantity))
	}
	if err := validateShipping(req.Shipping); err != nil {
		return err
	}
	if s.policy.VerifyTotal && !sum.Equal(req.TotalAmount) {
		return invalidCheckout(ReasonTotalMismatch, "Total amount does not match the items. Please refresh your cart and try again.")
	}
	return nil
}

const (
	msgInvalidTotal     = "Invalid total amount. Please add items to your cart and try again."
	msgNoItems          = "No items in cart. Please add items to your cart and try again."
	msgShippingRequired = "Shipping address is required. Please provide shipping details and try again."
)

var (
	errEmptyCart        = errors.New("cart is empty")
	errInvalidCartTotal = errors.New("cart total is not positive")
)

// validateShipping 七個欄位都必須有值, 缺欄位不補預設
func validateShipping(addr model.ShippingAddress) error {
	if addr == (model.ShippingAddress{}) {
		return invalidCheckout(ReasonShippingRequired, msgShippingRequired)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"fullName", addr.FullName},
		{"address", addr.Address},
		{"city", addr.City},
		{"state", addr.State},
		{"zip", addr.ZipCode},
		{"country", addr.Country},
		{"phone", addr.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return invalidCheckout(ReasonShippingIncomplete, "Shipping "+f.name+" is required. Please provide shipping details and try again.")
		}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ ICheckoutService = (*CheckoutService)(nil)
