package service

import (
	"errors"

	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
)

const (
	ReasonBuyerRequired      = "BUYER_REQUIRED"
	ReasonInvalidQuantity    = "INVALID_QUANTITY"
	ReasonInvalidTotal       = "INVALID_TOTAL"
	ReasonNoItems            = "NO_ITEMS"
	ReasonInvalidItem        = "INVALID_ITEM"
	ReasonShippingRequired   = "SHIPPING_REQUIRED"
	ReasonShippingIncomplete = "SHIPPING_INCOMPLETE"
	ReasonTotalMismatch      = "TOTAL_MISMATCH"
	ReasonInvalidStatus      = "INVALID_STATUS"
)

var (
	ErrProductNotFound    = rjerr.New(rjerr.NotFoundCode, "product not found")
	ErrLineNotFound       = rjerr.New(rjerr.NotFoundCode, "cart item not found")
	ErrOrderNotFound      = rjerr.New(rjerr.NotFoundCode, "order not found")
	ErrInvalidQuantity    = rjerr.Validation(ReasonInvalidQuantity, "quantity must be a positive integer")
	ErrBuyerRequired      = rjerr.Validation(ReasonBuyerRequired, "Buyer ID is required. Please login and try again.")
	ErrCartConflict       = rjerr.New(rjerr.ConflictCode, "cart item was modified concurrently, please retry")
	ErrCheckoutInProgress = rjerr.New(rjerr.ConflictCode, "checkout with this idempotency key is still in progress")

	// ErrInvalidCheckout 所有結帳前置驗證失敗都包這個, 原因在 AppError.Reason
	ErrInvalidCheckout = errors.New("invalid checkout")
)

func invalidCheckout(reason, msg string) error {
	return &rjerr.AppError{
		Code:   rjerr.BadRequestCode,
		Reason: reason,
		Msg:    msg,
		Err:    ErrInvalidCheckout,
	}
}
