package rjerr

import (
	"errors"
	"fmt"
)

// Code 同時作為 http status 使用
type Code int

const (
	BadRequestCode      Code = 400
	UnauthenticatedCode Code = 401
	UnauthorizedCode    Code = 403
	NotFoundCode        Code = 404
	ConflictCode        Code = 409
	TooManyRequestsCode Code = 429
	InternalErrorCode   Code = 500
)

var ErrStrMap = map[Code]string{
	BadRequestCode:      "bad request",
	UnauthenticatedCode: "unauthenticated",
	UnauthorizedCode:    "permission denied",
	NotFoundCode:        "resource not found",
	ConflictCode:        "conflict, please retry",
	TooManyRequestsCode: "too many requests",
	InternalErrorCode:   "internal server error",
}

// AppError 對外錯誤
// Reason 為機器可讀代碼, Msg 可直接回給使用者
type AppError struct {
	Code   Code
	Reason string
	Msg    string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Msg: msg}
}

func Wrap(code Code, msg string, err error) *AppError {
	return &AppError{Code: code, Msg: msg, Err: err}
}

// Validation 驗證錯誤, 不重試, 訊息原樣回給呼叫端
func Validation(reason, msg string) *AppError {
	return &AppError{Code: BadRequestCode, Reason: reason, Msg: msg}
}

// Storage 儲存層錯誤, 對外只顯示通用訊息
func Storage(op string, err error) *AppError {
	return &AppError{Code: InternalErrorCode, Reason: op, Msg: ErrStrMap[InternalErrorCode], Err: err}
}

// As 取出 AppError, 非 AppError 一律視為 InternalErrorCode
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(InternalErrorCode, ErrStrMap[InternalErrorCode], err)
}

func IsCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
