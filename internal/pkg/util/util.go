package util

import (
	"fmt"
	"reflect"
)

const OrderNumberPrefix = "ORD-"

// OrderNumber 由訂單ID決定, 同一ID永遠得到同一號碼
func OrderNumber(orderID int64) string {
	return fmt.Sprintf("%s%d", OrderNumberPrefix, orderID)
}

// IsNil 檢查介面是否為 nil
// 注意：這個函數會同時檢查介面的型別和值
func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}

	switch reflect.TypeOf(i).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Func, reflect.Interface:
		return reflect.ValueOf(i).IsNil()
	}

	return false
}
