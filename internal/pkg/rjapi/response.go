package rjapi

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
)

// Response 所有 API 共用的回應格式
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}

func SuccessJSON(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func CreatedJSON(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func ErrorJSON(w http.ResponseWriter, code rjerr.Code, message string) {
	if message == "" {
		message = rjerr.ErrStrMap[code]
	}
	writeJSON(w, int(code), Response{Success: false, Message: message})
}

// ErrorFrom 依 AppError 決定 status 與訊息, 非 AppError 一律 500 通用訊息
func ErrorFrom(w http.ResponseWriter, err error) {
	appErr := rjerr.As(err)
	ErrorJSON(w, appErr.Code, appErr.Msg)
}
