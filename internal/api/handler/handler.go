package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/go-chi/chi/v5"
)

// requirePayload 路由已掛 AuthMiddleware, 這裡只防漏掛
func requirePayload(w http.ResponseWriter, r *http.Request) (*token.Payload, bool) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		rjapi.ErrorJSON(w, rjerr.UnauthenticatedCode, "Please login and try again.")
		return nil, false
	}
	return payload, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rjapi.ErrorJSON(w, rjerr.BadRequestCode, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		rjapi.ErrorJSON(w, rjerr.BadRequestCode, "invalid "+name)
		return 0, false
	}
	return id, true
}

func isSeller(payload *token.Payload) bool {
	return payload.Role == string(model.RoleSeller)
}
