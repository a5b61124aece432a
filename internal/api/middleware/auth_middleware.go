package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
)

// 驗證ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.GetTokenPayloadFromContext(r.Context()) == nil {
			rjapi.ErrorJSON(w, rjerr.UnauthenticatedCode, "Please login and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
