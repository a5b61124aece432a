package middleware

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/shopcore/internal/infra/limiter"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjerr"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
)

// NewRateLimitMiddleware 已登入以買家ID限流, 否則以來源IP
func NewRateLimitMiddleware(rateLimiter limiter.ILimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + r.RemoteAddr
			if payload := util.GetTokenPayloadFromContext(r.Context()); payload != nil {
				key = "buyer:" + strconv.FormatInt(payload.BuyerID, 10)
			}
			if !rateLimiter.Allow(r.Context(), key) {
				rjapi.ErrorJSON(w, rjerr.TooManyRequestsCode, "Too many requests. Please slow down and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
