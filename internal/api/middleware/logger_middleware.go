package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func NewStatusRecoder(w http.ResponseWriter) *StatusRecoder {
	if rec, ok := w.(*StatusRecoder); ok {
		return rec
	}
	return &StatusRecoder{ResponseWriter: w, status: http.StatusOK}
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	return w.status
}

// 記錄request 請求
func LoggerMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := NewStatusRecoder(w)
			next.ServeHTTP(recoder, r)

			var buyerID int64
			if payload := util.GetTokenPayloadFromContext(r.Context()); payload != nil {
				buyerID = payload.BuyerID
			}

			event := logger.Info()
			if recoder.Status() >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request_id", util.GetRequestIDFromContext(r.Context())).
				Int64("buyer_id", buyerID).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recoder.Status()).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}
