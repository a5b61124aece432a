package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api"
	m "github.com/RoyceAzure/lab/shopcore/internal/api/middleware"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/limiter"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/RoyceAzure/lab/shopcore/internal/metrics"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/rjapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func SetupRouter(server *api.Server, tokenMaker token.Maker, rateLimiter limiter.ILimiter, serverMetrics *metrics.ServerMetrics, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.MetricsMiddleware(serverMetrics))
	r.Use(m.RecoverMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rjapi.SuccessJSON(w, nil, "ok")
	})
	r.Method(http.MethodGet, "/metrics", serverMetrics.Handler())

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.AuthMiddleware)
		r.Use(m.NewRateLimitMiddleware(rateLimiter))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", server.CartHandler.Add)
			r.Get("/", server.CartHandler.List)
			r.Delete("/", server.CartHandler.Clear)
			r.Get("/count", server.CartHandler.Count)
			r.Put("/{lineId}", server.CartHandler.Update)
			r.Delete("/{lineId}", server.CartHandler.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.History)
			r.Post("/checkout", server.OrderHandler.Checkout)
			r.Post("/checkout/cart", server.OrderHandler.CheckoutFromCart)
			r.Get("/{orderId}", server.OrderHandler.Details)
			r.Put("/{orderId}/status", server.OrderHandler.UpdateStatus)
			r.Delete("/{orderId}", server.OrderHandler.Cancel)
		})
	})
	return r
}
