package api

import "github.com/RoyceAzure/lab/shopcore/internal/api/handler"

type Server struct {
	CartHandler  *handler.CartHandler
	OrderHandler *handler.OrderHandler
}

func NewServer(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
) *Server {
	return &Server{
		CartHandler:  cartHandler,
		OrderHandler: orderHandler,
	}
}
