package server

import (
	"sweetshop/internal/config"
	"sweetshop/internal/handler"
	"sweetshop/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Newはルーティング済みのEchoを組み立てる。mainとテストの両方から使う。
func New(cfg config.Config, authH *handler.AuthHandler, sweetH *handler.SweetHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger())

	authH.RegisterRoutes(e)
	sweetH.RegisterRoutes(e, cfg)

	return e
}

func Start(addr string, cfg config.Config, authH *handler.AuthHandler, sweetH *handler.SweetHandler) error {
	return New(cfg, authH, sweetH).Start(addr)
}
