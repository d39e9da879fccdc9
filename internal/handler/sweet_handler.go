package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sweetshop/internal/config"
	"sweetshop/internal/middleware"
	"sweetshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseの失敗種別をHTTPステータスへ写す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient stock"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 商品のリクエストボディ（create/update共通）
type SweetRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Description string  `json:"description"`
}

// purchase/restock のリクエストボディ
type QuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// /api/sweets をまとめる
type SweetHandler struct {
	uc *usecase.SweetUsecase
}

// DI
func NewSweetHandler(uc *usecase.SweetUsecase) *SweetHandler {
	return &SweetHandler{uc: uc}
}

// 認証必須のルートを登録。管理者専用ルートはroleガードを重ねる。
func (h *SweetHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	sweets := e.Group("/api/sweets")
	sweets.Use(middleware.AuthJWT(cfg))

	sweets.GET("", h.list)
	sweets.GET("/search", h.search)
	sweets.GET("/:id", h.detail)
	sweets.POST("/:id/purchase", h.purchase)

	admin := middleware.AdminRoleGuard()
	sweets.POST("", h.create, admin)
	sweets.PUT("/:id", h.update, admin)
	sweets.DELETE("/:id", h.delete, admin)
	sweets.POST("/:id/restock", h.restock, admin)
}

func (h *SweetHandler) list(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	sweets, err := h.uc.ListSweets(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sweets)
}

func (h *SweetHandler) search(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	in := usecase.SearchSweetsInput{
		Term:     c.QueryParam("term"),
		Category: c.QueryParam("category"),
	}

	if v := c.QueryParam("min_price"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_price"})
		}
		in.MinPrice = &x
	}
	if v := c.QueryParam("max_price"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid max_price"})
		}
		in.MaxPrice = &x
	}

	sweets, err := h.uc.SearchSweets(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sweets)
}

func (h *SweetHandler) detail(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	s, err := h.uc.GetSweet(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SweetHandler) create(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	var req SweetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	created, err := h.uc.CreateSweet(c.Request().Context(), actor, toSweetInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *SweetHandler) update(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	var req SweetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	updated, err := h.uc.UpdateSweet(c.Request().Context(), actor, c.Param("id"), toSweetInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *SweetHandler) delete(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	if err := h.uc.DeleteSweet(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *SweetHandler) restock(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	updated, err := h.uc.RestockSweet(c.Request().Context(), actor, c.Param("id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *SweetHandler) purchase(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}

	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	updated, err := h.uc.PurchaseSweet(c.Request().Context(), actor, c.Param("id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func toSweetInput(req SweetRequest) usecase.SweetInput {
	return usecase.SweetInput{
		Name:        req.Name,
		Category:    usecase.NormalizeCategory(req.Category),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	}
}
