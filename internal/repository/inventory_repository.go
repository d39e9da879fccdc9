package repository

import (
	"context"
	"errors"

	"sweetshop/internal/domain/model"
)

// 在庫不足で減算できなかった
var ErrInsufficientStock = errors.New("insufficient stock")

// 在庫の増減を約束。同じidへの操作は「確認して書く」まで一息で行う。
type InventoryRepository interface {
	// 在庫補充。更新後の商品を返す。
	IncreaseStock(ctx context.Context, sweetID string, qty int64) (model.Sweet, error)

	// 在庫が足りるときだけ減算。足りなければ ErrInsufficientStock。
	DecreaseStockIfEnough(ctx context.Context, sweetID string, qty int64) (model.Sweet, error)
}
