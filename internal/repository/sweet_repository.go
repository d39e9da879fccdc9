package repository

import (
	"context"
	"errors"

	"sweetshop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 検索条件
type SweetSearchQuery struct {
	Term     string
	Category model.Category
	MinPrice *float64
	MaxPrice *float64
}

// 商品の永続化（保存・取得）だけを約束。
type SweetRepository interface {
	FindByID(ctx context.Context, id string) (model.Sweet, error)
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, q SweetSearchQuery) ([]model.Sweet, error)

	Create(ctx context.Context, s model.Sweet) (model.Sweet, error)
	Update(ctx context.Context, s model.Sweet) (model.Sweet, error)
	Delete(ctx context.Context, id string) error
}
