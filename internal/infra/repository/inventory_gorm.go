package repository

import (
	"context"

	"sweetshop/internal/domain/model"
	repo "sweetshop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫補充。加算と読み直しを同一トランザクションで行う。
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, sweetID string, qty int64) (model.Sweet, error) {
	var updated model.Sweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Sweet{}).
			Where("id = ?", sweetID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return tx.First(&updated, "id = ?", sweetID).Error
	})
	if err != nil {
		return model.Sweet{}, err
	}
	return updated, nil
}

// 在庫が足りるときだけ減らす。
// quantity >= ? を条件に含めた1回のUPDATEが check-then-set を兼ねるので、
// 同じidへの購入・補充が競合しても残数が負になることはない。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, sweetID string, qty int64) (model.Sweet, error) {
	var updated model.Sweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Sweet{}).
			Where("id = ? AND quantity >= ?", sweetID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			//存在しないのか在庫不足なのかを区別する
			var count int64
			if err := tx.Model(&model.Sweet{}).Where("id = ?", sweetID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return repo.ErrNotFound
			}
			return repo.ErrInsufficientStock
		}
		return tx.First(&updated, "id = ?", sweetID).Error
	})
	if err != nil {
		return model.Sweet{}, err
	}
	return updated, nil
}
