package repository

import (
	"context"
	"errors"
	"strings"

	"sweetshop/internal/domain/model"
	repo "sweetshop/internal/repository"

	"gorm.io/gorm"
)

type SweetGormRepository struct {
	db *gorm.DB
}

// DI
func NewSweetGormRepository(db *gorm.DB) *SweetGormRepository {
	return &SweetGormRepository{db: db}
}

// IDで商品を取得
func (r *SweetGormRepository) FindByID(ctx context.Context, id string) (model.Sweet, error) {
	var s model.Sweet
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Sweet{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sweet{}, err
	}
	return s, nil
}

// 全件取得。並びは作成日時の新しい順で安定させる。
func (r *SweetGormRepository) List(ctx context.Context) ([]model.Sweet, error) {
	var sweets []model.Sweet
	err := r.db.WithContext(ctx).
		Order("created_at desc").Order("id desc").
		Find(&sweets).Error
	if err != nil {
		return nil, err
	}
	return sweets, nil
}

// 名前・説明の部分一致＋カテゴリ一致＋価格帯で検索
func (r *SweetGormRepository) Search(ctx context.Context, q repo.SweetSearchQuery) ([]model.Sweet, error) {
	tx := r.db.WithContext(ctx).Model(&model.Sweet{})

	if term := strings.TrimSpace(q.Term); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	var sweets []model.Sweet
	if err := tx.Order("created_at desc").Order("id desc").Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

// 商品の作成
func (r *SweetGormRepository) Create(ctx context.Context, s model.Sweet) (model.Sweet, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Sweet{}, err
	}
	return s, nil
}

// 商品の更新（idは変更しない）
func (r *SweetGormRepository) Update(ctx context.Context, s model.Sweet) (model.Sweet, error) {
	var updated model.Sweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Sweet{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
			"name":        s.Name,
			"category":    s.Category,
			"price":       s.Price,
			"quantity":    s.Quantity,
			"description": s.Description,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return tx.First(&updated, "id = ?", s.ID).Error
	})
	if err != nil {
		return model.Sweet{}, err
	}
	return updated, nil
}

// 商品削除（ソフトデリート。削除後のidは二度と解決しない）
func (r *SweetGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Sweet{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
