package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品カテゴリ（閉じた列挙）
type Category string

const (
	CategoryChocolate Category = "CHOCOLATE"
	CategoryCandy     Category = "CANDY"
	CategoryGummy     Category = "GUMMY"
	CategoryCookie    Category = "COOKIE"
	CategoryCake      Category = "CAKE"
	CategoryOther     Category = "OTHER"
)

// 列挙に含まれるか
func (c Category) Valid() bool {
	switch c {
	case CategoryChocolate, CategoryCandy, CategoryGummy, CategoryCookie, CategoryCake, CategoryOther:
		return true
	default:
		return false
	}
}

type Sweet struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Category    Category       `gorm:"type:varchar(20);not null" json:"category"`
	Price       float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int64          `gorm:"not null" json:"quantity"`
	Description string         `gorm:"type:varchar(1000)" json:"description"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
