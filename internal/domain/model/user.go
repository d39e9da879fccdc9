package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// リクエスト単位で解決された呼び出し元。永続化しない。
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
