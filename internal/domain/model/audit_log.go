package model

import "time"

// 管理者の商品・在庫操作。
type AuditAction string

const (
	//商品を作成した操作。
	AuditActionCreateSweet AuditAction = "CREATE_SWEET"
	//商品を更新した操作。
	AuditActionUpdateSweet AuditAction = "UPDATE_SWEET"
	//商品を削除した操作。
	AuditActionDeleteSweet AuditAction = "DELETE_SWEET"
	//在庫を補充した操作。
	AuditActionRestock AuditAction = "RESTOCK"
)

// 何に対する操作か
type AuditResourceType string

const (
	//商品に対する操作。
	AuditResourceSweet AuditResourceType = "sweet"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	//操作した管理者のID。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`

	//操作の種類（CREATE_SWEET / RESTOCK など）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。
	ResourceID string `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
