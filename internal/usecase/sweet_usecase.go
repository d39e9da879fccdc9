package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sweetshop/internal/domain/model"
	repo "sweetshop/internal/repository"
)

const maxDescriptionLen = 1000

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SweetUsecase struct {
	sweetRepo     repo.SweetRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
	idGen         IDGenerator
	clock         Clock
}

// DI
func NewSweetUsecase(
	sweetRepo repo.SweetRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
	idGen IDGenerator,
	clock Clock,
) *SweetUsecase {
	return &SweetUsecase{
		sweetRepo:     sweetRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		clock:         clock,
	}
}

// 商品の入力DTO（create/update共通）
type SweetInput struct {
	Name        string
	Category    model.Category
	Price       float64
	Quantity    int64
	Description string
}

// 検索の入力DTO
type SearchSweetsInput struct {
	Term     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// 入力カテゴリを列挙値へ寄せる（妥当性検証はvalidateSweetInput側）
func NormalizeCategory(s string) model.Category {
	return model.Category(strings.ToUpper(strings.TrimSpace(s)))
}

// create/updateで共通のフィールド検証
func validateSweetInput(in SweetInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name required")
	}
	if !in.Category.Valid() {
		return validationError("invalid category %q", in.Category)
	}
	if in.Price < 0 {
		return validationError("price must be >= 0")
	}
	if in.Quantity < 0 {
		return validationError("quantity must be >= 0")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return validationError("description too long (max %d)", maxDescriptionLen)
	}
	return nil
}

// 認証済みか（READ / PURCHASE はこれだけで良い）
func requireActor(actor model.Actor) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// 管理者か（ADMIN_WRITE）
func requireAdmin(actor model.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (u *SweetUsecase) ListSweets(ctx context.Context, actor model.Actor) ([]model.Sweet, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	sweets, err := u.sweetRepo.List(ctx)
	if err != nil {
		return nil, ErrInternal
	}
	return sweets, nil
}

func (u *SweetUsecase) GetSweet(ctx context.Context, actor model.Actor, sweetID string) (model.Sweet, error) {
	if err := requireActor(actor); err != nil {
		return model.Sweet{}, err
	}
	if sweetID == "" {
		return model.Sweet{}, validationError("sweet id required")
	}

	s, err := u.sweetRepo.FindByID(ctx, sweetID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sweet{}, ErrNotFound
	}
	if err != nil {
		return model.Sweet{}, ErrInternal
	}
	return s, nil
}

func (u *SweetUsecase) SearchSweets(ctx context.Context, actor model.Actor, in SearchSweetsInput) ([]model.Sweet, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if len(in.Term) > 100 {
		return nil, validationError("term too long")
	}

	var category model.Category
	if in.Category != "" {
		category = model.Category(strings.ToUpper(in.Category))
		if !category.Valid() {
			return nil, validationError("invalid category %q", in.Category)
		}
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return nil, validationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return nil, validationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return nil, validationError("min_price must be <= max_price")
	}

	sweets, err := u.sweetRepo.Search(ctx, repo.SweetSearchQuery{
		Term:     strings.TrimSpace(in.Term),
		Category: category,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
	})
	if err != nil {
		return nil, ErrInternal
	}
	return sweets, nil
}

func (u *SweetUsecase) CreateSweet(ctx context.Context, actor model.Actor, in SweetInput) (model.Sweet, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Sweet{}, err
	}
	if err := validateSweetInput(in); err != nil {
		return model.Sweet{}, err
	}

	now := u.clock.Now()
	created, err := u.sweetRepo.Create(ctx, model.Sweet{
		ID:          u.idGen.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Sweet{}, ErrInternal
	}

	if err := u.audit(ctx, actor, model.AuditActionCreateSweet, created.ID, "", sweetJSON(created)); err != nil {
		return model.Sweet{}, err
	}
	return created, nil
}

func (u *SweetUsecase) UpdateSweet(ctx context.Context, actor model.Actor, sweetID string, in SweetInput) (model.Sweet, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Sweet{}, err
	}
	if sweetID == "" {
		return model.Sweet{}, validationError("sweet id required")
	}
	if err := validateSweetInput(in); err != nil {
		return model.Sweet{}, err
	}

	//変更前（監査ログ用）
	before, err := u.sweetRepo.FindByID(ctx, sweetID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sweet{}, ErrNotFound
	}
	if err != nil {
		return model.Sweet{}, ErrInternal
	}

	updated, err := u.sweetRepo.Update(ctx, model.Sweet{
		ID:          sweetID,
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		UpdatedAt:   u.clock.Now(),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sweet{}, ErrNotFound
	}
	if err != nil {
		return model.Sweet{}, ErrInternal
	}

	if err := u.audit(ctx, actor, model.AuditActionUpdateSweet, sweetID, sweetJSON(before), sweetJSON(updated)); err != nil {
		return model.Sweet{}, err
	}
	return updated, nil
}

func (u *SweetUsecase) DeleteSweet(ctx context.Context, actor model.Actor, sweetID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if sweetID == "" {
		return validationError("sweet id required")
	}

	before, err := u.sweetRepo.FindByID(ctx, sweetID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return ErrInternal
	}

	//2回目のdeleteはNotFound（冪等に見せない）
	err = u.sweetRepo.Delete(ctx, sweetID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return ErrInternal
	}

	return u.audit(ctx, actor, model.AuditActionDeleteSweet, sweetID, sweetJSON(before), "")
}

func (u *SweetUsecase) RestockSweet(ctx context.Context, actor model.Actor, sweetID string, amount int64) (model.Sweet, error) {
	if err := requireAdmin(actor); err != nil {
		return model.Sweet{}, err
	}
	if sweetID == "" {
		return model.Sweet{}, validationError("sweet id required")
	}
	if amount <= 0 {
		return model.Sweet{}, validationError("amount must be > 0")
	}

	updated, err := u.inventoryRepo.IncreaseStock(ctx, sweetID, amount)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sweet{}, ErrNotFound
	}
	if err != nil {
		return model.Sweet{}, ErrInternal
	}

	beforeJSON := fmt.Sprintf(`{"quantity":%d}`, updated.Quantity-amount)
	afterJSON := fmt.Sprintf(`{"quantity":%d}`, updated.Quantity)
	if err := u.audit(ctx, actor, model.AuditActionRestock, sweetID, beforeJSON, afterJSON); err != nil {
		return model.Sweet{}, err
	}
	return updated, nil
}

func (u *SweetUsecase) PurchaseSweet(ctx context.Context, actor model.Actor, sweetID string, amount int64) (model.Sweet, error) {
	if err := requireActor(actor); err != nil {
		return model.Sweet{}, err
	}
	if sweetID == "" {
		return model.Sweet{}, validationError("sweet id required")
	}
	if amount <= 0 {
		return model.Sweet{}, validationError("amount must be > 0")
	}

	//確認と減算はrepo側で不可分に行われる
	updated, err := u.inventoryRepo.DecreaseStockIfEnough(ctx, sweetID, amount)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sweet{}, ErrNotFound
	}
	if errors.Is(err, repo.ErrInsufficientStock) {
		return model.Sweet{}, ErrInsufficientStock
	}
	if err != nil {
		return model.Sweet{}, ErrInternal
	}
	return updated, nil
}

// 管理者操作の監査ログを1件残す
func (u *SweetUsecase) audit(ctx context.Context, actor model.Actor, action model.AuditAction, sweetID string, beforeJSON string, afterJSON string) error {
	err := u.auditRepo.Create(ctx, model.AuditLog{
		ID:           u.idGen.NewID(),
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: model.AuditResourceSweet,
		ResourceID:   sweetID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    u.clock.Now(),
	})
	if err != nil {
		return ErrInternal
	}
	return nil
}

func sweetJSON(s model.Sweet) string {
	return fmt.Sprintf(`{"name":%q,"category":%q,"price":%.2f,"quantity":%d}`,
		s.Name, s.Category, s.Price, s.Quantity)
}
