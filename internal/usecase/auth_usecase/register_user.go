package auth

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"sweetshop/internal/domain/model"
	"sweetshop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")

	// 競合
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,100}$`)

// 会員登録実行。登録ユーザーのroleは常にCUSTOMER。
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return out, ErrInvalidUsername
	}

	// emailの形式チェック
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return out, ErrInvalidEmailFormat
	}

	// passwordの長さチェック（最小8文字）
	if len(in.Password) < 8 {
		return out, ErrPasswordTooShort
	}

	// username重複チェック
	if existing, err := u.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		return out, ErrUsernameAlreadyExists
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// email重複チェック
	if existing, err := u.userRepo.FindByEmail(ctx, in.Email); err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// パスワードをハッシュ化（平文は保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Username:     username,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return out, err
	}

	out.User = *user
	return out, nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
