package usecase

import (
	"errors"
	"fmt"
)

var (
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//404 対象なし
	ErrNotFound = errors.New("not found")
	//401 認証失敗
	ErrUnauthenticated = errors.New("unauthenticated")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//409 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	//409 競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// フィールド単位の理由を付けたValidationError
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
