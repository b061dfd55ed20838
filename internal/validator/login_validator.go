package validator

import (
	"errors"
	"regexp"
	"strings"

	auth "github.com/tjmpn2/merchbooth/internal/usecase/auth_usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// 4〜8桁の数字
var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

type loginValidator struct{}

// Usecaseは interface を依存注入
func NewLoginValidator() auth.LoginValidator {
	return &loginValidator{}
}

// ログインの入力を検証
func (v *loginValidator) ValidateLogin(name, pin string) error {
	name = strings.TrimSpace(name)

	// 必須チェック
	if name == "" || pin == "" {
		return ErrInvalidInput
	}
	if len(name) > 100 {
		return ErrInvalidInput
	}
	if !pinPattern.MatchString(pin) {
		return ErrInvalidInput
	}
	return nil
}
