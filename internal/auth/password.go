package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

var (
	ErrPasswordTooShort  = errors.New("密码长度不能少于 8 位")
	ErrPasswordTooLong   = errors.New("密码长度不能超过 128 位")
	ErrPasswordNoUpper   = errors.New("密码必须包含大写字母")
	ErrPasswordNoLower   = errors.New("密码必须包含小写字母")
	ErrPasswordNoDigit   = errors.New("密码必须包含数字")
	ErrPasswordNoSpecial = errors.New("密码必须包含特殊字符")
)

// PasswordManager bcrypt 密码哈希
type PasswordManager struct {
	cost int
}

// NewPasswordManager cost 为 0 时使用 bcrypt.DefaultCost
func NewPasswordManager(cost int) *PasswordManager {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordManager{cost: cost}
}

func (m *PasswordManager) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify 密码与哈希不匹配或哈希格式错误都返回 false
func (m *PasswordManager) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateStrength 密码强度：8-128 位，大小写字母、数字、特殊字符各至少一个
func ValidateStrength(password string) error {
	n := len([]rune(password))
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	case !special:
		return ErrPasswordNoSpecial
	}
	return nil
}
