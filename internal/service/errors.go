package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind 业务失败的种类，调用方（接口层、控制台）据此决定如何展示
type ErrorKind string

const (
	KindInvalidAmount     ErrorKind = "INVALID_AMOUNT"
	KindAccountNotFound   ErrorKind = "ACCOUNT_NOT_FOUND"
	KindAccountNotActive  ErrorKind = "ACCOUNT_NOT_ACTIVE"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindSameAccount       ErrorKind = "SAME_ACCOUNT"
	KindStorageFailure    ErrorKind = "STORAGE_FAILURE"
)

// BusinessError 带种类的业务错误
//
// 在事务闭包里返回它会触发回滚，事务外再通过 errors.As 还原成失败结果
type BusinessError struct {
	Kind    ErrorKind
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// Is 同种类即视为相等，errors.Is(err, ErrInsufficientFunds) 不关心具体文案
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidAmount     = &BusinessError{Kind: KindInvalidAmount, Message: "金额必须大于0"}
	ErrAccountNotFound   = &BusinessError{Kind: KindAccountNotFound, Message: "账户不存在"}
	ErrAccountNotActive  = &BusinessError{Kind: KindAccountNotActive, Message: "账户状态不可用"}
	ErrInsufficientFunds = &BusinessError{Kind: KindInsufficientFunds, Message: "余额不足"}
	ErrSameAccount       = &BusinessError{Kind: KindSameAccount, Message: "转出账户和转入账户不能相同"}
	ErrStorageFailure    = &BusinessError{Kind: KindStorageFailure, Message: "系统繁忙，操作未生效，请稍后重试"}
)

func businessErr(kind ErrorKind, format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// moneyScale 金额精度，与 balance / amount 列的 decimal(18,2) 一致
const moneyScale = 2

// checkAmount 金额必须为正且不超过两位小数
//
// 【关键点】多出的小数位会被数据库静默四舍五入，0.004 会记成一条 0.00 的流水，
// 0.005 则凭空多出 0.01，所以在进入事务前直接拒绝
func checkAmount(amount decimal.Decimal, action string) *BusinessError {
	if !amount.IsPositive() {
		return businessErr(KindInvalidAmount, "%s金额必须大于0", action)
	}
	if !amount.Equal(amount.Round(moneyScale)) {
		return businessErr(KindInvalidAmount, "%s金额最多保留%d位小数", action, moneyScale)
	}
	return nil
}

// KindOf 取出错误种类，非业务错误一律视为存储故障
func KindOf(err error) ErrorKind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindStorageFailure
}

// sentinel 种类对应的哨兵错误
func sentinel(kind ErrorKind) error {
	switch kind {
	case KindInvalidAmount:
		return ErrInvalidAmount
	case KindAccountNotFound:
		return ErrAccountNotFound
	case KindAccountNotActive:
		return ErrAccountNotActive
	case KindInsufficientFunds:
		return ErrInsufficientFunds
	case KindSameAccount:
		return ErrSameAccount
	default:
		return ErrStorageFailure
	}
}

// 资料类操作的错误，接口层按 errors.Is 映射 HTTP 状态码
var (
	ErrInvalidInput       = errors.New("参数不合法")
	ErrDuplicate          = errors.New("记录已存在")
	ErrInUse              = errors.New("记录仍被引用，不能删除")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NormalizePage 页码从 1 开始，每页条数限制在 1-100，pageSize 非法时取 defaultSize
//
// 服务层和接口层共用同一套规则
func NormalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
