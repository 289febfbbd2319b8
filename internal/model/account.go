package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusBlocked   = "BLOCKED"
	AccountStatusSuspended = "SUSPENDED"
)

const (
	AccountTypeSavings  = "SAVINGS"
	AccountTypeChecking = "CHECKING"
	AccountTypeCredit   = "CREDIT"
)

// ValidAccountStatus 判断状态值是否合法
func ValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusActive, AccountStatusBlocked, AccountStatusSuspended:
		return true
	}
	return false
}

// ValidAccountType 判断账户类型是否合法
func ValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeCredit:
		return true
	}
	return false
}

// Account 银行账户表
// 余额只能由资金变动引擎（存款/取款/转账）修改，其它入口一律不允许改余额
type Account struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Number    string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"number"` // 对外账号，如 CTE100001
	ClientID  int64           `gorm:"index;not null" json:"client_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	Status    string          `gorm:"type:varchar(20);not null" json:"status"`
	Type      string          `gorm:"type:varchar(20);not null" json:"type"`
	CreatedBy int64           `gorm:"not null" json:"created_by"`
	UpdatedBy int64           `json:"updated_by"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

// IsActive 只有 ACTIVE 状态的账户允许资金变动
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// AccountUpdate 账户可修改字段，余额不在其中
type AccountUpdate struct {
	Status   *string `json:"status"`
	Type     *string `json:"type"`
	ClientID *int64  `json:"client_id"`
}

// Columns 只返回非空字段，nil 表示不修改
func (u AccountUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.Type != nil {
		cols["type"] = *u.Type
	}
	if u.ClientID != nil {
		cols["client_id"] = *u.ClientID
	}
	return cols
}
