package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 交易类型常量
// ============================================================================

const (
	TransactionKindDeposit        = "DEPOSIT"
	TransactionKindWithdrawal     = "WITHDRAWAL"
	TransactionKindTransferDebit  = "TRANSFER_DEBIT"
	TransactionKindTransferCredit = "TRANSFER_CREDIT"
)

// TransferDebitLabel 转出腿的展示类型，保留对方账号便于阅读
func TransferDebitLabel(destNumber string) string {
	return fmt.Sprintf("TRANSFER DEBIT TO %s", destNumber)
}

// TransferCreditLabel 转入腿的展示类型
func TransferCreditLabel(sourceNumber string) string {
	return fmt.Sprintf("TRANSFER CREDIT FROM %s", sourceNumber)
}

// ============================================================================
// 账户流水实体
// ============================================================================

// Transaction 账户流水表
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除
// 2. 每一次余额变动对应一条流水，转账产生两条
// 3. 转账的两条流水通过 TransferGroupID 关联，不依赖 Type 文本
type Transaction struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	Kind            string          `gorm:"type:varchar(20);not null" json:"kind"`
	Type            string          `gorm:"type:varchar(64);not null" json:"type"`            // 展示用类型，如 TRANSFER DEBIT TO CTE100002
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`        // 始终为正数，方向由 Kind 决定
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance_after"` // 变动后余额
	AccountID       int64           `gorm:"index;not null" json:"account_id"`
	TransferGroupID string          `gorm:"type:varchar(36);index" json:"transfer_group_id,omitempty"` // 转账两条腿共享
	CreatedBy       int64           `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "account_transaction"
}

// IsDebit 是否为出账
func (t *Transaction) IsDebit() bool {
	return t.Kind == TransactionKindWithdrawal || t.Kind == TransactionKindTransferDebit
}
