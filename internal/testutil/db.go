// Package testutil 测试辅助：基于 sqlite 文件库的 gorm 连接和数据准备
package testutil

import (
	"path/filepath"
	"testing"

	"bankoffice/internal/infrastructure/database"
	"bankoffice/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试一个独立的库
//
// sqlite 没有行锁（FOR UPDATE 子句会被驱动忽略），连接池限制为 1，
// 让事务在连接池上串行，效果等同于行锁串行化
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bank.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedAccount 直接插入一个账户，绕过业务校验
func SeedAccount(t testing.TB, db *gorm.DB, number, balance, status string) *model.Account {
	t.Helper()

	account := &model.Account{
		Number:    number,
		ClientID:  1,
		Balance:   decimal.RequireFromString(balance),
		Status:    status,
		Type:      model.AccountTypeSavings,
		CreatedBy: 1,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return account
}

// Balance 读取账户当前余额
func Balance(t testing.TB, db *gorm.DB, number string) decimal.Decimal {
	t.Helper()

	var account model.Account
	if err := db.Where("number = ?", number).First(&account).Error; err != nil {
		t.Fatalf("load account %s: %v", number, err)
	}
	return account.Balance
}

// CountTransactions 统计账户流水条数
func CountTransactions(t testing.TB, db *gorm.DB, accountID int64) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&model.Transaction{}).Where("account_id = ?", accountID).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

// Dec 测试里构造金额的简写
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
