package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"bankoffice/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound = errors.New("账户不存在")
	ErrAccountInUse    = errors.New("账户存在流水记录，不能删除")
)

// AccountRepository 账户台账
//
// 带 tx 参数的方法必须在同一个事务里调用，tx 为 nil 时使用默认连接
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	return r.conn(tx).WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*model.Account, error) {
	var account model.Account
	err := r.conn(tx).WithContext(ctx).Where("number = ?", number).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByNumberForUpdate SELECT ... FOR UPDATE，行锁一直持有到事务提交或回滚
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx *gorm.DB, number string) (*model.Account, error) {
	var account model.Account
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ?", number).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// LockByIDs 按 ID 升序逐行加锁
//
// 【关键点】所有调用方都按同一顺序加锁，两笔方向相反的转账不会互相等待对方手里的锁
func (r *AccountRepository) LockByIDs(ctx context.Context, tx *gorm.DB, ids ...int64) (map[int64]*model.Account, error) {
	ordered := make([]int64, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	locked := make(map[int64]*model.Account, len(ordered))
	for _, id := range ordered {
		if _, ok := locked[id]; ok {
			continue
		}
		var account model.Account
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		locked[id] = &account
	}
	return locked, nil
}

// PersistBalance 写入新余额，只允许资金引擎在持有行锁的事务内调用
func (r *AccountRepository) PersistBalance(ctx context.Context, tx *gorm.DB, accountID int64, balance decimal.Decimal, editorID int64, at time.Time) error {
	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_by": editorID,
			"updated_at": at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error) {
	var accounts []*model.Account
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Account{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&accounts).Error

	return accounts, total, err
}

func (r *AccountRepository) ListByClientID(ctx context.Context, clientID int64) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

// Update 管理字段修改（状态、类型、归属客户），不会触碰余额
func (r *AccountRepository) Update(ctx context.Context, id int64, update model.AccountUpdate, editorID int64) (*model.Account, error) {
	cols := update.Columns()
	if len(cols) == 0 {
		return nil, ErrEmptyUpdate
	}
	cols["updated_by"] = editorID

	// MySQL 的 RowsAffected 不统计值未变化的行，先确认存在
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(cols).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete 管理员操作，被流水引用的账户不允许物理删除
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.Transaction{}).Where("account_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrAccountInUse
		}

		result := tx.Where("id = ?", id).Delete(&model.Account{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}
