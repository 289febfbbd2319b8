package repository

import (
	"context"
	"errors"

	"bankoffice/internal/model"

	"gorm.io/gorm"
)

// TransactionRepository 流水日志，只有追加和查询，没有修改入口
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append 追加一条流水，必须和对应的余额变动在同一个事务里
func (r *TransactionRepository) Append(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	return tx.WithContext(ctx).Create(trans).Error
}

// GetByTransactionNo 按流水号查询，不存在返回 ErrRecordNotFound
func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	var trans model.Transaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &trans, nil
}

// ListByAccountID 按时间倒序分页查询
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	var transactions []*model.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("account_id = ?", accountID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// ListByTransferGroup 查询一笔转账的两条腿，借方在前
func (r *TransactionRepository) ListByTransferGroup(ctx context.Context, groupID string) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("transfer_group_id = ?", groupID).
		Order("id ASC").
		Find(&transactions).Error
	return transactions, err
}
