package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("记录不存在")
	ErrEmptyUpdate    = errors.New("没有需要修改的字段")
)

// Patch 显式的修改结构体，只返回允许修改且有值的列
type Patch interface {
	Columns() map[string]interface{}
}

// RecordRepository 通用的增删改查，适用于客户、员工、网点、用户这类纯资料表
type RecordRepository[T any] struct {
	db *gorm.DB
}

func NewRecordRepository[T any](db *gorm.DB) *RecordRepository[T] {
	return &RecordRepository[T]{db: db}
}

func (r *RecordRepository[T]) Create(ctx context.Context, rec *T) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *RecordRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	var rec T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindOne 按单列精确查找，找不到返回 ErrRecordNotFound
func (r *RecordRepository[T]) FindOne(ctx context.Context, column string, value interface{}) (*T, error) {
	var rec T
	err := r.db.WithContext(ctx).Where(map[string]interface{}{column: value}).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RecordRepository[T]) List(ctx context.Context, page, pageSize int) ([]*T, int64, error) {
	var recs []*T
	var total int64

	query := r.db.WithContext(ctx).Model(new(T))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error

	return recs, total, err
}

func (r *RecordRepository[T]) Count(ctx context.Context, column string, value interface{}) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(map[string]interface{}{column: value}).Count(&n).Error
	return n, err
}

func (r *RecordRepository[T]) Update(ctx context.Context, id int64, patch Patch) (*T, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrEmptyUpdate
	}

	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *RecordRepository[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
