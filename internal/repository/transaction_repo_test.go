package repository

import (
	"context"
	"errors"
	"testing"

	"bankoffice/internal/model"
	"bankoffice/internal/testutil"

	"gorm.io/gorm"
)

func appendAll(t *testing.T, db *gorm.DB, records ...*model.Transaction) {
	t.Helper()
	repo := NewTransactionRepository(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, r := range records {
			if err := repo.Append(context.Background(), tx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func record(no string, kind string, accountID int64, group string) *model.Transaction {
	return &model.Transaction{
		TransactionNo:   no,
		Kind:            kind,
		Type:            kind,
		Amount:          testutil.Dec("5"),
		BalanceAfter:    testutil.Dec("5"),
		AccountID:       accountID,
		TransferGroupID: group,
		CreatedBy:       1,
	}
}

func TestListByAccountIDNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTransactionRepository(db)

	appendAll(t, db, record("TXN1", model.TransactionKindDeposit, 1, ""))
	appendAll(t, db, record("TXN2", model.TransactionKindWithdrawal, 1, ""))
	appendAll(t, db, record("TXN3", model.TransactionKindDeposit, 2, ""))
	appendAll(t, db, record("TXN4", model.TransactionKindDeposit, 1, ""))

	list, total, err := repo.ListByAccountID(context.Background(), 1, 1, 10)
	if err != nil {
		t.Fatalf("ListByAccountID err=%v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("total=%d len=%d", total, len(list))
	}
	want := []string{"TXN4", "TXN2", "TXN1"}
	for i, no := range want {
		if list[i].TransactionNo != no {
			t.Fatalf("list[%d]=%s want=%s", i, list[i].TransactionNo, no)
		}
	}
}

func TestListByTransferGroup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTransactionRepository(db)

	appendAll(t, db,
		record("TXN1", model.TransactionKindTransferDebit, 1, "g-1"),
		record("TXN2", model.TransactionKindTransferCredit, 2, "g-1"),
		record("TXN3", model.TransactionKindDeposit, 1, ""),
	)

	legs, err := repo.ListByTransferGroup(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("ListByTransferGroup err=%v", err)
	}
	if len(legs) != 2 || !legs[0].IsDebit() || legs[1].IsDebit() {
		t.Fatalf("legs=%v", legs)
	}

	got, err := repo.GetByTransactionNo(context.Background(), "TXN3")
	if err != nil || got == nil || got.AccountID != 1 {
		t.Fatalf("GetByTransactionNo got=%v err=%v", got, err)
	}
	if _, err := repo.GetByTransactionNo(context.Background(), "NOPE"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing: want ErrRecordNotFound, got %v", err)
	}
}
