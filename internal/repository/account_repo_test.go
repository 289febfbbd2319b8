package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"bankoffice/internal/model"
	"bankoffice/internal/testutil"

	"gorm.io/gorm"
)

func TestGetByNumber(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	seeded := testutil.SeedAccount(t, db, "CTE100001", "1000.00", model.AccountStatusActive)

	got, err := repo.GetByNumber(context.Background(), nil, "CTE100001")
	if err != nil {
		t.Fatalf("GetByNumber err=%v", err)
	}
	if got.ID != seeded.ID || !got.Balance.Equal(testutil.Dec("1000")) {
		t.Fatalf("got=%+v", got)
	}

	if _, err := repo.GetByNumber(context.Background(), nil, "NOPE"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestLockByIDsReturnsEveryRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	a := testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)
	b := testutil.SeedAccount(t, db, "CTE100002", "20", model.AccountStatusActive)

	err := db.Transaction(func(tx *gorm.DB) error {
		// 调用方传入的顺序与 ID 顺序相反
		locked, err := repo.LockByIDs(context.Background(), tx, b.ID, a.ID)
		if err != nil {
			return err
		}
		if len(locked) != 2 || locked[a.ID].Number != "CTE100001" || locked[b.ID].Number != "CTE100002" {
			t.Fatalf("locked=%v", locked)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx err=%v", err)
	}
}

func TestLockByIDsMissingRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	a := testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.LockByIDs(context.Background(), tx, a.ID, 999)
		return err
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestPersistBalanceRollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	a := testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.PersistBalance(context.Background(), tx, a.ID, testutil.Dec("99"), 7, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if got := testutil.Balance(t, db, "CTE100001"); !got.Equal(testutil.Dec("10")) {
		t.Fatalf("balance=%s want=10 after rollback", got)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.PersistBalance(context.Background(), tx, a.ID, testutil.Dec("99"), 7, time.Now())
	})
	if err != nil {
		t.Fatalf("PersistBalance err=%v", err)
	}
	reloaded, _ := repo.GetByID(context.Background(), a.ID)
	if !reloaded.Balance.Equal(testutil.Dec("99")) || reloaded.UpdatedBy != 7 {
		t.Fatalf("reloaded=%+v", reloaded)
	}
}

func TestUpdateNeverTouchesBalance(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	a := testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)

	blocked := model.AccountStatusBlocked
	got, err := repo.Update(context.Background(), a.ID, model.AccountUpdate{Status: &blocked}, 3)
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if got.Status != model.AccountStatusBlocked || !got.Balance.Equal(testutil.Dec("10")) || got.UpdatedBy != 3 {
		t.Fatalf("got=%+v", got)
	}

	if _, err := repo.Update(context.Background(), a.ID, model.AccountUpdate{}, 3); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("want ErrEmptyUpdate, got %v", err)
	}
	if _, err := repo.Update(context.Background(), 999, model.AccountUpdate{Status: &blocked}, 3); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	transRepo := NewTransactionRepository(db)
	used := testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)
	unused := testutil.SeedAccount(t, db, "CTE100002", "0", model.AccountStatusActive)

	err := db.Transaction(func(tx *gorm.DB) error {
		return transRepo.Append(context.Background(), tx, &model.Transaction{
			TransactionNo: "TXN1",
			Kind:          model.TransactionKindDeposit,
			Type:          model.TransactionKindDeposit,
			Amount:        testutil.Dec("10"),
			BalanceAfter:  testutil.Dec("10"),
			AccountID:     used.ID,
			CreatedBy:     1,
		})
	})
	if err != nil {
		t.Fatalf("append err=%v", err)
	}

	if err := repo.Delete(context.Background(), used.ID); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("want ErrAccountInUse, got %v", err)
	}
	if err := repo.Delete(context.Background(), unused.ID); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := repo.Delete(context.Background(), unused.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestListAndListByClient(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	testutil.SeedAccount(t, db, "CTE100001", "1", model.AccountStatusActive)
	testutil.SeedAccount(t, db, "CTE100002", "2", model.AccountStatusActive)
	testutil.SeedAccount(t, db, "CTE100003", "3", model.AccountStatusActive)

	page, total, err := repo.List(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if total != 3 || len(page) != 1 || page[0].Number != "CTE100003" {
		t.Fatalf("total=%d page=%v", total, page)
	}

	owned, err := repo.ListByClientID(context.Background(), 1)
	if err != nil || len(owned) != 3 {
		t.Fatalf("ListByClientID len=%d err=%v", len(owned), err)
	}
}
