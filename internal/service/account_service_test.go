package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/internal/testutil"
)

func seedClient(t *testing.T, svc *ClientService, document string, userID int64) *model.Client {
	t.Helper()
	c, err := svc.CreateClient(context.Background(), &model.Client{Name: "Ana Torres", Document: document, UserID: userID})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return c
}

func TestOpenAccount(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAccountService(db, testConfig())
	client := seedClient(t, NewClientService(db), "0102030405", 0)
	ctx := context.Background()

	acc, err := svc.OpenAccount(ctx, &OpenAccountRequest{ClientID: client.ID, Type: model.AccountTypeSavings, InitialBalance: testutil.Dec("1000.00")}, 1)
	if err != nil {
		t.Fatalf("OpenAccount err=%v", err)
	}
	if !strings.HasPrefix(acc.Number, "CTE") || len(acc.Number) != 12 || acc.Status != model.AccountStatusActive {
		t.Fatalf("acc=%+v", acc)
	}

	_, err = svc.OpenAccount(ctx, &OpenAccountRequest{Number: "CTE100001", ClientID: client.ID, Type: model.AccountTypeChecking}, 1)
	if err != nil {
		t.Fatalf("OpenAccount with number err=%v", err)
	}
	if _, err := svc.OpenAccount(ctx, &OpenAccountRequest{Number: "CTE100001", ClientID: client.ID, Type: model.AccountTypeChecking}, 1); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	bad := []*OpenAccountRequest{
		{ClientID: client.ID, Type: "GOLD"},
		{ClientID: client.ID, Type: model.AccountTypeSavings, InitialBalance: testutil.Dec("-1")},
		{ClientID: client.ID, Type: model.AccountTypeSavings, InitialBalance: testutil.Dec("10.005")},
		{ClientID: 999, Type: model.AccountTypeSavings},
	}
	for i, req := range bad {
		if _, err := svc.OpenAccount(ctx, req, 1); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: want ErrInvalidInput, got %v", i, err)
		}
	}

	owned, err := svc.ListClientAccounts(ctx, client.ID)
	if err != nil || len(owned) != 2 {
		t.Fatalf("owned=%d err=%v", len(owned), err)
	}
}

func TestUpdateAccountValidates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAccountService(db, testConfig())
	testutil.SeedAccount(t, db, "CTE100001", "10", model.AccountStatusActive)
	ctx := context.Background()

	status := "CLOSED"
	if _, err := svc.UpdateAccount(ctx, "CTE100001", model.AccountUpdate{Status: &status}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}

	status = model.AccountStatusSuspended
	acc, err := svc.UpdateAccount(ctx, "CTE100001", model.AccountUpdate{Status: &status}, 1)
	if err != nil || acc.Status != model.AccountStatusSuspended {
		t.Fatalf("acc=%+v err=%v", acc, err)
	}

	if _, err := svc.UpdateAccount(ctx, "NOPE", model.AccountUpdate{Status: &status}, 1); !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestHistoryAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testConfig()
	accounts := NewAccountService(db, cfg)
	movements := NewMovementService(db, cfg)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "CTE100001", "100", model.AccountStatusActive)
	testutil.SeedAccount(t, db, "CTE100002", "0", model.AccountStatusActive)
	testutil.SeedAccount(t, db, "CTE100003", "0", model.AccountStatusActive)

	movements.Deposit(ctx, DepositRequest{AccountNumber: "CTE100001", Amount: testutil.Dec("1")})
	movements.Withdraw(ctx, WithdrawRequest{AccountNumber: "CTE100001", Amount: testutil.Dec("2")})
	res := movements.Transfer(ctx, TransferRequest{SourceNumber: "CTE100001", DestNumber: "CTE100002", Amount: testutil.Dec("3")})

	list, total, err := accounts.History(ctx, "CTE100001", 1, 2)
	if err != nil {
		t.Fatalf("History err=%v", err)
	}
	if total != 3 || len(list) != 2 || list[0].Kind != model.TransactionKindTransferDebit || list[1].Kind != model.TransactionKindWithdrawal {
		t.Fatalf("total=%d list=%v", total, list)
	}

	legs, err := accounts.TransferLegs(ctx, res.TransferGroupID)
	if err != nil || len(legs) != 2 {
		t.Fatalf("legs=%v err=%v", legs, err)
	}
	if _, err := accounts.TransferLegs(ctx, "missing"); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}

	if err := accounts.DeleteAccount(ctx, "CTE100002"); !errors.Is(err, ErrInUse) {
		t.Fatalf("want ErrInUse, got %v", err)
	}
	if err := accounts.DeleteAccount(ctx, "CTE100003"); err != nil {
		t.Fatalf("DeleteAccount err=%v", err)
	}
	if _, err := accounts.GetAccount(ctx, "CTE100003"); !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size, def    int
		wantPage, wantSize int
	}{
		{0, 0, 15, 1, 15},
		{3, 50, 15, 3, 50},
		{2, 500, 15, 2, 100},
		{-1, -1, 0, 1, 20},
	}
	for _, tc := range cases {
		page, size := NormalizePage(tc.page, tc.size, tc.def)
		if page != tc.wantPage || size != tc.wantSize {
			t.Errorf("NormalizePage(%d,%d,%d)=(%d,%d) want (%d,%d)", tc.page, tc.size, tc.def, page, size, tc.wantPage, tc.wantSize)
		}
	}
}
