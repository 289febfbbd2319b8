package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bankoffice/internal/config"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountService 开户、查询、状态维护
//
// 余额只能通过 MovementService 变动，这里唯一写余额的地方是开户时的初始余额
type AccountService struct {
	db              *gorm.DB
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	clientRepo      *repository.RecordRepository[model.Client]
}

func NewAccountService(db *gorm.DB, cfg *config.Config) *AccountService {
	return &AccountService{
		db:              db,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		clientRepo:      repository.NewRecordRepository[model.Client](db),
	}
}

// OpenAccountRequest 开户请求，Number 为空时自动生成
type OpenAccountRequest struct {
	Number         string          `json:"number"`
	ClientID       int64           `json:"client_id" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

func (s *AccountService) OpenAccount(ctx context.Context, req *OpenAccountRequest, operatorID int64) (*model.Account, error) {
	if !model.ValidAccountType(req.Type) {
		return nil, invalid("不支持的账户类型 %s", req.Type)
	}
	if req.InitialBalance.IsNegative() {
		return nil, invalid("初始余额不能为负数")
	}
	if !req.InitialBalance.Equal(req.InitialBalance.Round(moneyScale)) {
		return nil, invalid("初始余额最多保留%d位小数", moneyScale)
	}
	if _, err := s.clientRepo.Get(ctx, req.ClientID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, invalid("客户 %d 不存在", req.ClientID)
		}
		return nil, err
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = idgen.GenerateAccountNumber(s.cfg.Business.AccountNumberPrefix)
	}

	account := &model.Account{
		Number:    number,
		ClientID:  req.ClientID,
		Balance:   req.InitialBalance,
		Status:    model.AccountStatusActive,
		Type:      req.Type,
		CreatedBy: operatorID,
		UpdatedBy: operatorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.accountRepo.GetByNumber(ctx, tx, number); err == nil {
			return fmt.Errorf("%w: 账号 %s", ErrDuplicate, number)
		} else if !errors.Is(err, repository.ErrAccountNotFound) {
			return err
		}
		return s.accountRepo.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Account] 开户成功: number=%s, client=%d, type=%s, balance=%s", account.Number, account.ClientID, account.Type, account.Balance.StringFixed(2))
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	return s.accountRepo.GetByNumber(ctx, nil, number)
}

func (s *AccountService) ListAccounts(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, s.cfg.Business.DefaultPageSize)
	return s.accountRepo.List(ctx, page, pageSize)
}

func (s *AccountService) ListClientAccounts(ctx context.Context, clientID int64) ([]*model.Account, error) {
	return s.accountRepo.ListByClientID(ctx, clientID)
}

// History 账户流水，最新的在前
func (s *AccountService) History(ctx context.Context, number string, page, pageSize int) ([]*model.Transaction, int64, error) {
	account, err := s.accountRepo.GetByNumber(ctx, nil, number)
	if err != nil {
		return nil, 0, err
	}
	page, pageSize = NormalizePage(page, pageSize, s.cfg.Business.DefaultPageSize)
	return s.transactionRepo.ListByAccountID(ctx, account.ID, page, pageSize)
}

// GetTransaction 按流水号查询单条流水
func (s *AccountService) GetTransaction(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	return s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
}

// TransferLegs 按转账组号查询两条流水
func (s *AccountService) TransferLegs(ctx context.Context, groupID string) ([]*model.Transaction, error) {
	legs, err := s.transactionRepo.ListByTransferGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, repository.ErrRecordNotFound
	}
	return legs, nil
}

// UpdateAccount 修改状态、类型或归属客户
func (s *AccountService) UpdateAccount(ctx context.Context, number string, update model.AccountUpdate, operatorID int64) (*model.Account, error) {
	if update.Status != nil && !model.ValidAccountStatus(*update.Status) {
		return nil, invalid("不支持的账户状态 %s", *update.Status)
	}
	if update.Type != nil && !model.ValidAccountType(*update.Type) {
		return nil, invalid("不支持的账户类型 %s", *update.Type)
	}
	if update.ClientID != nil {
		if _, err := s.clientRepo.Get(ctx, *update.ClientID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return nil, invalid("客户 %d 不存在", *update.ClientID)
			}
			return nil, err
		}
	}

	account, err := s.accountRepo.GetByNumber(ctx, nil, number)
	if err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.Update(ctx, account.ID, update, operatorID)
	if err != nil {
		return nil, err
	}
	log.Printf("[Account] 账户已修改: number=%s, status=%s, type=%s, operator=%d", updated.Number, updated.Status, updated.Type, operatorID)
	return updated, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, number string) error {
	account, err := s.accountRepo.GetByNumber(ctx, nil, number)
	if err != nil {
		return err
	}
	if err := s.accountRepo.Delete(ctx, account.ID); err != nil {
		if errors.Is(err, repository.ErrAccountInUse) {
			return fmt.Errorf("%w: 账户 %s 已有流水", ErrInUse, number)
		}
		return err
	}
	log.Printf("[Account] 账户已删除: number=%s", number)
	return nil
}
