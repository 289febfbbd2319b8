package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"bankoffice/internal/config"
	"bankoffice/internal/infrastructure/metrics"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/pkg/idgen"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================================
// 资金引擎：存款、取款、转账
// ============================================================================
//
// 每个操作都是一个数据库事务：
//
//   1. SELECT ... FOR UPDATE 锁住要修改的账户行
//   2. 校验状态、计算新余额（余额检查和写入在同一把锁里完成）
//   3. 写余额、追加流水、写 outbox 消息
//   4. 提交；任何一步返回错误或 panic 都整体回滚
//
// 业务失败和存储故障都不会以 error 的形式离开这里，统一装进 Result。
// 引擎不认识角色，权限在接口层和控制台校验。
//
// ============================================================================

// Result 资金操作结果
type Result struct {
	Success         bool                 `json:"success"`
	Message         string               `json:"message"`
	Kind            ErrorKind            `json:"kind,omitempty"`
	Balance         decimal.Decimal      `json:"balance"`
	TransferGroupID string               `json:"transfer_group_id,omitempty"`
	Transactions    []*model.Transaction `json:"transactions,omitempty"`
}

// Err 失败时返回对应的哨兵错误，成功返回 nil
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return sentinel(r.Kind)
}

type DepositRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	OperatorID    int64
}

type WithdrawRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	OperatorID    int64
}

type TransferRequest struct {
	SourceNumber string
	DestNumber   string
	Amount       decimal.Decimal
	OperatorID   int64
}

type MovementService struct {
	db              *gorm.DB
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
	now             func() time.Time
}

func NewMovementService(db *gorm.DB, cfg *config.Config) *MovementService {
	return &MovementService{
		db:              db,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
		now:             time.Now,
	}
}

// Deposit 存款
func (s *MovementService) Deposit(ctx context.Context, req DepositRequest) *Result {
	start := time.Now()
	result := s.deposit(ctx, req)
	s.observe("deposit", start, result)
	return result
}

func (s *MovementService) deposit(ctx context.Context, req DepositRequest) *Result {
	if err := checkAmount(req.Amount, "存款"); err != nil {
		return failure(err)
	}

	var (
		balance decimal.Decimal
		record  *model.Transaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.lockActive(ctx, tx, req.AccountNumber, "存款")
		if err != nil {
			return err
		}

		balance = account.Balance.Add(req.Amount)
		now := s.now()
		if err := s.accountRepo.PersistBalance(ctx, tx, account.ID, balance, req.OperatorID, now); err != nil {
			return err
		}

		record = newRecord(model.TransactionKindDeposit, model.TransactionKindDeposit, account.ID, req.Amount, balance, req.OperatorID, "")
		if err := s.transactionRepo.Append(ctx, tx, record); err != nil {
			return err
		}

		return s.emit(ctx, tx, model.EventDepositCompleted, account.Number, movementEvent{
			AccountNumber: account.Number,
			Amount:        req.Amount,
			Balance:       balance,
			TransactionNo: record.TransactionNo,
			OccurredAt:    now,
		})
	})
	if err != nil {
		return s.fail("存款", req.AccountNumber, err)
	}

	log.Printf("[Movement] 存款成功: account=%s, amount=%s, balance=%s", req.AccountNumber, req.Amount.StringFixed(2), balance.StringFixed(2))
	return &Result{
		Success:      true,
		Message:      "存款成功，账户 " + req.AccountNumber + " 当前余额 " + balance.StringFixed(2),
		Balance:      balance,
		Transactions: []*model.Transaction{record},
	}
}

// Withdraw 取款，余额恰好取完（新余额为 0）是允许的
func (s *MovementService) Withdraw(ctx context.Context, req WithdrawRequest) *Result {
	start := time.Now()
	result := s.withdraw(ctx, req)
	s.observe("withdraw", start, result)
	return result
}

func (s *MovementService) withdraw(ctx context.Context, req WithdrawRequest) *Result {
	if err := checkAmount(req.Amount, "取款"); err != nil {
		return failure(err)
	}

	var (
		balance decimal.Decimal
		record  *model.Transaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.lockActive(ctx, tx, req.AccountNumber, "取款")
		if err != nil {
			return err
		}

		// 【关键点】余额检查必须在持有行锁之后，检查和扣减之间不能有空档
		balance = account.Balance.Sub(req.Amount)
		if balance.IsNegative() {
			return insufficient(account, req.Amount)
		}

		now := s.now()
		if err := s.accountRepo.PersistBalance(ctx, tx, account.ID, balance, req.OperatorID, now); err != nil {
			return err
		}

		record = newRecord(model.TransactionKindWithdrawal, model.TransactionKindWithdrawal, account.ID, req.Amount, balance, req.OperatorID, "")
		if err := s.transactionRepo.Append(ctx, tx, record); err != nil {
			return err
		}

		return s.emit(ctx, tx, model.EventWithdrawalCompleted, account.Number, movementEvent{
			AccountNumber: account.Number,
			Amount:        req.Amount,
			Balance:       balance,
			TransactionNo: record.TransactionNo,
			OccurredAt:    now,
		})
	})
	if err != nil {
		return s.fail("取款", req.AccountNumber, err)
	}

	log.Printf("[Movement] 取款成功: account=%s, amount=%s, balance=%s", req.AccountNumber, req.Amount.StringFixed(2), balance.StringFixed(2))
	return &Result{
		Success:      true,
		Message:      "取款成功，账户 " + req.AccountNumber + " 当前余额 " + balance.StringFixed(2),
		Balance:      balance,
		Transactions: []*model.Transaction{record},
	}
}

// Transfer 转账
//
// 【关键点】两个账户按 ID 升序加锁，A→B 和 B→A 同时发生时不会死锁；
// 两条流水共享一个 TransferGroupID
func (s *MovementService) Transfer(ctx context.Context, req TransferRequest) *Result {
	start := time.Now()
	result := s.transfer(ctx, req)
	s.observe("transfer", start, result)
	return result
}

func (s *MovementService) transfer(ctx context.Context, req TransferRequest) *Result {
	if err := checkAmount(req.Amount, "转账"); err != nil {
		return failure(err)
	}
	if req.SourceNumber == req.DestNumber {
		return failure(ErrSameAccount)
	}

	var (
		balance decimal.Decimal
		debit   *model.Transaction
		credit  *model.Transaction
	)
	groupID := uuid.NewString()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先用账号换出 ID，再按 ID 顺序加锁
		src, err := s.accountRepo.GetByNumber(ctx, tx, req.SourceNumber)
		if err != nil {
			return notFound(err, "转出账户 %s 不存在", req.SourceNumber)
		}
		dst, err := s.accountRepo.GetByNumber(ctx, tx, req.DestNumber)
		if err != nil {
			return notFound(err, "转入账户 %s 不存在", req.DestNumber)
		}

		locked, err := s.accountRepo.LockByIDs(ctx, tx, src.ID, dst.ID)
		if err != nil {
			return notFound(err, "账户不存在")
		}
		src, dst = locked[src.ID], locked[dst.ID]

		if !src.IsActive() {
			return businessErr(KindAccountNotActive, "转出账户 %s 状态为 %s，不允许转账", src.Number, src.Status)
		}
		if !dst.IsActive() {
			return businessErr(KindAccountNotActive, "转入账户 %s 状态为 %s，不允许转账", dst.Number, dst.Status)
		}

		balance = src.Balance.Sub(req.Amount)
		if balance.IsNegative() {
			return insufficient(src, req.Amount)
		}
		destBalance := dst.Balance.Add(req.Amount)

		now := s.now()
		if err := s.accountRepo.PersistBalance(ctx, tx, src.ID, balance, req.OperatorID, now); err != nil {
			return err
		}
		if err := s.accountRepo.PersistBalance(ctx, tx, dst.ID, destBalance, req.OperatorID, now); err != nil {
			return err
		}

		debit = newRecord(model.TransactionKindTransferDebit, model.TransferDebitLabel(dst.Number), src.ID, req.Amount, balance, req.OperatorID, groupID)
		if err := s.transactionRepo.Append(ctx, tx, debit); err != nil {
			return err
		}
		credit = newRecord(model.TransactionKindTransferCredit, model.TransferCreditLabel(src.Number), dst.ID, req.Amount, destBalance, req.OperatorID, groupID)
		if err := s.transactionRepo.Append(ctx, tx, credit); err != nil {
			return err
		}

		return s.emit(ctx, tx, model.EventTransferCompleted, src.Number, movementEvent{
			AccountNumber:   src.Number,
			Counterparty:    dst.Number,
			Amount:          req.Amount,
			Balance:         balance,
			TransactionNo:   debit.TransactionNo,
			TransferGroupID: groupID,
			OccurredAt:      now,
		})
	})
	if err != nil {
		return s.fail("转账", req.SourceNumber, err)
	}

	log.Printf("[Movement] 转账成功: from=%s, to=%s, amount=%s, group=%s", req.SourceNumber, req.DestNumber, req.Amount.StringFixed(2), groupID)
	return &Result{
		Success:         true,
		Message:         "转账成功，账户 " + req.SourceNumber + " 当前余额 " + balance.StringFixed(2),
		Balance:         balance,
		TransferGroupID: groupID,
		Transactions:    []*model.Transaction{debit, credit},
	}
}

// lockActive 锁住账户并校验状态
func (s *MovementService) lockActive(ctx context.Context, tx *gorm.DB, number, action string) (*model.Account, error) {
	account, err := s.accountRepo.GetByNumberForUpdate(ctx, tx, number)
	if err != nil {
		return nil, notFound(err, "账户 %s 不存在", number)
	}
	if !account.IsActive() {
		return nil, businessErr(KindAccountNotActive, "账户 %s 状态为 %s，不允许%s", number, account.Status, action)
	}
	return account, nil
}

// movementEvent outbox 消息体
type movementEvent struct {
	AccountNumber   string          `json:"account_number"`
	Counterparty    string          `json:"counterparty,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	TransactionNo   string          `json:"transaction_no"`
	TransferGroupID string          `json:"transfer_group_id,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// emit 写 outbox，和余额变动同一个事务，提交后由 OutboxSender 投递
func (s *MovementService) emit(ctx context.Context, tx *gorm.DB, eventType, key string, event movementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
		MessageKey: key,
		EventType:  eventType,
		Topic:      s.cfg.Kafka.Topic.Movement,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	})
}

// fail 事务已回滚，把错误转换成失败结果；存储故障只记日志，不把细节透给调用方
func (s *MovementService) fail(action, number string, err error) *Result {
	var be *BusinessError
	if errors.As(err, &be) {
		log.Printf("[Movement] %s被拒绝: account=%s, kind=%s, reason=%s", action, number, be.Kind, be.Message)
		return failure(be)
	}
	log.Printf("[Movement] %s失败，事务已回滚: account=%s, err=%v", action, number, err)
	return failure(businessErr(KindStorageFailure, "数据库错误，%s未生效，请稍后重试", action))
}

func (s *MovementService) observe(operation string, start time.Time, result *Result) {
	outcome := "ok"
	if !result.Success {
		outcome = string(result.Kind)
	}
	metrics.MovementsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.MovementDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func failure(be *BusinessError) *Result {
	return &Result{Success: false, Message: be.Message, Kind: be.Kind}
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repository.ErrAccountNotFound) {
		return businessErr(KindAccountNotFound, format, args...)
	}
	return err
}

func insufficient(account *model.Account, amount decimal.Decimal) *BusinessError {
	return businessErr(KindInsufficientFunds, "余额不足：账户 %s 当前余额 %s，需要 %s",
		account.Number, account.Balance.StringFixed(2), amount.StringFixed(2))
}

func newRecord(kind, label string, accountID int64, amount, balanceAfter decimal.Decimal, operatorID int64, groupID string) *model.Transaction {
	return &model.Transaction{
		TransactionNo:   idgen.GenerateTransactionNo(),
		Kind:            kind,
		Type:            label,
		Amount:          amount,
		BalanceAfter:    balanceAfter,
		AccountID:       accountID,
		TransferGroupID: groupID,
		CreatedBy:       operatorID,
	}
}
