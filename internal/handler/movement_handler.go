package handler

import (
	"log"
	"net/http"
	"time"

	"bankoffice/internal/infrastructure/lock"
	"bankoffice/internal/service"
	"bankoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ============================================================
// 资金操作接口
// ============================================================

// MovementRequest 存款、取款请求
// amount 支持数字或字符串，建议传字符串避免浮点误差，如 "500.00"
type MovementRequest struct {
	AccountNumber string          `json:"account_number" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	RequestID     string          `json:"request_id"` // 可选，同一 request_id 在防重窗口内只执行一次
}

type TransferRequest struct {
	SourceNumber string          `json:"source_number" binding:"required"`
	DestNumber   string          `json:"dest_number" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	RequestID    string          `json:"request_id"`
}

// Deposit 存款
// POST /api/v1/movement/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if !h.checkOwnership(c, req.AccountNumber) {
		return
	}

	h.guarded(c, req.RequestID, func() *service.Result {
		return h.movementService.Deposit(c.Request.Context(), service.DepositRequest{
			AccountNumber: req.AccountNumber,
			Amount:        req.Amount,
			OperatorID:    currentUser(c).ID,
		})
	})
}

// Withdraw 取款
// POST /api/v1/movement/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if !h.checkOwnership(c, req.AccountNumber) {
		return
	}

	h.guarded(c, req.RequestID, func() *service.Result {
		return h.movementService.Withdraw(c.Request.Context(), service.WithdrawRequest{
			AccountNumber: req.AccountNumber,
			Amount:        req.Amount,
			OperatorID:    currentUser(c).ID,
		})
	})
}

// Transfer 转账，客户只需要拥有转出账户
// POST /api/v1/movement/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if !h.checkOwnership(c, req.SourceNumber) {
		return
	}

	h.guarded(c, req.RequestID, func() *service.Result {
		return h.movementService.Transfer(c.Request.Context(), service.TransferRequest{
			SourceNumber: req.SourceNumber,
			DestNumber:   req.DestNumber,
			Amount:       req.Amount,
			OperatorID:   currentUser(c).ID,
		})
	})
}

// guarded 带 request_id 时先拿防重锁再执行
//
// 【关键点】成功后不释放锁，窗口期内的重复提交直接拒绝；
// 失败时释放，客户端可以用同一个 request_id 重试
func (h *Handler) guarded(c *gin.Context, requestID string, run func() *service.Result) {
	if requestID == "" || h.rdb == nil {
		writeResult(c, run())
		return
	}

	window := time.Duration(h.cfg.Business.RequestLockSeconds) * time.Second
	requestLock := lock.NewRequestLock(h.rdb, requestID, window)

	ok, err := requestLock.TryLock(c.Request.Context())
	if err != nil {
		log.Printf("[Movement] 获取防重锁失败: request_id=%s, err=%v", requestID, err)
		response.ServerError(c, "系统繁忙，请稍后重试")
		return
	}
	if !ok {
		response.Error(c, http.StatusConflict, response.CodeDuplicateRequest, "重复的请求，request_id="+requestID, nil)
		return
	}

	result := run()
	if !result.Success {
		if err := requestLock.Unlock(c.Request.Context()); err != nil {
			log.Printf("[Movement] 释放防重锁失败: request_id=%s, err=%v", requestID, err)
		}
	}
	writeResult(c, result)
}

func writeResult(c *gin.Context, result *service.Result) {
	if result.Success {
		response.Success(c, result)
		return
	}
	status, code := movementStatus(result.Kind)
	response.Error(c, status, code, result.Message, result)
}
