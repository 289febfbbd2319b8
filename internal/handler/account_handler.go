package handler

import (
	"bankoffice/internal/auth"
	"bankoffice/internal/model"
	"bankoffice/internal/service"
	"bankoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 账户接口
// ============================================================

// ListAccounts 账户列表，客户只能看到自己名下的账户
// GET /api/v1/accounts?page=1&page_size=20
func (h *Handler) ListAccounts(c *gin.Context) {
	user := currentUser(c)
	if auth.RestrictedToOwnAccounts(user.Role) {
		profile, err := h.ownProfile(c, user)
		if err != nil {
			writeError(c, err)
			return
		}
		accounts := []*model.Account{}
		if profile != nil {
			if accounts, err = h.accountService.ListClientAccounts(c.Request.Context(), profile.ID); err != nil {
				writeError(c, err)
				return
			}
		}
		response.Page(c, accounts, int64(len(accounts)), 1, len(accounts))
		return
	}

	page, pageSize := h.pageQuery(c)
	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, accounts, total, page, pageSize)
}

// GetAccount 账户详情
// GET /api/v1/accounts/:number
func (h *Handler) GetAccount(c *gin.Context) {
	number := c.Param("number")
	if !h.checkOwnership(c, number) {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), number)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, account)
}

// OpenAccount 开户
// POST /api/v1/accounts
func (h *Handler) OpenAccount(c *gin.Context) {
	var req service.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	account, err := h.accountService.OpenAccount(c.Request.Context(), &req, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, account)
}

// UpdateAccount 修改状态、类型、归属客户；余额不在可修改字段里
// PATCH /api/v1/accounts/:number
func (h *Handler) UpdateAccount(c *gin.Context) {
	var update model.AccountUpdate
	if !bindStrict(c, &update) {
		return
	}
	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("number"), update, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, account)
}

// DeleteAccount 删除没有流水的账户
// DELETE /api/v1/accounts/:number
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("number")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "账户已删除"})
}

// ListTransactions 账户流水，最新的在前
// GET /api/v1/accounts/:number/transactions?page=1&page_size=20
func (h *Handler) ListTransactions(c *gin.Context) {
	number := c.Param("number")
	if !h.checkOwnership(c, number) {
		return
	}

	page, pageSize := h.pageQuery(c)
	list, total, err := h.accountService.History(c.Request.Context(), number, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// GetTransfer 按转账组号查询两条流水，客户必须拥有其中一方账户
// GET /api/v1/transfers/:group_id
func (h *Handler) GetTransfer(c *gin.Context) {
	legs, err := h.accountService.TransferLegs(c.Request.Context(), c.Param("group_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	user := currentUser(c)
	if auth.RestrictedToOwnAccounts(user.Role) {
		profile, err := h.ownProfile(c, user)
		if err != nil {
			writeError(c, err)
			return
		}
		if !h.ownsAnyLeg(c, profile, legs) {
			response.Forbidden(c, "只能查看本人相关的转账")
			return
		}
	}
	response.Success(c, legs)
}

// GetTransaction 按流水号查询单条流水，客户只能查自己账户的流水
// GET /api/v1/transactions/:no
func (h *Handler) GetTransaction(c *gin.Context) {
	trans, err := h.accountService.GetTransaction(c.Request.Context(), c.Param("no"))
	if err != nil {
		writeError(c, err)
		return
	}

	user := currentUser(c)
	if auth.RestrictedToOwnAccounts(user.Role) {
		profile, err := h.ownProfile(c, user)
		if err != nil {
			writeError(c, err)
			return
		}
		if !h.ownsAnyLeg(c, profile, []*model.Transaction{trans}) {
			response.Forbidden(c, "只能查看本人账户的流水")
			return
		}
	}
	response.Success(c, trans)
}

// ListOutbox 按状态查看事件消息，默认 FAILED
// GET /api/v1/outbox?status=FAILED&page=1&page_size=20
func (h *Handler) ListOutbox(c *gin.Context) {
	page, pageSize := h.pageQuery(c)
	list, total, err := h.outboxService.ListMessages(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// RequeueOutbox 补发一条 FAILED 消息
// POST /api/v1/outbox/:id/requeue
func (h *Handler) RequeueOutbox(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.outboxService.Requeue(c.Request.Context(), id, currentUser(c).ID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "消息已重新入队"})
}

func (h *Handler) ownsAnyLeg(c *gin.Context, profile *model.Client, legs []*model.Transaction) bool {
	if profile == nil {
		return false
	}
	owned, err := h.accountService.ListClientAccounts(c.Request.Context(), profile.ID)
	if err != nil {
		return false
	}
	for _, acc := range owned {
		for _, leg := range legs {
			if leg.AccountID == acc.ID {
				return true
			}
		}
	}
	return false
}
