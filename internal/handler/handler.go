package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/internal/service"
	"bankoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	cfg             *config.Config
	rdb             *redis.Client // 为 nil 时不做 request_id 防重
	movementService *service.MovementService
	accountService  *service.AccountService
	userService     *service.UserService
	clientService   *service.ClientService
	employeeService *service.EmployeeService
	branchService   *service.BranchService
	outboxService   *service.OutboxService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		cfg:             cfg,
		rdb:             rdb,
		movementService: service.NewMovementService(db, cfg),
		accountService:  service.NewAccountService(db, cfg),
		userService:     service.NewUserService(db, auth.NewPasswordManager(cfg.Auth.BcryptCost)),
		clientService:   service.NewClientService(db),
		employeeService: service.NewEmployeeService(db),
		branchService:   service.NewBranchService(db),
		outboxService:   service.NewOutboxService(db),
	}
}

// ============================================================
// 错误映射
// ============================================================

// movementStatus 资金操作失败种类 -> HTTP 状态码、业务码
func movementStatus(kind service.ErrorKind) (int, int) {
	switch kind {
	case service.KindInvalidAmount:
		return http.StatusBadRequest, response.CodeInvalidAmount
	case service.KindSameAccount:
		return http.StatusBadRequest, response.CodeSameAccount
	case service.KindAccountNotFound:
		return http.StatusNotFound, response.CodeAccountNotFound
	case service.KindAccountNotActive:
		return http.StatusConflict, response.CodeAccountNotActive
	case service.KindInsufficientFunds:
		return http.StatusConflict, response.CodeInsufficientFunds
	default:
		return http.StatusInternalServerError, response.CodeStorageFailure
	}
}

// writeError 资料类接口的错误输出，未识别的错误只记日志不外泄
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, repository.ErrEmptyUpdate):
		response.ParamError(c, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound), errors.Is(err, repository.ErrRecordNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDuplicate), errors.Is(err, service.ErrInUse):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error(), nil)
	default:
		log.Printf("[Handler] %s %s 失败: %v", c.Request.Method, c.FullPath(), err)
		response.ServerError(c, "服务器内部错误")
	}
}

// ============================================================
// 请求解析
// ============================================================

// bindStrict 解析 JSON，出现未知字段直接拒绝
func bindStrict(c *gin.Context, dst interface{}) bool {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "id 参数错误")
		return 0, false
	}
	return id, true
}

// pageQuery 分页参数，page_size 缺省取配置
func (h *Handler) pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return service.NormalizePage(page, pageSize, h.cfg.Business.DefaultPageSize)
}

// ============================================================
// 账户归属
// ============================================================

// ownProfile 客户用户对应的客户档案；其他角色返回 nil
func (h *Handler) ownProfile(c *gin.Context, user *model.User) (*model.Client, error) {
	if !auth.RestrictedToOwnAccounts(user.Role) {
		return nil, nil
	}
	profile, err := h.clientService.ClientForUser(c.Request.Context(), user.ID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, nil
	}
	return profile, err
}

// checkOwnership 客户只能访问自己名下的账户，不满足时已写出 403
//
// 账户不存在时放行，由后续逻辑给出 404
func (h *Handler) checkOwnership(c *gin.Context, number string) bool {
	user := currentUser(c)
	if !auth.RestrictedToOwnAccounts(user.Role) {
		return true
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), number)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return true
	}
	if err != nil {
		writeError(c, err)
		return false
	}

	profile, err := h.ownProfile(c, user)
	if err != nil {
		writeError(c, err)
		return false
	}
	if !auth.OwnsAccount(user, profile, account) {
		response.Forbidden(c, "只能操作本人名下的账户")
		return false
	}
	return true
}

// ============================================================
// 当前用户
// ============================================================

// Me 当前登录用户
// GET /api/v1/me
func (h *Handler) Me(c *gin.Context) {
	user := currentUser(c)
	data := gin.H{"user": user}
	if profile, err := h.ownProfile(c, user); err == nil && profile != nil {
		data["client"] = profile
	}
	response.Success(c, data)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword 修改本人密码
// PUT /api/v1/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindStrict(c, &req) {
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "密码已修改"})
}
