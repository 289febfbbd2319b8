package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"

	"gorm.io/gorm"
)

// UserService 系统用户注册、登录、维护
type UserService struct {
	userRepo  *repository.RecordRepository[model.User]
	passwords *auth.PasswordManager
}

func NewUserService(db *gorm.DB, passwords *auth.PasswordManager) *UserService {
	return &UserService{
		userRepo:  repository.NewRecordRepository[model.User](db),
		passwords: passwords,
	}
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// credentialPatch 只在服务内部使用的列修改，不对外暴露
type credentialPatch struct {
	passwordHash string
	lastLoginAt  *time.Time
}

func (p credentialPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.passwordHash != "" {
		cols["password_hash"] = p.passwordHash
	}
	if p.lastLoginAt != nil {
		cols["last_login_at"] = *p.lastLoginAt
	}
	return cols
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest, creatorID int64) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("用户名不能为空")
	}
	if !auth.ValidRole(req.Role) {
		return nil, invalid("不支持的角色 %s", req.Role)
	}
	if err := auth.ValidateStrength(req.Password); err != nil {
		return nil, invalid("%v", err)
	}

	n, err := s.userRepo.Count(ctx, "username", username)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: 用户名 %s", ErrDuplicate, username)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     username,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		CreatedBy:    creatorID,
		UpdatedBy:    creatorID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[User] 用户创建成功: username=%s, role=%s, creator=%d", user.Username, user.Role, creatorID)
	return user, nil
}

// Authenticate 校验用户名密码，用户不存在、已停用、密码错误统一返回 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindOne(ctx, "username", username)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !s.passwords.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login 控制台登录，成功后记录登录时间
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		log.Printf("[User] 登录失败: username=%s", username)
		return nil, err
	}

	now := time.Now()
	if _, err := s.userRepo.Update(ctx, user.ID, credentialPatch{lastLoginAt: &now}); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	log.Printf("[User] 登录成功: username=%s, role=%s", user.Username, user.Role)
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidateStrength(newPassword); err != nil {
		return invalid("%v", err)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	_, err = s.userRepo.Update(ctx, userID, credentialPatch{passwordHash: hash})
	return err
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*model.User, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 20)
	return s.userRepo.List(ctx, page, pageSize)
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	if update.Role != nil && !auth.ValidRole(*update.Role) {
		return nil, invalid("不支持的角色 %s", *update.Role)
	}
	return s.userRepo.Update(ctx, id, update)
}

// DeleteUser 不允许删除自己
func (s *UserService) DeleteUser(ctx context.Context, id, operatorID int64) error {
	if id == operatorID {
		return invalid("不能删除当前登录用户")
	}
	return s.userRepo.Delete(ctx, id)
}

// EnsureBootstrapAdmin 库里没有管理员时按配置创建一个，返回是否创建
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapAdminConfig) (bool, error) {
	n, err := s.userRepo.Count(ctx, "role", model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if cfg.Username == "" || cfg.Password == "" {
		return false, invalid("未配置初始管理员账号")
	}

	_, err = s.Register(ctx, &RegisterRequest{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Role:      model.RoleAdmin,
	}, 0)
	if err != nil {
		return false, err
	}
	log.Printf("[User] 已创建初始管理员: %s", cfg.Username)
	return true, nil
}
