package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bankoffice/internal/model"
	"bankoffice/internal/repository"

	"gorm.io/gorm"
)

// ============================================================================
// 客户、员工、网点资料维护
// ============================================================================

type ClientService struct {
	clientRepo  *repository.RecordRepository[model.Client]
	userRepo    *repository.RecordRepository[model.User]
	branchRepo  *repository.RecordRepository[model.Branch]
	accountRepo *repository.RecordRepository[model.Account]
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{
		clientRepo:  repository.NewRecordRepository[model.Client](db),
		userRepo:    repository.NewRecordRepository[model.User](db),
		branchRepo:  repository.NewRecordRepository[model.Branch](db),
		accountRepo: repository.NewRecordRepository[model.Account](db),
	}
}

func (s *ClientService) CreateClient(ctx context.Context, client *model.Client) (*model.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	client.Document = strings.TrimSpace(client.Document)
	if client.Name == "" || client.Document == "" {
		return nil, invalid("客户姓名和证件号不能为空")
	}

	n, err := s.clientRepo.Count(ctx, "document", client.Document)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: 证件号 %s", ErrDuplicate, client.Document)
	}

	if client.UserID != 0 {
		user, err := s.userRepo.Get(ctx, client.UserID)
		if err != nil {
			return nil, referenceErr(err, "用户 %d 不存在", client.UserID)
		}
		if user.Role != model.RoleClient {
			return nil, invalid("用户 %s 不是客户角色", user.Username)
		}
	}
	if err := s.checkBranch(ctx, client.BranchID); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	return s.clientRepo.Get(ctx, id)
}

// ClientForUser 客户用户对应的客户档案，没有档案返回 ErrRecordNotFound
func (s *ClientService) ClientForUser(ctx context.Context, userID int64) (*model.Client, error) {
	return s.clientRepo.FindOne(ctx, "user_id", userID)
}

func (s *ClientService) ListClients(ctx context.Context, page, pageSize int) ([]*model.Client, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 20)
	return s.clientRepo.List(ctx, page, pageSize)
}

func (s *ClientService) UpdateClient(ctx context.Context, id int64, update model.ClientUpdate) (*model.Client, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, invalid("客户姓名不能为空")
	}
	if err := s.checkBranch(ctx, update.BranchID); err != nil {
		return nil, err
	}
	return s.clientRepo.Update(ctx, id, update)
}

// DeleteClient 名下还有账户时拒绝删除
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	n, err := s.accountRepo.Count(ctx, "client_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: 客户名下还有 %d 个账户", ErrInUse, n)
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) checkBranch(ctx context.Context, branchID *int64) error {
	if branchID == nil {
		return nil
	}
	if _, err := s.branchRepo.Get(ctx, *branchID); err != nil {
		return referenceErr(err, "网点 %d 不存在", *branchID)
	}
	return nil
}

type EmployeeService struct {
	employeeRepo *repository.RecordRepository[model.Employee]
	branchRepo   *repository.RecordRepository[model.Branch]
}

func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{
		employeeRepo: repository.NewRecordRepository[model.Employee](db),
		branchRepo:   repository.NewRecordRepository[model.Branch](db),
	}
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	if strings.TrimSpace(employee.FirstName) == "" || strings.TrimSpace(employee.LastName) == "" || strings.TrimSpace(employee.Position) == "" {
		return nil, invalid("员工姓名和职位不能为空")
	}
	if employee.BranchID != 0 {
		if _, err := s.branchRepo.Get(ctx, employee.BranchID); err != nil {
			return nil, referenceErr(err, "网点 %d 不存在", employee.BranchID)
		}
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	return s.employeeRepo.Get(ctx, id)
}

func (s *EmployeeService) ListEmployees(ctx context.Context, page, pageSize int) ([]*model.Employee, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 20)
	return s.employeeRepo.List(ctx, page, pageSize)
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, id int64, update model.EmployeeUpdate) (*model.Employee, error) {
	if update.BranchID != nil {
		if _, err := s.branchRepo.Get(ctx, *update.BranchID); err != nil {
			return nil, referenceErr(err, "网点 %d 不存在", *update.BranchID)
		}
	}
	return s.employeeRepo.Update(ctx, id, update)
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	return s.employeeRepo.Delete(ctx, id)
}

type BranchService struct {
	branchRepo   *repository.RecordRepository[model.Branch]
	clientRepo   *repository.RecordRepository[model.Client]
	employeeRepo *repository.RecordRepository[model.Employee]
}

func NewBranchService(db *gorm.DB) *BranchService {
	return &BranchService{
		branchRepo:   repository.NewRecordRepository[model.Branch](db),
		clientRepo:   repository.NewRecordRepository[model.Client](db),
		employeeRepo: repository.NewRecordRepository[model.Employee](db),
	}
}

func (s *BranchService) CreateBranch(ctx context.Context, branch *model.Branch) (*model.Branch, error) {
	if strings.TrimSpace(branch.Name) == "" || strings.TrimSpace(branch.City) == "" || strings.TrimSpace(branch.Address) == "" {
		return nil, invalid("网点名称、城市、地址不能为空")
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *BranchService) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	return s.branchRepo.Get(ctx, id)
}

func (s *BranchService) ListBranches(ctx context.Context, page, pageSize int) ([]*model.Branch, int64, error) {
	page, pageSize = NormalizePage(page, pageSize, 20)
	return s.branchRepo.List(ctx, page, pageSize)
}

func (s *BranchService) UpdateBranch(ctx context.Context, id int64, update model.BranchUpdate) (*model.Branch, error) {
	return s.branchRepo.Update(ctx, id, update)
}

// DeleteBranch 仍有客户或员工挂在网点下时拒绝删除
func (s *BranchService) DeleteBranch(ctx context.Context, id int64) error {
	clients, err := s.clientRepo.Count(ctx, "branch_id", id)
	if err != nil {
		return err
	}
	employees, err := s.employeeRepo.Count(ctx, "branch_id", id)
	if err != nil {
		return err
	}
	if clients+employees > 0 {
		return fmt.Errorf("%w: 网点下还有 %d 个客户、%d 个员工", ErrInUse, clients, employees)
	}
	return s.branchRepo.Delete(ctx, id)
}

// referenceErr 被引用的记录不存在属于参数错误，其余原样返回
func referenceErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return invalid(format, args...)
	}
	return err
}
