package handler

import (
	"bankoffice/internal/model"
	"bankoffice/internal/service"
	"bankoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 客户、员工、网点、用户资料接口
// ============================================================

// ClientRequest 新建客户
type ClientRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
	BranchID *int64 `json:"branch_id"`
}

// POST /api/v1/clients
func (h *Handler) CreateClient(c *gin.Context) {
	var req ClientRequest
	if !bindStrict(c, &req) {
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), &model.Client{
		Name:     req.Name,
		Document: req.Document,
		Phone:    req.Phone,
		Address:  req.Address,
		Email:    req.Email,
		UserID:   req.UserID,
		BranchID: req.BranchID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, client)
}

// GET /api/v1/clients
func (h *Handler) ListClients(c *gin.Context) {
	page, pageSize := h.pageQuery(c)
	list, total, err := h.clientService.ListClients(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// GET /api/v1/clients/:id
func (h *Handler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, client)
}

// PATCH /api/v1/clients/:id
func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var update model.ClientUpdate
	if !bindStrict(c, &update) {
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, client)
}

// DELETE /api/v1/clients/:id
func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "客户已删除"})
}

type EmployeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	BranchID  int64  `json:"branch_id"`
}

// POST /api/v1/employees
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req EmployeeRequest
	if !bindStrict(c, &req) {
		return
	}
	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), &model.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
		BranchID:  req.BranchID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, employee)
}

// GET /api/v1/employees
func (h *Handler) ListEmployees(c *gin.Context) {
	page, pageSize := h.pageQuery(c)
	list, total, err := h.employeeService.ListEmployees(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// GET /api/v1/employees/:id
func (h *Handler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	employee, err := h.employeeService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, employee)
}

// PATCH /api/v1/employees/:id
func (h *Handler) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var update model.EmployeeUpdate
	if !bindStrict(c, &update) {
		return
	}
	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, employee)
}

// DELETE /api/v1/employees/:id
func (h *Handler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "员工已删除"})
}

type BranchRequest struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// POST /api/v1/branches
func (h *Handler) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if !bindStrict(c, &req) {
		return
	}
	branch, err := h.branchService.CreateBranch(c.Request.Context(), &model.Branch{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, branch)
}

// GET /api/v1/branches
func (h *Handler) ListBranches(c *gin.Context) {
	page, pageSize := h.pageQuery(c)
	list, total, err := h.branchService.ListBranches(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// GET /api/v1/branches/:id
func (h *Handler) GetBranch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	branch, err := h.branchService.GetBranch(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, branch)
}

// PATCH /api/v1/branches/:id
func (h *Handler) UpdateBranch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var update model.BranchUpdate
	if !bindStrict(c, &update) {
		return
	}
	branch, err := h.branchService.UpdateBranch(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, branch)
}

// DELETE /api/v1/branches/:id
func (h *Handler) DeleteBranch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.branchService.DeleteBranch(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "网点已删除"})
}

// POST /api/v1/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req service.RegisterRequest
	if !bindStrict(c, &req) {
		return
	}
	user, err := h.userService.Register(c.Request.Context(), &req, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, user)
}

// GET /api/v1/users
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := h.pageQuery(c)
	list, total, err := h.userService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Page(c, list, total, page, pageSize)
}

// GET /api/v1/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// PATCH /api/v1/users/:id
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var update model.UserUpdate
	if !bindStrict(c, &update) {
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// DELETE /api/v1/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id, currentUser(c).ID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "用户已删除"})
}
