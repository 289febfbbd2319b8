// Package console 交互式文本菜单，登录后按角色展示可用操作
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/model"
	"bankoffice/internal/repository"
	"bankoffice/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxLoginAttempts = 3

var errQuit = errors.New("quit")

type entry struct {
	key        string
	label      string
	capability auth.Capability
	action     func(ctx context.Context) error
}

// Menu 控制台菜单，输入输出可替换，便于测试
type Menu struct {
	in  *bufio.Scanner
	out io.Writer

	movements *service.MovementService
	accounts  *service.AccountService
	users     *service.UserService
	clients   *service.ClientService
	employees *service.EmployeeService
	branches  *service.BranchService

	user    *model.User
	profile *model.Client // 客户角色的客户档案
	entries []entry
}

func NewMenu(db *gorm.DB, cfg *config.Config, in io.Reader, out io.Writer) *Menu {
	m := &Menu{
		in:        bufio.NewScanner(in),
		out:       out,
		movements: service.NewMovementService(db, cfg),
		accounts:  service.NewAccountService(db, cfg),
		users:     service.NewUserService(db, auth.NewPasswordManager(cfg.Auth.BcryptCost)),
		clients:   service.NewClientService(db),
		employees: service.NewEmployeeService(db),
		branches:  service.NewBranchService(db),
	}
	m.entries = []entry{
		{"1", "存款", auth.CapDeposit, m.deposit},
		{"2", "取款", auth.CapWithdraw, m.withdraw},
		{"3", "转账", auth.CapTransfer, m.transfer},
		{"4", "账户列表", auth.CapViewAccounts, m.listAccounts},
		{"5", "账户流水", auth.CapViewHistory, m.history},
		{"6", "开户", auth.CapOpenAccount, m.openAccount},
		{"7", "修改账户状态", auth.CapUpdateAccount, m.changeStatus},
		{"8", "客户列表", auth.CapViewClients, m.listClients},
		{"9", "新建客户", auth.CapManageClients, m.createClient},
		{"10", "员工列表", auth.CapViewEmployees, m.listEmployees},
		{"11", "网点列表", auth.CapViewBranches, m.listBranches},
		{"12", "新建用户", auth.CapManageUsers, m.createUser},
	}
	return m
}

// Run 登录并进入主菜单，输入 0 或输入结束时返回
func (m *Menu) Run(ctx context.Context) error {
	if err := m.login(ctx); err != nil {
		return err
	}

	for {
		m.printMenu()
		choice, ok := m.prompt("请选择")
		if !ok || choice == "0" {
			m.println("再见")
			return nil
		}

		e := m.find(choice)
		if e == nil {
			m.fail("无效的选项")
			continue
		}
		if err := e.action(ctx); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			m.fail(err.Error())
		}
	}
}

func (m *Menu) login(ctx context.Context) error {
	m.println("==== 银行后台 ====")
	for i := 0; i < maxLoginAttempts; i++ {
		username, ok := m.prompt("用户名")
		if !ok {
			return io.EOF
		}
		password, ok := m.prompt("密码")
		if !ok {
			return io.EOF
		}

		user, err := m.users.Login(ctx, username, password)
		if err != nil {
			m.fail(err.Error())
			continue
		}
		m.user = user
		if auth.RestrictedToOwnAccounts(user.Role) {
			profile, err := m.clients.ClientForUser(ctx, user.ID)
			if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
				return err
			}
			m.profile = profile
		}
		m.ok(fmt.Sprintf("欢迎，%s %s（%s）", user.FirstName, user.LastName, user.Role))
		return nil
	}
	return service.ErrInvalidCredentials
}

func (m *Menu) printMenu() {
	m.println("")
	for _, e := range m.entries {
		if auth.Can(m.user.Role, e.capability) {
			m.println(fmt.Sprintf("%2s. %s", e.key, e.label))
		}
	}
	m.println(" 0. 退出")
}

// find 只返回当前角色可用的选项
func (m *Menu) find(key string) *entry {
	for i := range m.entries {
		if m.entries[i].key == key && auth.Can(m.user.Role, m.entries[i].capability) {
			return &m.entries[i]
		}
	}
	return nil
}

// ============================================================
// 资金操作
// ============================================================

func (m *Menu) deposit(ctx context.Context) error {
	number, amount, err := m.readMovement("账号")
	if err != nil {
		return err
	}
	if err := m.checkOwnership(ctx, number); err != nil {
		return err
	}
	m.report(m.movements.Deposit(ctx, service.DepositRequest{AccountNumber: number, Amount: amount, OperatorID: m.user.ID}))
	return nil
}

func (m *Menu) withdraw(ctx context.Context) error {
	number, amount, err := m.readMovement("账号")
	if err != nil {
		return err
	}
	if err := m.checkOwnership(ctx, number); err != nil {
		return err
	}
	m.report(m.movements.Withdraw(ctx, service.WithdrawRequest{AccountNumber: number, Amount: amount, OperatorID: m.user.ID}))
	return nil
}

func (m *Menu) transfer(ctx context.Context) error {
	source, ok := m.prompt("转出账号")
	if !ok {
		return errQuit
	}
	dest, amount, err := m.readMovement("转入账号")
	if err != nil {
		return err
	}
	if err := m.checkOwnership(ctx, source); err != nil {
		return err
	}
	m.report(m.movements.Transfer(ctx, service.TransferRequest{SourceNumber: source, DestNumber: dest, Amount: amount, OperatorID: m.user.ID}))
	return nil
}

func (m *Menu) readMovement(numberLabel string) (string, decimal.Decimal, error) {
	number, ok := m.prompt(numberLabel)
	if !ok {
		return "", decimal.Zero, errQuit
	}
	raw, ok := m.prompt("金额")
	if !ok {
		return "", decimal.Zero, errQuit
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("金额格式错误: %s", raw)
	}
	return number, amount, nil
}

// checkOwnership 客户角色只能操作自己的账户；账户不存在时交给资金引擎报错
func (m *Menu) checkOwnership(ctx context.Context, number string) error {
	if !auth.RestrictedToOwnAccounts(m.user.Role) {
		return nil
	}
	account, err := m.accounts.GetAccount(ctx, number)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !auth.OwnsAccount(m.user, m.profile, account) {
		return errors.New("只能操作本人名下的账户")
	}
	return nil
}

func (m *Menu) report(result *service.Result) {
	if result.Success {
		m.ok(result.Message)
		return
	}
	m.fail(result.Message)
}

// ============================================================
// 账户
// ============================================================

func (m *Menu) listAccounts(ctx context.Context) error {
	var accounts []*model.Account
	if auth.RestrictedToOwnAccounts(m.user.Role) {
		if m.profile == nil {
			m.ok("名下没有账户")
			return nil
		}
		owned, err := m.accounts.ListClientAccounts(ctx, m.profile.ID)
		if err != nil {
			return err
		}
		accounts = owned
	} else {
		page, _, err := m.accounts.ListAccounts(ctx, 1, 100)
		if err != nil {
			return err
		}
		accounts = page
	}

	for _, a := range accounts {
		m.println(fmt.Sprintf("%-14s %-9s %-9s %15s", a.Number, a.Type, a.Status, a.Balance.StringFixed(2)))
	}
	m.ok(fmt.Sprintf("共 %d 个账户", len(accounts)))
	return nil
}

func (m *Menu) history(ctx context.Context) error {
	number, ok := m.prompt("账号")
	if !ok {
		return errQuit
	}
	if err := m.checkOwnership(ctx, number); err != nil {
		return err
	}
	list, total, err := m.accounts.History(ctx, number, 1, 20)
	if err != nil {
		return err
	}
	for _, t := range list {
		m.println(fmt.Sprintf("%s  %-30s %12s %12s", t.CreatedAt.Format("2006-01-02 15:04:05"), t.Type, t.Amount.StringFixed(2), t.BalanceAfter.StringFixed(2)))
	}
	m.ok(fmt.Sprintf("共 %d 条流水，显示最近 %d 条", total, len(list)))
	return nil
}

func (m *Menu) openAccount(ctx context.Context) error {
	clientID, err := m.promptID("客户 ID")
	if err != nil {
		return err
	}
	accountType, ok := m.prompt("账户类型 (SAVINGS/CHECKING/CREDIT)")
	if !ok {
		return errQuit
	}
	raw, ok := m.prompt("初始余额")
	if !ok {
		return errQuit
	}
	balance := decimal.Zero
	if raw != "" {
		if balance, err = decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("金额格式错误: %s", raw)
		}
	}

	account, err := m.accounts.OpenAccount(ctx, &service.OpenAccountRequest{
		ClientID:       clientID,
		Type:           strings.ToUpper(accountType),
		InitialBalance: balance,
	}, m.user.ID)
	if err != nil {
		return err
	}
	m.ok(fmt.Sprintf("开户成功，账号 %s，余额 %s", account.Number, account.Balance.StringFixed(2)))
	return nil
}

func (m *Menu) changeStatus(ctx context.Context) error {
	number, ok := m.prompt("账号")
	if !ok {
		return errQuit
	}
	status, ok := m.prompt("新状态 (ACTIVE/BLOCKED/SUSPENDED)")
	if !ok {
		return errQuit
	}
	status = strings.ToUpper(status)
	account, err := m.accounts.UpdateAccount(ctx, number, model.AccountUpdate{Status: &status}, m.user.ID)
	if err != nil {
		return err
	}
	m.ok(fmt.Sprintf("账户 %s 状态已改为 %s", account.Number, account.Status))
	return nil
}

// ============================================================
// 资料
// ============================================================

func (m *Menu) listClients(ctx context.Context) error {
	list, total, err := m.clients.ListClients(ctx, 1, 100)
	if err != nil {
		return err
	}
	for _, c := range list {
		m.println(fmt.Sprintf("%4d  %-30s %-15s %s", c.ID, c.Name, c.Document, c.Email))
	}
	m.ok(fmt.Sprintf("共 %d 个客户", total))
	return nil
}

func (m *Menu) createClient(ctx context.Context) error {
	name, ok := m.prompt("姓名")
	if !ok {
		return errQuit
	}
	document, ok := m.prompt("证件号")
	if !ok {
		return errQuit
	}
	email, ok := m.prompt("邮箱")
	if !ok {
		return errQuit
	}
	client, err := m.clients.CreateClient(ctx, &model.Client{Name: name, Document: document, Email: email})
	if err != nil {
		return err
	}
	m.ok(fmt.Sprintf("客户已创建，ID %d", client.ID))
	return nil
}

func (m *Menu) listEmployees(ctx context.Context) error {
	list, total, err := m.employees.ListEmployees(ctx, 1, 100)
	if err != nil {
		return err
	}
	for _, e := range list {
		m.println(fmt.Sprintf("%4d  %-20s %-20s %s", e.ID, e.FirstName, e.LastName, e.Position))
	}
	m.ok(fmt.Sprintf("共 %d 个员工", total))
	return nil
}

func (m *Menu) listBranches(ctx context.Context) error {
	list, total, err := m.branches.ListBranches(ctx, 1, 100)
	if err != nil {
		return err
	}
	for _, b := range list {
		m.println(fmt.Sprintf("%4d  %-20s %-15s %s", b.ID, b.Name, b.City, b.Address))
	}
	m.ok(fmt.Sprintf("共 %d 个网点", total))
	return nil
}

func (m *Menu) createUser(ctx context.Context) error {
	fields := []string{"名", "姓", "用户名", "密码", "角色 (ADMIN/EMPLOYEE/CLIENT)"}
	values := make([]string, len(fields))
	for i, f := range fields {
		v, ok := m.prompt(f)
		if !ok {
			return errQuit
		}
		values[i] = v
	}

	user, err := m.users.Register(ctx, &service.RegisterRequest{
		FirstName: values[0],
		LastName:  values[1],
		Username:  values[2],
		Password:  values[3],
		Role:      strings.ToUpper(values[4]),
	}, m.user.ID)
	if err != nil {
		return err
	}
	m.ok(fmt.Sprintf("用户 %s 已创建，角色 %s", user.Username, user.Role))
	return nil
}

// ============================================================
// 输入输出
// ============================================================

// prompt 输出提示并读取一行，输入结束时返回 false
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprintf(m.out, "%s: ", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) promptID(label string) (int64, error) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, errQuit
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s 格式错误: %s", label, raw)
	}
	return id, nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) ok(msg string) {
	fmt.Fprintf(m.out, "[OK] %s\n", msg)
}

func (m *Menu) fail(msg string) {
	fmt.Fprintf(m.out, "[ERROR] %s\n", msg)
}
