// Package auth 角色、权限表和密码管理
package auth

import (
	"bankoffice/internal/model"
)

// Capability 一项可被授权的操作
type Capability string

const (
	CapDeposit       Capability = "movement:deposit"
	CapWithdraw      Capability = "movement:withdraw"
	CapTransfer      Capability = "movement:transfer"
	CapViewAccounts  Capability = "account:view"
	CapOpenAccount   Capability = "account:open"
	CapUpdateAccount Capability = "account:update"
	CapDeleteAccount Capability = "account:delete"
	CapViewHistory   Capability = "account:history"
	CapViewClients   Capability = "client:view"
	CapManageClients Capability = "client:manage"
	CapViewEmployees Capability = "employee:view"
	CapManageStaff   Capability = "employee:manage"
	CapViewBranches  Capability = "branch:view"
	CapManageBranch  Capability = "branch:manage"
	CapManageUsers   Capability = "user:manage"
	CapManageOutbox  Capability = "outbox:manage"
)

// 管理员拥有全部权限，不在表里逐项列出
var grants = map[string]map[Capability]bool{
	model.RoleEmployee: {
		CapDeposit:       true,
		CapWithdraw:      true,
		CapTransfer:      true,
		CapViewAccounts:  true,
		CapOpenAccount:   true,
		CapUpdateAccount: true,
		CapViewHistory:   true,
		CapViewClients:   true,
		CapManageClients: true,
		CapViewEmployees: true,
		CapViewBranches:  true,
	},
	// 客户只能操作自己名下的账户，归属校验由 OwnsAccount 完成
	model.RoleClient: {
		CapDeposit:      true,
		CapWithdraw:     true,
		CapTransfer:     true,
		CapViewAccounts: true,
		CapViewHistory:  true,
	},
}

// Can 角色是否拥有某项权限
func Can(role string, capability Capability) bool {
	if role == model.RoleAdmin {
		return true
	}
	return grants[role][capability]
}

// ValidRole 是否为已知角色
func ValidRole(role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleEmployee, model.RoleClient:
		return true
	}
	return false
}

// RestrictedToOwnAccounts 该角色只能看到、操作自己名下的账户
func RestrictedToOwnAccounts(role string) bool {
	return role == model.RoleClient
}

// OwnsAccount 客户角色下，账户必须属于该用户关联的客户；其他角色不受限
//
// client 为当前用户关联的客户档案，没有档案的客户用户不拥有任何账户
func OwnsAccount(user *model.User, client *model.Client, account *model.Account) bool {
	if !RestrictedToOwnAccounts(user.Role) {
		return true
	}
	if client == nil || account == nil {
		return false
	}
	return client.UserID == user.ID && account.ClientID == client.ID
}
