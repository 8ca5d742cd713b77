// Package authctx 请求调用者身份。
// 由 JWT 中间件构造后显式传入每个 Service 方法，Service 不读取任何隐式会话状态。
package authctx

import (
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// 用户角色
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleEstimator  = "estimator"
	RoleField      = "field"
)

// Roles 全部合法角色
var Roles = []string{RoleOwner, RoleAdmin, RoleDispatcher, RoleEstimator, RoleField}

// ValidRole 是否为已知角色
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor 当前调用者
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
	IP        string
}

// Valid 身份信息是否完整
func (a Actor) Valid() bool {
	return a.UserID != "" && a.CompanyID != "" && ValidRole(a.Role)
}

// IsManager owner / admin
func (a Actor) IsManager() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

// CanDispatch 可创建工单、派工、流转状态
func (a Actor) CanDispatch() bool {
	return a.IsManager() || a.Role == RoleDispatcher
}

// CanManageCompliance 可维护员工及资质
func (a Actor) CanManageCompliance() bool {
	return a.IsManager() || a.Role == RoleDispatcher
}

// CanEstimate 可编辑报价单
func (a Actor) CanEstimate() bool {
	return a.IsManager() || a.Role == RoleEstimator
}

// CanApproveEstimate 可审批 / 拒绝报价单
func (a Actor) CanApproveEstimate() bool {
	return a.IsManager()
}

// CanManageCatalog 可维护设备与作业预设
func (a Actor) CanManageCatalog() bool {
	return a.IsManager() || a.Role == RoleDispatcher
}

// Require 权限不足时返回 ErrForbidden
func Require(allowed bool) error {
	if !allowed {
		return pkgerrors.ErrForbidden
	}
	return nil
}
