package model

import "strings"

// Role 用户角色（封闭枚举）
// 数据库中任何无法识别的值都解析为 RoleUnknown
type Role string

const (
	RoleUnknown  Role = ""
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ParseRole 解析角色字符串
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer
	case RoleVendor:
		return RoleVendor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Known 是否为已知角色
func (r Role) Known() bool {
	return r.Namespace() != ""
}

// Namespace 角色独占的路由前缀，未知角色没有命名空间
func (r Role) Namespace() string {
	switch r {
	case RoleCustomer:
		return "/customer"
	case RoleVendor:
		return "/vendor"
	case RoleAdmin:
		return "/admin"
	default:
		return ""
	}
}

func (r Role) String() string {
	if !r.Known() {
		return "unknown"
	}
	return string(r)
}
