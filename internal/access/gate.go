// Package access 按 (身份, 角色, 路径) 判定请求放行或重定向。
// 纯函数，无 I/O，可在每个请求上重复执行。
package access

import (
	"path"
	"strings"

	"marketplace_v1_202610/internal/model"
)

// ==================== 路由常量 ====================

const (
	RouteSignIn         = "/sign-in"
	RouteSignUp         = "/sign-up"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/protected/reset-password"
	RouteError          = "/error"
)

// publicRoutes 匿名用户可访问的页面
var publicRoutes = []string{RouteSignIn, RouteSignUp, RouteForgotPassword}

// ==================== 判定结果 ====================

// Decision 门禁判定结果
type Decision struct {
	Allow  bool
	Target string // 仅在 Allow=false 时有值
}

// Allow 放行
func Allow() Decision {
	return Decision{Allow: true}
}

// Redirect 重定向到 target
func Redirect(target string) Decision {
	return Decision{Target: target}
}

// ==================== 判定规则 ====================

// Evaluate 门禁判定
// 1. 无身份：公开页放行，其余跳登录页
// 2. 有身份但角色未知（查询失败或无档案）：跳错误页
// 3. 已知角色访问自身命名空间之外的路径：跳命名空间根
// 4. 其余放行
func Evaluate(identity *model.Identity, role model.Role, requestPath string) Decision {
	p := cleanPath(requestPath)

	if identity == nil {
		if IsPublic(p) {
			return Allow()
		}
		return Redirect(RouteSignIn)
	}

	ns := role.Namespace()
	if ns == "" {
		return Redirect(RouteError)
	}

	if !HasPathPrefix(p, ns) {
		return Redirect(ns)
	}
	return Allow()
}

// IsPublic 是否为公开路由
func IsPublic(requestPath string) bool {
	p := cleanPath(requestPath)
	for _, route := range publicRoutes {
		if HasPathPrefix(p, route) {
			return true
		}
	}
	return false
}

// HasPathPrefix 按路径段匹配前缀："/vendor/x" 属于 "/vendor"，"/vendors" 不属于
func HasPathPrefix(p, prefix string) bool {
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
