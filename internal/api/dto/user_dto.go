package dto

import "time"

// ==================== 凭证表单 ====================
// 表单字段不加 binding 必填校验，缺失字段由凭证服务返回统一提示

// SignUpForm 注册表单
type SignUpForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Role     string `form:"role"` // 可选: customer | vendor
}

// SignInForm 登录表单
type SignInForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ForgotPasswordForm 找回密码表单
type ForgotPasswordForm struct {
	Email       string `form:"email"`
	CallbackURL string `form:"callbackUrl"`
}

// ResetPasswordForm 重置密码表单
type ResetPasswordForm struct {
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}

// AuthCallbackQuery 邮件链接回调参数
type AuthCallbackQuery struct {
	TokenHash  string `form:"token_hash"`
	Type       string `form:"type"`
	RedirectTo string `form:"redirect_to"`
}

// ==================== 页面数据 ====================

// Flash 页面提示，来自重定向地址上的 success / error 参数
type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthPage 凭证页面数据
type AuthPage struct {
	Page   string `json:"page"`
	Action string `json:"action"`
	Flash  Flash  `json:"flash"`
}

// ==================== 用户信息 ====================

// ProfileInfo 当前用户档案
type ProfileInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminSummary 管理后台概览
type AdminSummary struct {
	Users          map[string]int64 `json:"users"`
	ActiveProducts int64            `json:"active_products"`
}

// AssignRoleRequest 管理员指定角色
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
