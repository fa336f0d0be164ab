package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"marketplace_v1_202610/internal/access"
	"marketplace_v1_202610/internal/model"
)

// ==================== 结果定义 ====================

// ResultKind 结果类型
type ResultKind string

const (
	ResultSuccess ResultKind = "success"
	ResultError   ResultKind = "error"
)

// Result 凭证操作的统一结果: (类型, 目标页, 提示信息)
type Result struct {
	Kind        ResultKind
	Destination string
	Message     string
}

// RedirectURL 结果 → 重定向地址
// 有提示信息时编码为 ?success=... 或 ?error=...
func (r Result) RedirectURL() string {
	if r.Message == "" {
		return r.Destination
	}
	q := url.Values{}
	q.Set(string(r.Kind), r.Message)

	sep := "?"
	if strings.Contains(r.Destination, "?") {
		sep = "&"
	}
	return r.Destination + sep + q.Encode()
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}

func successResult(dest, msg string) Result {
	return Result{Kind: ResultSuccess, Destination: dest, Message: msg}
}

func errorResult(dest, msg string) Result {
	return Result{Kind: ResultError, Destination: dest, Message: msg}
}

// ==================== 提示文案 ====================

const (
	MsgCredentialsRequired  = "Email and password are required"
	MsgSignUpSuccess        = "Thanks for signing up! Please check your email for a verification link."
	MsgRoleLookupFailed     = "Failed to fetch user role"
	MsgUnknownRole          = "Unknown user role"
	MsgEmailRequired        = "Email is required"
	MsgResetEmailSent       = "Check your email for a link to reset your password."
	MsgPasswordsRequired    = "Password and confirm password are required"
	MsgPasswordsMismatch    = "Passwords do not match"
	MsgPasswordUpdateFailed = "Password update failed"
	MsgPasswordUpdated      = "Password updated"
	MsgAuthUnavailable      = "Authentication service is unavailable, please try again later"
)

// ==================== CredentialService 凭证流程 ====================

// CredentialService 注册、登录、找回密码、退出
// 每个操作都收敛为 Result，不向上抛错误
type CredentialService struct {
	provider AuthProvider
	roles    RoleLookup
	siteURL  string
}

// NewCredentialService 创建凭证服务
// siteURL 用于拼接邮件回调地址，请求未带 Origin 时使用
func NewCredentialService(provider AuthProvider, roles RoleLookup, siteURL string) *CredentialService {
	return &CredentialService{
		provider: provider,
		roles:    roles,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// SignUpInput 注册参数
type SignUpInput struct {
	Email    string
	Password string
	Role     string // 可选: customer | vendor
	Origin   string
}

// SignUp 注册，不创建档案（由外部触发器完成）
func (s *CredentialService) SignUp(ctx context.Context, in SignUpInput) Result {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return errorResult(access.RouteSignUp, MsgCredentialsRequired)
	}

	var metadata map[string]interface{}
	if role := model.ParseRole(in.Role); role == model.RoleCustomer || role == model.RoleVendor {
		metadata = map[string]interface{}{"role": string(role)}
	}

	redirectTo := s.origin(in.Origin) + "/auth/callback"
	if _, err := s.provider.SignUp(ctx, email, in.Password, redirectTo, metadata); err != nil {
		zap.S().Warnf("[Credential] 注册失败 (%s): %v", email, err)
		return errorResult(access.RouteSignUp, providerMessage(err))
	}

	return successResult(access.RouteSignUp, MsgSignUpSuccess)
}

// SignIn 登录并按角色跳转
// 角色缺失或无法识别时返回错误结果，不猜测目标页，也不下发会话
func (s *CredentialService) SignIn(ctx context.Context, email, password string) (Result, *model.Session) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errorResult(access.RouteSignIn, MsgCredentialsRequired), nil
	}

	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return errorResult(access.RouteSignIn, providerMessage(err)), nil
	}
	if session == nil || session.User == nil || session.User.ID == "" {
		return errorResult(access.RouteSignIn, MsgAuthUnavailable), nil
	}

	role, err := s.roles.LookupRole(ctx, session.User.ID)
	if err != nil {
		zap.S().Warnf("[Credential] 查询角色失败: %v", err)
		s.discard(ctx, session)
		return errorResult(access.RouteSignIn, MsgRoleLookupFailed), nil
	}

	ns := role.Namespace()
	if ns == "" {
		s.discard(ctx, session)
		return errorResult(access.RouteSignIn, MsgUnknownRole), nil
	}

	return successResult(ns, ""), session
}

// RequestPasswordReset 发送重置邮件
// 只要邮箱非空就返回同一条成功提示，不暴露邮箱是否注册
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email, origin, callbackURL string) Result {
	email = strings.TrimSpace(email)
	if email == "" {
		return errorResult(access.RouteForgotPassword, MsgEmailRequired)
	}

	redirectTo := s.origin(origin) + "/auth/callback?redirect_to=" + access.RouteResetPassword
	if err := s.provider.ResetPasswordForEmail(ctx, email, redirectTo); err != nil {
		zap.S().Warnf("[Credential] 发送重置邮件失败: %v", err)
	}

	if dest, ok := SafeRedirectPath(callbackURL); ok {
		return Result{Kind: ResultSuccess, Destination: dest}
	}
	return successResult(access.RouteForgotPassword, MsgResetEmailSent)
}

// ConfirmPasswordReset 设置新密码，需要重置链接换来的会话
func (s *CredentialService) ConfirmPasswordReset(ctx context.Context, session *model.Session, password, confirmPassword string) Result {
	if password == "" || confirmPassword == "" {
		return errorResult(access.RouteResetPassword, MsgPasswordsRequired)
	}
	if password != confirmPassword {
		return errorResult(access.RouteResetPassword, MsgPasswordsMismatch)
	}
	if session == nil || session.AccessToken == "" {
		return errorResult(access.RouteResetPassword, MsgPasswordUpdateFailed)
	}

	if err := s.provider.UpdateUser(ctx, session.AccessToken, password); err != nil {
		zap.S().Warnf("[Credential] 更新密码失败: %v", err)
		return errorResult(access.RouteResetPassword, MsgPasswordUpdateFailed)
	}
	return successResult(access.RouteResetPassword, MsgPasswordUpdated)
}

// SignOut 退出，远端注销失败只记录日志
func (s *CredentialService) SignOut(ctx context.Context, session *model.Session) Result {
	if session != nil && session.AccessToken != "" {
		if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
			zap.S().Warnf("[Credential] 注销会话失败: %v", err)
		}
	}
	return Result{Kind: ResultSuccess, Destination: access.RouteSignIn}
}

// VerifyEmailLink 校验邮件链接（注册确认 / 密码重置），成功后返回新会话
func (s *CredentialService) VerifyEmailLink(ctx context.Context, tokenHash, verifyType, redirectTo string) (Result, *model.Session) {
	if tokenHash == "" {
		return errorResult(access.RouteSignIn, ErrInvalidVerifyToken.Error()), nil
	}

	vt := VerifyType(verifyType)
	switch vt {
	case VerifySignUp, VerifyRecovery, VerifyEmail:
	default:
		return errorResult(access.RouteSignIn, ErrInvalidVerifyToken.Error()), nil
	}

	session, err := s.provider.VerifyOTP(ctx, tokenHash, vt)
	if err != nil {
		return errorResult(access.RouteSignIn, providerMessage(err)), nil
	}

	dest, ok := SafeRedirectPath(redirectTo)
	if !ok {
		dest = "/"
		if vt == VerifyRecovery {
			dest = access.RouteResetPassword
		}
	}
	return Result{Kind: ResultSuccess, Destination: dest}, session
}

// ==================== 内部方法 ====================

func (s *CredentialService) origin(requestOrigin string) string {
	if o := strings.TrimRight(requestOrigin, "/"); o != "" {
		return o
	}
	return s.siteURL
}

// discard 登录成功但不能放行时，注销刚拿到的会话
func (s *CredentialService) discard(ctx context.Context, session *model.Session) {
	if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
		zap.S().Warnf("[Credential] 注销会话失败: %v", err)
	}
}

// providerMessage 认证服务拒绝时透出其提示，其余错误给通用提示
func providerMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Error() != "" {
		return authErr.Error()
	}
	return MsgAuthUnavailable
}

// SafeRedirectPath 只接受站内相对路径，防止开放重定向
func SafeRedirectPath(p string) (string, bool) {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "", false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return p, true
}
