package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace_v1_202610/internal/access"
	"marketplace_v1_202610/internal/api/dto"
	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/service"
)

type AuthController struct {
	credentialService *service.CredentialService
	cookies           middleware.CookieConfig
}

func NewAuthController(s *service.CredentialService, cookies middleware.CookieConfig) *AuthController {
	return &AuthController{credentialService: s, cookies: cookies}
}

// ==================== 页面 ====================

// SignInPage 登录页
// @Summary 登录页
// @Tags Auth
// @Produce json
// @Param success query string false "成功提示"
// @Param error query string false "错误提示"
// @Success 200 {object} dto.AuthPage
// @Router /sign-in [get]
func (ctrl *AuthController) SignInPage(c *gin.Context) {
	success(c, dto.AuthPage{Page: "sign-in", Action: "/auth/sign-in", Flash: flash(c)})
}

// SignUpPage 注册页
// @Summary 注册页
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.AuthPage
// @Router /sign-up [get]
func (ctrl *AuthController) SignUpPage(c *gin.Context) {
	success(c, dto.AuthPage{Page: "sign-up", Action: "/auth/sign-up", Flash: flash(c)})
}

// ForgotPasswordPage 找回密码页
// @Summary 找回密码页
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.AuthPage
// @Router /forgot-password [get]
func (ctrl *AuthController) ForgotPasswordPage(c *gin.Context) {
	success(c, dto.AuthPage{Page: "forgot-password", Action: "/auth/forgot-password", Flash: flash(c)})
}

// ResetPasswordPage 重置密码页，需要重置链接换来的会话
// @Summary 重置密码页
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.AuthPage
// @Failure 307 {string} string "未登录跳转登录页"
// @Router /protected/reset-password [get]
func (ctrl *AuthController) ResetPasswordPage(c *gin.Context) {
	if middleware.GetIdentity(c) == nil {
		c.Redirect(http.StatusTemporaryRedirect, access.RouteSignIn)
		return
	}
	success(c, dto.AuthPage{Page: "reset-password", Action: "/auth/reset-password", Flash: flash(c)})
}

// ErrorPage 通用错误页
// @Summary 错误页
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /error [get]
func (ctrl *AuthController) ErrorPage(c *gin.Context) {
	success(c, gin.H{"page": "error", "message": "Sorry, something went wrong"})
}

// ==================== 表单动作 ====================

// SignUp 注册
// @Summary 注册
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "邮箱"
// @Param password formData string true "密码"
// @Param role formData string false "customer 或 vendor"
// @Success 303 {string} string "跳回注册页并携带提示"
// @Router /auth/sign-up [post]
func (ctrl *AuthController) SignUp(c *gin.Context) {
	var form dto.SignUpForm
	_ = c.ShouldBind(&form)

	result := ctrl.credentialService.SignUp(c.Request.Context(), service.SignUpInput{
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
		Origin:   c.GetHeader("Origin"),
	})
	redirect(c, result)
}

// SignIn 登录，成功后写入会话 Cookie 并跳转到角色首页
// @Summary 登录
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "邮箱"
// @Param password formData string true "密码"
// @Success 303 {string} string "跳转角色首页或带错误提示回登录页"
// @Router /auth/sign-in [post]
func (ctrl *AuthController) SignIn(c *gin.Context) {
	var form dto.SignInForm
	_ = c.ShouldBind(&form)

	result, session := ctrl.credentialService.SignIn(c.Request.Context(), form.Email, form.Password)
	if result.OK() && session != nil {
		middleware.SetSessionCookies(c, ctrl.cookies, session)
	}
	redirect(c, result)
}

// ForgotPassword 发送重置邮件
// @Summary 找回密码
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "邮箱"
// @Param callbackUrl formData string false "站内跳转地址"
// @Success 303 {string} string "跳回找回密码页并携带提示"
// @Router /auth/forgot-password [post]
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var form dto.ForgotPasswordForm
	_ = c.ShouldBind(&form)

	result := ctrl.credentialService.RequestPasswordReset(c.Request.Context(), form.Email, c.GetHeader("Origin"), form.CallbackURL)
	redirect(c, result)
}

// ResetPassword 设置新密码
// @Summary 重置密码
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Param password formData string true "新密码"
// @Param confirmPassword formData string true "确认密码"
// @Success 303 {string} string "跳回重置密码页并携带提示"
// @Router /auth/reset-password [post]
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var form dto.ResetPasswordForm
	_ = c.ShouldBind(&form)

	result := ctrl.credentialService.ConfirmPasswordReset(c.Request.Context(), middleware.GetSession(c), form.Password, form.ConfirmPassword)
	redirect(c, result)
}

// SignOut 退出登录
// @Summary 退出登录
// @Tags Auth
// @Success 303 {string} string "跳转登录页"
// @Router /auth/sign-out [post]
func (ctrl *AuthController) SignOut(c *gin.Context) {
	result := ctrl.credentialService.SignOut(c.Request.Context(), middleware.GetSession(c))
	middleware.ClearSessionCookies(c, ctrl.cookies)
	redirect(c, result)
}

// Callback 邮件链接回调（注册确认 / 密码重置）
// @Summary 邮件链接回调
// @Tags Auth
// @Param token_hash query string true "链接令牌"
// @Param type query string true "signup / recovery / email"
// @Param redirect_to query string false "站内跳转地址"
// @Success 303 {string} string "校验成功后跳转"
// @Router /auth/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	var query dto.AuthCallbackQuery
	_ = c.ShouldBindQuery(&query)

	result, session := ctrl.credentialService.VerifyEmailLink(c.Request.Context(), query.TokenHash, query.Type, query.RedirectTo)
	if result.OK() && session != nil {
		middleware.SetSessionCookies(c, ctrl.cookies, session)
	}
	redirect(c, result)
}
