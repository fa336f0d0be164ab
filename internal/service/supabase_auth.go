package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"marketplace_v1_202610/internal/model"
)

// ==================== SupabaseAuthProvider GoTrue 客户端 ====================

// SupabaseAuthConfig GoTrue 客户端配置
type SupabaseAuthConfig struct {
	BaseURL string // 项目地址，如 https://xyz.supabase.co
	AnonKey string // 公开 API Key
	Timeout time.Duration
}

// SupabaseAuthProvider 通过 REST 调用托管认证服务
type SupabaseAuthProvider struct {
	client *resty.Client
}

// NewSupabaseAuthProvider 创建 GoTrue 客户端
func NewSupabaseAuthProvider(cfg *SupabaseAuthConfig) *SupabaseAuthProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/auth/v1").
		SetTimeout(timeout).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SupabaseAuthProvider{client: client}
}

var _ AuthProvider = (*SupabaseAuthProvider)(nil)

// ==================== 响应结构 ====================

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *gotrueUser `json:"user"`
}

// gotrueSignUpResp 开启邮箱确认时返回用户，否则返回会话
type gotrueSignUpResp struct {
	gotrueUser
	User *gotrueUser `json:"user"`
}

// gotrueError 不同版本的错误字段不一致
type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ==================== 接口实现 ====================

func (p *SupabaseAuthProvider) SignUp(ctx context.Context, email, password, redirectTo string, metadata map[string]interface{}) (*model.Identity, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var out gotrueSignUpResp
	req := p.client.R().SetContext(ctx).SetBody(body).SetResult(&out)
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	if err := p.do(req, http.MethodPost, "/signup"); err != nil {
		return nil, err
	}

	if out.User != nil {
		return &model.Identity{ID: out.User.ID, Email: out.User.Email}, nil
	}
	return &model.Identity{ID: out.ID, Email: out.Email}, nil
}

func (p *SupabaseAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	var out gotrueSession
	req := p.client.R().SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out)
	if err := p.do(req, http.MethodPost, "/token"); err != nil {
		return nil, err
	}
	return out.toSession(), nil
}

func (p *SupabaseAuthProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	req := p.client.R().SetContext(ctx).SetBody(map[string]string{"email": email})
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	return p.do(req, http.MethodPost, "/recover")
}

func (p *SupabaseAuthProvider) UpdateUser(ctx context.Context, accessToken, password string) error {
	req := p.client.R().SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]string{"password": password})
	return p.do(req, http.MethodPut, "/user")
}

func (p *SupabaseAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	req := p.client.R().SetContext(ctx).SetAuthToken(accessToken)
	return p.do(req, http.MethodPost, "/logout")
}

func (p *SupabaseAuthProvider) GetUser(ctx context.Context, accessToken string) (*model.Identity, error) {
	if accessToken == "" {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}

	var out gotrueUser
	req := p.client.R().SetContext(ctx).SetAuthToken(accessToken).SetResult(&out)
	if err := p.do(req, http.MethodGet, "/user"); err != nil {
		return nil, err
	}
	return &model.Identity{ID: out.ID, Email: out.Email}, nil
}

// GetSession 远端不提供单独的会话查询，用 GetUser 校验 Token 后组装
func (p *SupabaseAuthProvider) GetSession(ctx context.Context, accessToken string) (*model.Session, error) {
	user, err := p.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &model.Session{AccessToken: accessToken, User: user}, nil
}

func (p *SupabaseAuthProvider) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	var out gotrueSession
	req := p.client.R().SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&out)
	if err := p.do(req, http.MethodPost, "/token"); err != nil {
		return nil, err
	}
	return out.toSession(), nil
}

func (p *SupabaseAuthProvider) VerifyOTP(ctx context.Context, tokenHash string, verifyType VerifyType) (*model.Session, error) {
	var out gotrueSession
	req := p.client.R().SetContext(ctx).
		SetBody(map[string]string{"token_hash": tokenHash, "type": string(verifyType)}).
		SetResult(&out)
	if err := p.do(req, http.MethodPost, "/verify"); err != nil {
		return nil, err
	}
	return out.toSession(), nil
}

// ==================== 内部方法 ====================

// do 发送请求，4xx 转为 AuthError，网络错误与 5xx 原样包装
func (p *SupabaseAuthProvider) do(req *resty.Request, method, path string) error {
	var apiErr gotrueError
	req.SetError(&apiErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("请求认证服务失败: %w", err)
	}

	if !resp.IsError() {
		return nil
	}

	msg := apiErr.text()
	if msg == "" {
		msg = fmt.Sprintf("auth service returned HTTP %d", resp.StatusCode())
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("认证服务异常: %s", msg)
	}
	return &AuthError{Message: msg}
}

func (s *gotrueSession) toSession() *model.Session {
	session := &model.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	switch {
	case s.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if s.User != nil {
		session.User = &model.Identity{ID: s.User.ID, Email: s.User.Email}
	}
	return session
}
