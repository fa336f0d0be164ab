package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace_v1_202610/internal/model"
)

// ==================== Cookie 配置 ====================

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"

	ContextKeyIdentity = "identity"
	ContextKeySession  = "session"
)

// CookieConfig 会话 Cookie 配置
type CookieConfig struct {
	Secure        bool
	Domain        string
	RefreshMaxAge time.Duration
}

// DefaultCookieConfig 默认 Cookie 配置
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{RefreshMaxAge: 7 * 24 * time.Hour}
}

// SessionResolver 会话解析能力
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string) (*model.Identity, *model.Session)
}

// ==================== Cookie 读写 ====================

// SetSessionCookies 写入会话 Cookie
func SetSessionCookies(c *gin.Context, cfg CookieConfig, session *model.Session) {
	if session == nil {
		return
	}
	accessAge := int(time.Until(session.ExpiresAt).Seconds())
	if accessAge <= 0 {
		accessAge = int(time.Hour.Seconds())
	}
	refreshAge := int(cfg.RefreshMaxAge.Seconds())
	if refreshAge <= 0 {
		refreshAge = int(DefaultCookieConfig().RefreshMaxAge.Seconds())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, session.AccessToken, accessAge, "/", cfg.Domain, cfg.Secure, true)
	if session.RefreshToken != "" {
		c.SetCookie(RefreshTokenCookie, session.RefreshToken, refreshAge, "/", cfg.Domain, cfg.Secure, true)
	}
}

// ClearSessionCookies 清除会话 Cookie
func ClearSessionCookies(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", cfg.Domain, cfg.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// requestTokens 读取请求携带的 Token，Authorization 头优先于 Cookie
func requestTokens(c *gin.Context) (accessToken, refreshToken string) {
	accessToken = BearerToken(c.GetHeader("Authorization"))
	if accessToken == "" {
		accessToken, _ = c.Cookie(AccessTokenCookie)
	}
	refreshToken, _ = c.Cookie(RefreshTokenCookie)
	return accessToken, refreshToken
}

func hasSessionCookie(c *gin.Context) bool {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return true
		}
	}
	return false
}

// ==================== Gin 中间件 ====================

// Session 解析请求身份并写入上下文
// 匿名请求照常放行，由后续的访问控制决定去向
func Session(resolver SessionResolver, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, refreshToken := requestTokens(c)
		if accessToken == "" && refreshToken == "" {
			c.Next()
			return
		}

		identity, refreshed := resolver.Resolve(c.Request.Context(), accessToken, refreshToken)
		if refreshed != nil {
			SetSessionCookies(c, cfg, refreshed)
			accessToken = refreshed.AccessToken
			refreshToken = refreshed.RefreshToken
		}

		if identity == nil {
			// 无法解析的会话 Cookie 随响应清除
			if hasSessionCookie(c) {
				ClearSessionCookies(c, cfg)
			}
		} else {
			c.Set(ContextKeyIdentity, identity)
			c.Set(ContextKeySession, &model.Session{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				User:         identity,
			})
		}
		c.Next()
	}
}

// GetIdentity 从上下文获取当前身份
func GetIdentity(c *gin.Context) *model.Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(*model.Identity); ok {
			return identity
		}
	}
	return nil
}

// GetSession 从上下文获取当前会话
func GetSession(c *gin.Context) *model.Session {
	if v, exists := c.Get(ContextKeySession); exists {
		if session, ok := v.(*model.Session); ok {
			return session
		}
	}
	return nil
}
