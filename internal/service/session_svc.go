package service

import (
	"context"

	"go.uber.org/zap"

	"marketplace_v1_202610/internal/model"
)

// ==================== SessionResolver 会话解析 ====================

// SessionResolver 把请求携带的 Token 解析为身份
type SessionResolver struct {
	provider AuthProvider
}

// NewSessionResolver 创建会话解析器
func NewSessionResolver(provider AuthProvider) *SessionResolver {
	return &SessionResolver{provider: provider}
}

// Resolve 解析身份
// 返回 nil 身份表示匿名；refreshed 非 nil 时调用方需要回写新的会话 Cookie。
// 解析失败一律按匿名处理，不向调用方返回错误
func (r *SessionResolver) Resolve(ctx context.Context, accessToken, refreshToken string) (identity *model.Identity, refreshed *model.Session) {
	if accessToken != "" {
		user, err := r.provider.GetUser(ctx, accessToken)
		if err == nil && user != nil && user.ID != "" {
			return user, nil
		}
		if err != nil && !IsAuthError(err) {
			zap.S().Warnf("[Session] 校验 Token 失败: %v", err)
		}
	}

	if refreshToken == "" {
		return nil, nil
	}

	session, err := r.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if !IsAuthError(err) {
			zap.S().Warnf("[Session] 刷新会话失败: %v", err)
		}
		return nil, nil
	}
	if session.User == nil || session.User.ID == "" {
		user, err := r.provider.GetUser(ctx, session.AccessToken)
		if err != nil {
			return nil, nil
		}
		session.User = user
	}
	return session.User, session
}
