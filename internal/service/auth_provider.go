package service

import (
	"context"

	"marketplace_v1_202610/internal/model"
)

// ==================== 认证能力接口 ====================

// VerifyType 邮件链接类型
type VerifyType string

const (
	VerifySignUp   VerifyType = "signup"
	VerifyRecovery VerifyType = "recovery"
	VerifyEmail    VerifyType = "email"
)

// AuthProvider 外部认证能力
// supabase: GoTrue REST API；local: 本库自带的 gorm + bcrypt + JWT 实现
type AuthProvider interface {
	SignUp(ctx context.Context, email, password, redirectTo string, metadata map[string]interface{}) (*model.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, accessToken, password string) error
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*model.Identity, error)
	GetSession(ctx context.Context, accessToken string) (*model.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error)
	VerifyOTP(ctx context.Context, tokenHash string, verifyType VerifyType) (*model.Session, error)
}

// RoleLookup 角色查询
type RoleLookup interface {
	LookupRole(ctx context.Context, identityID string) (model.Role, error)
}
