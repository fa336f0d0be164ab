package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuthUser 本地认证账号（仅 local 认证提供者使用）
// 插入后由数据库触发器生成对应的 Profile
type AuthUser struct {
	BaseModel
	Email            string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string            `gorm:"size:255;not null" json:"-"`
	EmailConfirmedAt *time.Time        `json:"email_confirmed_at"`
	LastSignInAt     *time.Time        `json:"last_sign_in_at"`
	UserMetadata     datatypes.JSONMap `json:"user_metadata"`
}

func (AuthUser) TableName() string {
	return "auth_users"
}

// Confirmed 邮箱是否已验证
func (u *AuthUser) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Identity 转换为对外身份
func (u *AuthUser) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}
