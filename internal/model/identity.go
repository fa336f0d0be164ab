package model

import "time"

// Identity 认证服务返回的身份
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session 登录会话
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *Identity `json:"user"`
}
