package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"marketplace_v1_202610/internal/model"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey       string        // 签名密钥
	AccessTokenTTL  time.Duration // Access Token 有效期
	RefreshTokenTTL time.Duration // Refresh Token 有效期
	Issuer          string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:       "marketplace-secret-key-change-in-production",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "marketplace",
	}
}

const (
	SubjectAccess  = "access"
	SubjectRefresh = "refresh"
)

// ==================== Claims 定义 ====================

// UserClaims 用户声明
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ==================== JWTManager ====================

// JWTManager 负责签发与解析会话 Token
type JWTManager struct {
	cfg JWTConfig
}

// NewJWTManager 创建 JWTManager，零值字段使用默认配置
func NewJWTManager(cfg *JWTConfig) *JWTManager {
	def := DefaultJWTConfig()
	if cfg == nil {
		return &JWTManager{cfg: *def}
	}
	c := *cfg
	if c.SecretKey == "" {
		c.SecretKey = def.SecretKey
	}
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = def.AccessTokenTTL
	}
	if c.RefreshTokenTTL <= 0 {
		c.RefreshTokenTTL = def.RefreshTokenTTL
	}
	if c.Issuer == "" {
		c.Issuer = def.Issuer
	}
	return &JWTManager{cfg: c}
}

func (m *JWTManager) generate(user *model.Identity, subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// GenerateSession 生成 Access + Refresh Token 对
func (m *JWTManager) GenerateSession(user *model.Identity) (*model.Session, error) {
	accessToken, expiresAt, err := m.generate(user, SubjectAccess, m.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := m.generate(user, SubjectRefresh, m.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         &model.Identity{ID: user.ID, Email: user.Email},
	}, nil
}

// ParseToken 解析 Token 并校验签名算法与签发者
func (m *JWTManager) ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.cfg.SecretKey), nil
	}, jwt.WithIssuer(m.cfg.Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== 辅助函数 ====================

// BearerToken 从 Authorization 头中取出 Bearer Token，格式不符返回空串
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
