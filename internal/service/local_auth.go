package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/pkg/utils"
)

// ==================== LocalAuthProvider 本地认证 ====================

// LocalAuthProvider 基于本库数据库的认证实现
// 账号存 auth_users，密码 bcrypt，会话为 HS256 JWT；
// 验证链接不发邮件，直接写日志
type LocalAuthProvider struct {
	users repository.AuthUserRepository
	jwt   *middleware.JWTManager
	// codes 保存验证链接与已注销的 Token ID
	codes   *cache.Cache
	codeTTL time.Duration
	send    LinkSender
}

// LinkSender 投递验证链接
type LinkSender func(userID string, verifyType VerifyType, link string)

func logLink(userID string, verifyType VerifyType, link string) {
	zap.S().Infof("[LocalAuth] %s 验证链接 (user=%s): %s", verifyType, userID, link)
}

type verifyEntry struct {
	UserID string
	Type   VerifyType
}

// NewLocalAuthProvider 创建本地认证
func NewLocalAuthProvider(users repository.AuthUserRepository, jwtManager *middleware.JWTManager) *LocalAuthProvider {
	return &LocalAuthProvider{
		users:   users,
		jwt:     jwtManager,
		codes:   cache.New(time.Hour, 10*time.Minute),
		codeTTL: time.Hour,
		send:    logLink,
	}
}

// SetLinkSender 替换链接投递方式，默认写日志
func (p *LocalAuthProvider) SetLinkSender(send LinkSender) {
	if send == nil {
		send = logLink
	}
	p.send = send
}

var _ AuthProvider = (*LocalAuthProvider)(nil)

// ==================== 注册 / 登录 ====================

func (p *LocalAuthProvider) SignUp(ctx context.Context, email, password, redirectTo string, metadata map[string]interface{}) (*model.Identity, error) {
	email = normalizeEmail(email)

	exists, err := p.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &AuthError{Message: ErrUserAlreadyExists.Error(), Err: ErrUserAlreadyExists}
	}

	if len(password) < 6 {
		return nil, &AuthError{Message: "Password should be at least 6 characters."}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.AuthUser{
		Email:        email,
		PasswordHash: string(hashed),
		UserMetadata: metadata,
	}
	user.ID = uuid.NewString()

	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := p.issueLink(user.ID, VerifySignUp, redirectTo); err != nil {
		return nil, err
	}

	return user.Identity(), nil
}

func (p *LocalAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := p.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &AuthError{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &AuthError{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
	}

	if !user.Confirmed() {
		return nil, &AuthError{Message: ErrEmailNotConfirmed.Error(), Err: ErrEmailNotConfirmed}
	}

	if err := p.users.UpdateLastSignIn(ctx, user.ID); err != nil {
		zap.S().Warnf("[LocalAuth] 更新最近登录时间失败 user=%s: %v", user.ID, err)
	}

	return p.jwt.GenerateSession(user.Identity())
}

// ==================== 密码 ====================

// ResetPasswordForEmail 未注册的邮箱静默返回成功
func (p *LocalAuthProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	user, err := p.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return p.issueLink(user.ID, VerifyRecovery, redirectTo)
}

func (p *LocalAuthProvider) UpdateUser(ctx context.Context, accessToken, password string) error {
	claims, err := p.parse(accessToken, middleware.SubjectAccess)
	if err != nil {
		return err
	}

	if len(password) < 6 {
		return &AuthError{Message: "Password should be at least 6 characters."}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return p.users.UpdatePassword(ctx, claims.UserID, string(hashed))
}

// ==================== 会话 ====================

// SignOut 注销 Access Token，直到其自然过期
func (p *LocalAuthProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.parse(accessToken, middleware.SubjectAccess)
	if err != nil {
		return err
	}
	p.revoke(claims)
	return nil
}

func (p *LocalAuthProvider) GetUser(ctx context.Context, accessToken string) (*model.Identity, error) {
	claims, err := p.parse(accessToken, middleware.SubjectAccess)
	if err != nil {
		return nil, err
	}

	user, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}
	return user.Identity(), nil
}

func (p *LocalAuthProvider) GetSession(ctx context.Context, accessToken string) (*model.Session, error) {
	user, err := p.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	claims, err := p.parse(accessToken, middleware.SubjectAccess)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// RefreshSession Refresh Token 只能使用一次
func (p *LocalAuthProvider) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	claims, err := p.parse(refreshToken, middleware.SubjectRefresh)
	if err != nil {
		return nil, err
	}

	user, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}

	p.revoke(claims)
	return p.jwt.GenerateSession(user.Identity())
}

// VerifyOTP 校验邮件链接，链接用完即焚
func (p *LocalAuthProvider) VerifyOTP(ctx context.Context, tokenHash string, verifyType VerifyType) (*model.Session, error) {
	key := "verify:" + utils.HashToken(tokenHash)
	val, ok := p.codes.Get(key)
	if !ok {
		return nil, &AuthError{Message: ErrInvalidVerifyToken.Error(), Err: ErrInvalidVerifyToken}
	}

	entry := val.(verifyEntry)
	if !sameVerifyType(entry.Type, verifyType) {
		return nil, &AuthError{Message: ErrInvalidVerifyToken.Error(), Err: ErrInvalidVerifyToken}
	}
	p.codes.Delete(key)

	user, err := p.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &AuthError{Message: ErrInvalidVerifyToken.Error(), Err: ErrInvalidVerifyToken}
	}

	// 能收到任一类型的邮件都说明邮箱有效
	if err := p.users.MarkConfirmed(ctx, user.ID); err != nil {
		return nil, err
	}

	return p.jwt.GenerateSession(user.Identity())
}

// ==================== 内部方法 ====================

func (p *LocalAuthProvider) parse(token string, subject string) (*middleware.UserClaims, error) {
	if token == "" {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}

	claims, err := p.jwt.ParseToken(token)
	if err != nil || claims.Subject != subject {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}

	if _, revoked := p.codes.Get("revoked:" + claims.ID); revoked {
		return nil, &AuthError{Message: ErrInvalidSession.Error(), Err: ErrInvalidSession}
	}
	return claims, nil
}

func (p *LocalAuthProvider) revoke(claims *middleware.UserClaims) {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	p.codes.Set("revoked:"+claims.ID, true, ttl)
}

// issueLink 生成验证链接并投递
func (p *LocalAuthProvider) issueLink(userID string, verifyType VerifyType, redirectTo string) error {
	token, err := utils.GenerateToken(32)
	if err != nil {
		return err
	}
	p.codes.Set("verify:"+utils.HashToken(token), verifyEntry{UserID: userID, Type: verifyType}, p.codeTTL)

	p.send(userID, verifyType, buildVerifyLink(redirectTo, token, verifyType))
	return nil
}

func buildVerifyLink(redirectTo, token string, verifyType VerifyType) string {
	u, err := url.Parse(redirectTo)
	if err != nil || redirectTo == "" {
		u = &url.URL{Path: "/auth/callback"}
	}
	q := u.Query()
	q.Set("token_hash", token)
	q.Set("type", string(verifyType))
	u.RawQuery = q.Encode()
	return u.String()
}

func sameVerifyType(issued, presented VerifyType) bool {
	if issued == presented {
		return true
	}
	// 注册确认链接也可能以 email 类型回调
	return issued == VerifySignUp && presented == VerifyEmail
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAuthError 判断是否为认证服务拒绝
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
