package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace_v1_202610/internal/model"
)

// ==================== AuthUserRepository 本地认证账号仓库 ====================

// AuthUserRepository 本地认证账号仓库接口
type AuthUserRepository interface {
	Create(ctx context.Context, user *model.AuthUser) error
	GetByID(ctx context.Context, id string) (*model.AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id string, hashedPassword string) error
	MarkConfirmed(ctx context.Context, id string) error
	UpdateLastSignIn(ctx context.Context, id string) error
}

type authUserRepository struct {
	db *gorm.DB
}

// NewAuthUserRepository 创建账号仓库
func NewAuthUserRepository(db *gorm.DB) AuthUserRepository {
	return &authUserRepository{db: db}
}

// Create 创建账号
func (r *authUserRepository) Create(ctx context.Context, user *model.AuthUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取账号
func (r *authUserRepository) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取账号
func (r *authUserRepository) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail 检查邮箱是否已注册
func (r *authUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// UpdatePassword 更新密码
func (r *authUserRepository) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("password_hash", hashedPassword).Error
}

// MarkConfirmed 标记邮箱已验证
func (r *authUserRepository) MarkConfirmed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Update("email_confirmed_at", time.Now()).Error
}

// UpdateLastSignIn 更新最后登录时间
func (r *authUserRepository) UpdateLastSignIn(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("last_sign_in_at", time.Now()).Error
}
