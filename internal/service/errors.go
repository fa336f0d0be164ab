package service

import (
	"errors"
	"fmt"
)

// ==================== 业务错误 ====================

// ValidationError 必填字段缺失或不一致，可在页面内直接提示
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError 认证服务拒绝了请求（账号密码错误、会话失效等）
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ProfileLookupError 已认证但查不到角色，本次请求按失败处理
type ProfileLookupError struct {
	IdentityID string
	Err        error
}

func (e *ProfileLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("查询用户档案失败 (%s): %v", e.IdentityID, e.Err)
	}
	return fmt.Sprintf("用户档案不存在 (%s)", e.IdentityID)
}

func (e *ProfileLookupError) Unwrap() error {
	return e.Err
}

// UploadError 对象存储拒绝或传输失败，用户可重试
type UploadError struct {
	ObjectKey string
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("上传图片失败 (%s): %v", e.ObjectKey, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// MetadataWriteError 图片已上传但商品元数据写入失败，对象成为孤儿，等待对账任务清理
type MetadataWriteError struct {
	ProductID string
	ObjectKey string
	Err       error
}

func (e *MetadataWriteError) Error() string {
	return fmt.Sprintf("写入商品元数据失败 (product=%s, object=%s): %v", e.ProductID, e.ObjectKey, e.Err)
}

func (e *MetadataWriteError) Unwrap() error {
	return e.Err
}

var (
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrCatalogFetch       = errors.New("could not load products")
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrUserAlreadyExists  = errors.New("User already registered")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidVerifyToken = errors.New("Email link is invalid or has expired")
	ErrProductNotFound    = errors.New("product not found")
	ErrNotProductOwner    = errors.New("product belongs to another vendor")
)
