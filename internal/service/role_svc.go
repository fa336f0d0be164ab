package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
)

// ==================== RoleDirectory 角色目录 ====================

// RoleDirectory 身份 → 角色
type RoleDirectory struct {
	profiles repository.ProfileRepository
}

// NewRoleDirectory 创建角色目录
func NewRoleDirectory(profiles repository.ProfileRepository) *RoleDirectory {
	return &RoleDirectory{profiles: profiles}
}

var _ RoleLookup = (*RoleDirectory)(nil)

// LookupRole 查询角色
// 档案不存在或查询失败返回 ProfileLookupError；存储值无法识别时返回 RoleUnknown
func (d *RoleDirectory) LookupRole(ctx context.Context, identityID string) (model.Role, error) {
	profile, err := d.Profile(ctx, identityID)
	if err != nil {
		return model.RoleUnknown, err
	}
	return model.ParseRole(string(profile.Role)), nil
}

// Profile 查询完整档案
func (d *RoleDirectory) Profile(ctx context.Context, identityID string) (*model.Profile, error) {
	profile, err := d.profiles.GetByID(ctx, identityID)
	if err != nil {
		return nil, &ProfileLookupError{IdentityID: identityID, Err: err}
	}
	if profile == nil {
		return nil, &ProfileLookupError{IdentityID: identityID}
	}
	return profile, nil
}

// CountByRole 各角色人数（管理后台）
func (d *RoleDirectory) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	return d.profiles.CountByRole(ctx)
}

// AssignRole 管理员指定角色
// 档案不存在时补建（触发器上线前注册的身份没有档案）
func (d *RoleDirectory) AssignRole(ctx context.Context, identityID string, role model.Role) (*model.Profile, error) {
	if !model.IsValidID(identityID) {
		return nil, &ValidationError{Message: "User id is invalid"}
	}
	if !role.Known() {
		return nil, &ValidationError{Message: "Role must be one of customer, vendor, admin"}
	}

	profile, err := d.profiles.GetByID(ctx, identityID)
	if err != nil {
		return nil, &ProfileLookupError{IdentityID: identityID, Err: err}
	}

	if profile == nil {
		profile = &model.Profile{Role: role}
		profile.ID = identityID
		if err := d.profiles.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("创建档案失败: %w", err)
		}
		zap.S().Infof("[RoleDirectory] 补建档案 identity=%s role=%s", identityID, role)
		return profile, nil
	}

	if profile.Role == role {
		return profile, nil
	}
	if err := d.profiles.UpdateRole(ctx, identityID, role); err != nil {
		return nil, fmt.Errorf("修改角色失败: %w", err)
	}
	zap.S().Infof("[RoleDirectory] 角色变更 identity=%s %s -> %s", identityID, profile.Role, role)
	profile.Role = role
	return profile, nil
}
