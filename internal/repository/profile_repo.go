package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"marketplace_v1_202610/internal/model"
)

// ==================== ProfileRepository 用户档案仓库 ====================

// ProfileRepository 用户档案仓库接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
	CountByRole(ctx context.Context) (map[model.Role]int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建用户档案仓库
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create 创建档案
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByID 根据身份 ID 获取档案，不存在时返回 nil, nil
func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateRole 修改角色
func (r *profileRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByRole 按角色统计人数
func (r *profileRepository) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		result[model.ParseRole(row.Role)] += row.Count
	}
	return result, nil
}
