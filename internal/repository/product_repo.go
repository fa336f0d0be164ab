package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// Upsert 按 id 写入或更新商品元数据，vendor_id 一经写入不再变更
	Upsert(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	SetActive(ctx context.Context, id string, active bool) error

	// 列表查询（不分页）
	ListActive(ctx context.Context) ([]model.Product, error)
	ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error)

	// 对账
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// 统计
	CountActive(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Upsert(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "price", "category",
			"stock", "image_name", "is_active", "updated_at",
		}),
	}).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *productRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// ExistingIDs 返回 ids 中已有元数据行的集合
func (r *productRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

func (r *productRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
