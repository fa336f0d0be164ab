package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
)

// ==================== 视图定义 ====================

// ProductView 带图片地址和展示价格的商品
type ProductView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Category     string    `json:"category"`
	VendorID     string    `json:"vendor_id"`
	Stock        int       `json:"stock"`
	IsActive     bool      `json:"is_active"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ==================== CatalogService 商品目录 ====================

// CatalogService 商品列表（不分页，一次取全）
type CatalogService struct {
	products repository.ProductRepository
	storage  StorageProvider
}

// NewCatalogService 创建目录服务
func NewCatalogService(products repository.ProductRepository, storage StorageProvider) *CatalogService {
	return &CatalogService{products: products, storage: storage}
}

// ListAll 全部上架商品，读取失败不返回部分结果
func (s *CatalogService) ListAll(ctx context.Context) ([]ProductView, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		zap.S().Errorf("[Catalog] 查询商品失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogFetch, err)
	}
	return s.decorate(products), nil
}

// ListByVendor 指定商家的全部商品，需要已登录
func (s *CatalogService) ListByVendor(ctx context.Context, identity *model.Identity, vendorID string) ([]ProductView, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthenticated
	}
	// 商家 ID 不是 UUID 时不可能有商品
	if !model.IsValidID(vendorID) {
		return []ProductView{}, nil
	}

	products, err := s.products.ListByVendor(ctx, vendorID)
	if err != nil {
		zap.S().Errorf("[Catalog] 查询商家商品失败 vendor=%s: %v", vendorID, err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogFetch, err)
	}
	return s.decorate(products), nil
}

// SetListingActive 商家上下架自己的商品
func (s *CatalogService) SetListingActive(ctx context.Context, identity *model.Identity, productID string, active bool) (*ProductView, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthenticated
	}
	if !model.IsValidID(productID) {
		return nil, ErrProductNotFound
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.VendorID != identity.ID {
		return nil, ErrNotProductOwner
	}

	if err := s.products.SetActive(ctx, productID, active); err != nil {
		return nil, err
	}
	product.IsActive = active

	view := s.View(product)
	return &view, nil
}

// CountActive 上架商品数（管理后台）
func (s *CatalogService) CountActive(ctx context.Context) (int64, error) {
	return s.products.CountActive(ctx)
}

// View 单个商品视图
func (s *CatalogService) View(p *model.Product) ProductView {
	return ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		PriceDisplay: FormatPrice(p.Price),
		Category:     p.Category,
		VendorID:     p.VendorID,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
		ImageURL:     s.storage.PublicURL(p.ObjectKey()),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (s *CatalogService) decorate(products []model.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, s.View(&products[i]))
	}
	return views
}
