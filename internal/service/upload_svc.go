package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
	"marketplace_v1_202610/pkg/metrics"
)

// MaxImageSize 单张商品图片上限 5MB
const MaxImageSize = 5 * 1000 * 1000

// ==================== 输入定义 ====================

// UploadInput 商品上传表单
type UploadInput struct {
	Name        string     `label:"Product name" validate:"required,max=255"`
	Description string     `label:"Description" validate:"max=5000"`
	Price       float64    `label:"Price" validate:"gte=0,lte=1000000000,cents"`
	Category    string     `label:"Category" validate:"required,max=100"`
	Stock       int        `label:"Stock" validate:"gte=0"`
	Image       *ImageFile `label:"Product image" validate:"required"`
}

// ImageFile 上传的图片
type ImageFile struct {
	Filename    string    `label:"Image file name" validate:"required,max=255"`
	ContentType string    `label:"Image type" validate:"required,startswith=image/"`
	Size        int64     `label:"Image size" validate:"gt=0,lte=5000000"`
	Body        io.Reader `validate:"-"`
}

// ==================== UploadService 商品上传流程 ====================

// UploadService 两阶段写入：先传图片，再按同一关联 ID 写商品元数据
// 第二阶段失败不回滚，图片留给对账任务清理
type UploadService struct {
	products repository.ProductRepository
	roles    RoleLookup
	storage  StorageProvider
	validate *validator.Validate
	newID    func() string
}

// NewUploadService 创建上传服务
func NewUploadService(products repository.ProductRepository, roles RoleLookup, storage StorageProvider) *UploadService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	// price 列是 decimal(12,2)，多出的小数位会被数据库静默舍入
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		return hasAtMostTwoDecimals(fl.Field().Float())
	})

	return &UploadService{
		products: products,
		roles:    roles,
		storage:  storage,
		validate: v,
		newID:    uuid.NewString,
	}
}

// Upload 上传商品
func (s *UploadService) Upload(ctx context.Context, identity *model.Identity, in *UploadInput) (*model.Product, error) {
	product, err := s.upload(ctx, identity, in)
	metrics.ProductUploads.WithLabelValues(uploadOutcome(err)).Inc()
	return product, err
}

func (s *UploadService) upload(ctx context.Context, identity *model.Identity, in *UploadInput) (*model.Product, error) {
	// 1. 前置条件：已登录的商家
	if identity == nil || identity.ID == "" {
		return nil, &AuthError{Message: ErrUnauthenticated.Error(), Err: ErrUnauthenticated}
	}

	role, err := s.roles.LookupRole(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleVendor {
		return nil, &AuthError{Message: "only vendors can upload products"}
	}

	// 2. 表单校验
	if in == nil {
		return nil, &ValidationError{Message: "Product image is required"}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Image != nil {
		in.Image.Filename = model.SanitizeFilename(in.Image.Filename)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, &ValidationError{Message: validationMessage(err)}
	}
	if in.Image.Body == nil {
		return nil, &ValidationError{Message: "Product image is required"}
	}

	// 3. 生成关联 ID 并上传图片
	id := s.newID()
	key := model.ObjectKey(identity.ID, id, in.Image.Filename)

	if err := s.storage.Upload(ctx, key, in.Image.Body, in.Image.Size, in.Image.ContentType); err != nil {
		zap.S().Warnf("[Upload] 图片上传失败 key=%s: %v", key, err)
		return nil, &UploadError{ObjectKey: key, Err: err}
	}

	// 4. 写商品元数据
	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       math.Round(in.Price*100) / 100,
		Category:    in.Category,
		VendorID:    identity.ID,
		Stock:       in.Stock,
		ImageName:   in.Image.Filename,
		IsActive:    true,
	}
	product.ID = id

	if err := s.products.Upsert(ctx, product); err != nil {
		zap.S().Errorf("[Upload] 元数据写入失败，对象成为孤儿 product=%s key=%s: %v", id, key, err)
		return nil, &MetadataWriteError{ProductID: id, ObjectKey: key, Err: err}
	}

	zap.S().Infof("[Upload] 商品上传完成 product=%s vendor=%s", id, identity.ID)
	return product, nil
}

// ==================== 工具函数 ====================

func uploadOutcome(err error) string {
	var (
		validationErr *ValidationError
		uploadErr     *UploadError
		metadataErr   *MetadataWriteError
	)
	switch {
	case err == nil:
		return metrics.UploadSuccess
	case errors.As(err, &validationErr):
		return metrics.UploadValidationError
	case errors.As(err, &uploadErr):
		return metrics.UploadStorageError
	case errors.As(err, &metadataErr):
		return metrics.UploadMetadataError
	default:
		return metrics.UploadAuthError
	}
}

// validationMessage 取第一条校验错误，转成页面提示
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid product form"
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", field, minParam(fe))
	case "lte", "max":
		if fe.StructField() == "Size" {
			return "Product image must be 5MB or smaller"
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "startswith":
		return "Product image must be an image file"
	case "cents":
		return field + " must have at most 2 decimal places"
	default:
		return field + " is invalid"
	}
}

// hasAtMostTwoDecimals 换算成分后是否为整数，容差按数值大小放宽以吸收浮点误差
func hasAtMostTwoDecimals(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) <= 1e-12*math.Max(1, math.Abs(cents))
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return "1 byte"
	}
	return fe.Param()
}
