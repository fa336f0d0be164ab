package controller

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace_v1_202610/internal/api/dto"
	"marketplace_v1_202610/internal/middleware"
	"marketplace_v1_202610/internal/service"
)

// ImageField 上传表单中的图片字段名
const ImageField = "image"

// maxUploadBody 上传请求体上限：图片上限加 1MB 表单开销
const maxUploadBody = service.MaxImageSize + 1<<20

const msgImageTooLarge = "Product image must be 5MB or smaller"

type ProductController struct {
	uploadService  *service.UploadService
	catalogService *service.CatalogService
}

func NewProductController(upload *service.UploadService, catalog *service.CatalogService) *ProductController {
	return &ProductController{uploadService: upload, catalogService: catalog}
}

// ==================== 查询接口 ====================

// ListAll 全部上架商品
// @Summary 全部上架商品（按创建时间倒序）
// @Tags Product
// @Produce json
// @Success 200 {object} dto.ProductListResp
// @Failure 500 {object} map[string]interface{}
// @Router /customer/products [get]
// @Router /admin/products [get]
func (ctrl *ProductController) ListAll(c *gin.Context) {
	products, err := ctrl.catalogService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, dto.ProductListResp{List: products, Total: len(products)})
}

// ListMine 当前商家的全部商品（含已下架）
// @Summary 我的商品
// @Tags Vendor
// @Produce json
// @Success 200 {object} dto.ProductListResp
// @Router /vendor/products [get]
func (ctrl *ProductController) ListMine(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	vendorID := ""
	if identity != nil {
		vendorID = identity.ID
	}
	ctrl.listByVendor(c, vendorID)
}

// ListByVendor 指定商家的全部商品
// @Summary 商家商品
// @Tags Admin
// @Produce json
// @Param vendor_id path string true "商家ID"
// @Success 200 {object} dto.ProductListResp
// @Router /admin/vendors/{vendor_id}/products [get]
func (ctrl *ProductController) ListByVendor(c *gin.Context) {
	ctrl.listByVendor(c, c.Param("vendor_id"))
}

func (ctrl *ProductController) listByVendor(c *gin.Context, vendorID string) {
	products, err := ctrl.catalogService.ListByVendor(c.Request.Context(), middleware.GetIdentity(c), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, dto.ProductListResp{List: products, Total: len(products)})
}

// ==================== 写入接口 ====================

// Upload 上传商品（图片 + 元数据）
// @Summary 上传商品
// @Tags Vendor
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "商品名称"
// @Param description formData string false "描述"
// @Param price formData number true "价格"
// @Param category formData string true "分类"
// @Param stock formData int false "库存"
// @Param image formData file true "商品图片（仅一张）"
// @Success 200 {object} service.ProductView
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Failure 500 {object} dto.UploadFailure
// @Router /vendor/products [post]
func (ctrl *ProductController) Upload(c *gin.Context) {
	// 在解析 multipart 之前限制大小，超限的请求体不落盘
	if c.Request.ContentLength > maxUploadBody {
		fail(c, http.StatusRequestEntityTooLarge, msgImageTooLarge, nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	var form dto.UploadProductForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, msgImageTooLarge, nil)
			return
		}
		fail(c, http.StatusBadRequest, "Invalid product form", nil)
		return
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, "Product image is required", nil)
		return
	}
	files := multipartForm.File[ImageField]
	if len(files) != 1 {
		fail(c, http.StatusBadRequest, "Exactly one product image is required", nil)
		return
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		zap.S().Warnf("[Product] 读取上传文件失败: %v", err)
		fail(c, http.StatusBadRequest, "Product image could not be read", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		}
	}

	product, err := ctrl.uploadService.Upload(c.Request.Context(), middleware.GetIdentity(c), &service.UploadInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Category:    form.Category,
		Stock:       form.Stock,
		Image: &service.ImageFile{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        file,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, ctrl.catalogService.View(product))
}

// SetActive 上下架
// @Summary 上下架商品
// @Tags Vendor
// @Accept json
// @Produce json
// @Param id path string true "商品ID"
// @Param request body dto.SetActiveRequest true "上下架状态"
// @Success 200 {object} service.ProductView
// @Failure 404 {object} map[string]interface{}
// @Router /vendor/products/{id} [patch]
func (ctrl *ProductController) SetActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "is_active is required", nil)
		return
	}

	view, err := ctrl.catalogService.SetListingActive(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, view)
}
