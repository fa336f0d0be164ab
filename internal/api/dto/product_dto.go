package dto

// ==================== 请求 DTO ====================

// UploadProductForm 商品上传表单（multipart），图片字段名为 image
type UploadProductForm struct {
	Name        string  `form:"name"`
	Description string  `form:"description"`
	Price       float64 `form:"price"`
	Category    string  `form:"category"`
	Stock       int     `form:"stock"`
}

// SetActiveRequest 上下架请求
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ==================== 响应 DTO ====================

// ProductListResp 商品列表响应
type ProductListResp struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

// UploadFailure 元数据写入失败时返回给调用方的定位信息
type UploadFailure struct {
	ProductID string `json:"product_id"`
	ObjectKey string `json:"object_key"`
}
