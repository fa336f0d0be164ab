package model

import (
	"path"
	"strings"
)

// Product 商品
// ID 即上传时生成的关联 ID，图片对象位于 {vendor_id}/{id}/{image_name}
type Product struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Category    string  `gorm:"size:100;index" json:"category"`
	VendorID    string  `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
	ImageName   string  `gorm:"size:255" json:"image_name"`
	IsActive    bool    `gorm:"not null;default:true;index" json:"is_active"`
}

func (Product) TableName() string {
	return "products"
}

// ObjectKey 商品图片在对象存储中的 key
func (p *Product) ObjectKey() string {
	return ObjectKey(p.VendorID, p.ID, p.ImageName)
}

// ObjectKey 拼接对象 key: {vendor_id}/{product_id}/{filename}
// filename 只保留最后一段，防止路径穿越
func ObjectKey(vendorID, productID, filename string) string {
	return vendorID + "/" + productID + "/" + SanitizeFilename(filename)
}

// ParseObjectKey 拆解对象 key，格式不符时 ok=false
func ParseObjectKey(key string) (vendorID, productID, filename string, ok bool) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return "", "", "", false
		}
	}
	if strings.Contains(parts[2], "/") {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// SanitizeFilename 去掉客户端文件名里的目录部分
func SanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
