package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型
// 主键为预先生成的 UUID 字符串（外部身份 ID 或上传关联 ID），不使用自增
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidID 是否为带连字符的 36 位 UUID
// id/vendor_id 列是 uuid 类型，其他格式进 postgres 查询会直接报错
func IsValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
