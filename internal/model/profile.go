package model

// Profile 用户档案，与 Identity 一一对应
// 角色字段是访问门禁的唯一依据
type Profile struct {
	BaseModel
	Role      Role   `gorm:"size:20;not null;default:'customer';index" json:"role"`
	Username  string `gorm:"size:100" json:"username"`
	FullName  string `gorm:"size:200" json:"full_name"`
	AvatarURL string `gorm:"size:512" json:"avatar_url"`
	Email     string `gorm:"size:255;index" json:"email"`
}

func (Profile) TableName() string {
	return "profiles"
}
