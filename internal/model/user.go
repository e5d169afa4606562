package model

type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Email        string `gorm:"size:100" json:"email"`

	// 角色 (admin 负责上传/重建，user 只能提问)
	Role string `gorm:"default:'user'" json:"role"`
}
