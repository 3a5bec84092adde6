package db

// Contact 访客通过公开表单提交的留言。
// 创建时 Read 恒为 false，后台只能切换 Read。
type Contact struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Subject string `gorm:"not null" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	Read    bool   `gorm:"not null;default:false;index" json:"read"`
}

// TableName 返回自定义表名
func (Contact) TableName() string {
	return "contacts"
}
