package db

// User 定义了后台登录账号。Email 在数据库层唯一，用于兜底并发创建管理员的竞争。
// Password 只保存 bcrypt 哈希，永远不会被序列化。
type User struct {
	Base
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"size:120;not null" json:"name"`
}

// TableName 返回自定义表名
func (User) TableName() string {
	return "users"
}
