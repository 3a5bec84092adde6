package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base 是所有实体共享的主键与时间戳字段。
// 时间戳由数据访问层显式写入，这里关闭 gorm 的自动赋值。
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// Meta 暴露嵌入的 Base，供泛型代码读写 id 与时间戳。
func (b *Base) Meta() *Base {
	return b
}

// Model 由每个持久化实体实现。
type Model interface {
	TableName() string
	Meta() *Base
}

// StringList 以 JSON 数组形式存储有序字符串列表。
type StringList []string

// Value 实现 driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

// MarshalJSON 保证空列表输出为 []。
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// GormDataType gorm common data type
func (StringList) GormDataType() string {
	return "json"
}

// GormDBDataType 按方言选择列类型
func (StringList) GormDBDataType(gdb *gorm.DB, _ *schema.Field) string {
	if gdb.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
