package store

import (
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

var schemaCache = &sync.Map{}

func parseSchema[T any]() (*schema.Schema, error) {
	sch, err := schema.Parse(new(T), schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", *new(T), err)
	}
	return sch, nil
}

// Columns 返回 JSON 字段名到数据库列名的映射，用于校验调用方传入的排序字段。
func Columns[T any]() (map[string]string, error) {
	sch, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}

	columns := make(map[string]string, len(sch.Fields))
	for _, field := range sch.Fields {
		if field.DBName == "" {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		columns[name] = field.DBName
	}
	return columns, nil
}

// TableName 返回 T 对应的表名。
func TableName[T any]() (string, error) {
	sch, err := parseSchema[T]()
	if err != nil {
		return "", err
	}
	return sch.Table, nil
}
