package service

import "errors"

var (
	// ErrNotFound 在指定 id 的记录不存在时返回
	ErrNotFound = errors.New("record not found")
	// ErrMissingFields 在创建时缺少必填字段，或更新时将必填字段置空时返回
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidInput 在字段取值非法时返回，例如 level 超出 1-10
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidOrder 在排序字段未知时返回
	ErrInvalidOrder = errors.New("invalid order field")
)
