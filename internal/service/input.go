package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/portfoliocms/internal/store"
)

var nullLiteral = []byte("null")

// Opt 区分三种状态：未提供、显式 null、给定值。
// 部分更新只写入 Set 为 true 的字段。
type Opt[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some 构造一个已赋值的 Opt
func Some[T any](value T) Opt[T] {
	return Opt[T]{Set: true, Value: value}
}

// Null 构造一个显式 null 的 Opt
func Null[T any]() Opt[T] {
	return Opt[T]{Set: true, Null: true}
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Date 接受 ISO-8601 日期或日期时间字符串，统一为 UTC。
// 空字符串解析为零值，由调用方按“未填写”处理。
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseDate 解析 ISO-8601 字符串
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidInput, raw)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
	}
	if strings.TrimSpace(raw) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// List 接受 JSON 字符串数组，或逗号分隔的字符串（后台表单常见写法）。
type List []string

func (l *List) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*l = splitList(raw)
		return nil
	}

	var items []string
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return fmt.Errorf("%w: expected a list of strings", ErrInvalidInput)
	}
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if value := strings.TrimSpace(item); value != "" {
			cleaned = append(cleaned, value)
		}
	}
	*l = cleaned
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			items = append(items, value)
		}
	}
	return items
}

// Number 接受 JSON 整数或整数字符串，小数与超出 int32 范围的值返回 ErrInvalidInput。
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}

	var raw string
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return fmt.Errorf("%w: expected a number", ErrInvalidInput)
		}
		raw = num.String()
	}

	parsed, err := parseNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func parseNumber(raw string) (Number, error) {
	if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return Number(v), nil
	}
	// 允许 5.0、1e2 这类整数值的写法
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidInput, raw)
	}
	return Number(f), nil
}

func filled(o Opt[string]) bool {
	return o.Set && !o.Null && strings.TrimSpace(o.Value) != ""
}

func filledDate(o Opt[Date]) bool {
	return o.Set && !o.Null && !o.Value.IsZero()
}

// requireStrings 要求创建时全部提供；更新时若提供了则不能为空。
func requireStrings(create bool, fields ...Opt[string]) error {
	for _, field := range fields {
		if create && !filled(field) {
			return ErrMissingFields
		}
		if !create && field.Set && !filled(field) {
			return ErrMissingFields
		}
	}
	return nil
}

func requireDates(create bool, fields ...Opt[Date]) error {
	for _, field := range fields {
		if create && !filledDate(field) {
			return ErrMissingFields
		}
		if !create && field.Set && !filledDate(field) {
			return ErrMissingFields
		}
	}
	return nil
}

func text(o Opt[string]) string {
	if !o.Set || o.Null {
		return ""
	}
	return strings.TrimSpace(o.Value)
}

func optionalText(o Opt[string]) *string {
	value := text(o)
	if value == "" {
		return nil
	}
	return &value
}

func optionalDate(o Opt[Date]) *time.Time {
	if !filledDate(o) {
		return nil
	}
	value := o.Value.Time
	return &value
}

func putText(p store.Patch, column string, o Opt[string]) {
	if o.Set && !o.Null {
		p[column] = strings.TrimSpace(o.Value)
	}
}

func putOptionalText(p store.Patch, column string, o Opt[string]) {
	if !o.Set {
		return
	}
	if value := optionalText(o); value != nil {
		p[column] = *value
		return
	}
	p[column] = nil
}

func putDate(p store.Patch, column string, o Opt[Date]) {
	if filledDate(o) {
		p[column] = o.Value.Time
	}
}

func putOptionalDate(p store.Patch, column string, o Opt[Date]) {
	if !o.Set {
		return
	}
	if value := optionalDate(o); value != nil {
		p[column] = *value
		return
	}
	p[column] = nil
}

func putBool(p store.Patch, column string, o Opt[bool]) {
	if o.Set && !o.Null {
		p[column] = o.Value
	}
}
