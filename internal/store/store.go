// Package store 提供按表划分的持久化客户端。
// 同一接口有两个实现：基于 gorm 的 SQL 适配器与基于 PostgREST 的 REST 适配器，
// 由配置在启动时选择其一。
package store

import (
	"context"
	"errors"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNotFound 在按 id 读取、更新或删除的行不存在时返回
	ErrNotFound = errors.New("record not found")
	// ErrConflict 在写入违反唯一约束时返回
	ErrConflict = errors.New("unique constraint violation")
)

const tracerName = "github.com/portfoliocms/internal/store"

// tracer 每次从全局 provider 取，启动后安装的 SDK provider 也能生效
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Order 描述一个排序列，Column 为数据库列名。
type Order struct {
	Column string
	Desc   bool
}

// Query 描述列表读取条件。Where 为列名到值的等值过滤。
type Query struct {
	Where map[string]any
	Order []Order
	Limit int
}

// Patch 是部分更新，键为数据库列名。值为 nil 时写入 NULL。
type Patch map[string]any

// Store 是单表的读写客户端。
type Store[T any] interface {
	List(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, patch Patch) (*T, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context, where map[string]any) (int64, error)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
