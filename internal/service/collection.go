package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/portfoliocms/internal/service"

// Options 为各内容服务提供共享依赖。
type Options struct {
	Cache Cache
	// Now 用于测试时替换时钟
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Cache == nil {
		o.Cache = NoopCache()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Collection 封装单表的通用读写：生成 id、维护时间戳、默认排序与列表缓存。
// 各实体服务嵌入它，并只负责把输入映射为模型或补丁。
type Collection[T any, PT interface {
	*T
	db.Model
}] struct {
	store    store.Store[T]
	cache    Cache
	now      func() time.Time
	table    string
	columns  map[string]string
	defaults []store.Order

	// stampMu 保证同一进程内生成的时间戳单调递增
	stampMu   sync.Mutex
	lastStamp time.Time
}

func newCollection[T any, PT interface {
	*T
	db.Model
}](st store.Store[T], opts Options, defaults ...store.Order) *Collection[T, PT] {
	opts = opts.withDefaults()
	columns, err := store.Columns[T]()
	if err != nil {
		panic(err)
	}
	return &Collection[T, PT]{
		store:    st,
		cache:    opts.Cache,
		now:      opts.Now,
		table:    PT(new(T)).TableName(),
		columns:  columns,
		defaults: defaults,
	}
}

func (c *Collection[T, PT]) cachePrefix() string {
	return "portfolio:" + c.table + ":"
}

func (c *Collection[T, PT]) span(ctx context.Context, op string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, c.table+"."+op, trace.WithAttributes(attribute.String("entity", c.table)))
}

// ParseOrder 将 JSON 字段名与方向转换为排序条件，字段为空时返回 nil 使用默认排序。
func (c *Collection[T, PT]) ParseOrder(field, direction string) ([]store.Order, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	column, ok := c.columns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, field)
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return []store.Order{{Column: column}}, nil
	case "desc":
		return []store.Order{{Column: column, Desc: true}}, nil
	default:
		return nil, fmt.Errorf("%w: direction %s", ErrInvalidOrder, direction)
	}
}

// List 返回全部记录；未指定排序时使用实体默认排序。
func (c *Collection[T, PT]) List(ctx context.Context, orders ...store.Order) ([]T, error) {
	ctx, span := c.span(ctx, "list")
	defer span.End()

	if len(orders) == 0 {
		orders = c.defaults
	}

	key := c.cachePrefix() + "list:" + orderKey(orders)
	var cached []T
	if c.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := c.store.List(ctx, store.Query{Order: orders})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	c.cache.Set(ctx, key, items)
	return items, nil
}

// Latest 返回默认排序下的第一条记录，表为空时返回 nil, nil。
func (c *Collection[T, PT]) Latest(ctx context.Context) (*T, error) {
	ctx, span := c.span(ctx, "latest")
	defer span.End()

	key := c.cachePrefix() + "latest"
	var cached []T
	if c.cache.Get(ctx, key, &cached) {
		if len(cached) == 0 {
			return nil, nil
		}
		return &cached[0], nil
	}

	items, err := c.store.List(ctx, store.Query{Order: c.defaults, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("latest %s: %w", c.table, err)
	}
	c.cache.Set(ctx, key, items)
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	ctx, span := c.span(ctx, "get")
	defer span.End()

	item, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, c.wrap("get", err)
	}
	return item, nil
}

// Count 返回满足等值条件的记录数，where 的键为数据库列名。
func (c *Collection[T, PT]) Count(ctx context.Context, where map[string]any) (int64, error) {
	total, err := c.store.Count(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.table, err)
	}
	return total, nil
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	ctx, span := c.span(ctx, "delete")
	defer span.End()

	if err := c.store.Delete(ctx, id); err != nil {
		return c.wrap("delete", err)
	}
	c.cache.Invalidate(ctx, c.cachePrefix())
	return nil
}

// insert 生成 id 与时间戳后写入。
func (c *Collection[T, PT]) insert(ctx context.Context, item PT) (*T, error) {
	ctx, span := c.span(ctx, "create")
	defer span.End()

	meta := item.Meta()
	meta.ID = uuid.NewString()
	now := c.stamp(time.Time{})
	meta.CreatedAt = now
	meta.UpdatedAt = now

	created, err := c.store.Insert(ctx, (*T)(item))
	if err != nil {
		return nil, c.wrap("create", err)
	}
	c.cache.Invalidate(ctx, c.cachePrefix())
	return created, nil
}

// patch 只写入补丁中的列，并总是刷新 updated_at。
// id 与 created_at 由本层维护，补丁中出现时会被忽略。
func (c *Collection[T, PT]) patch(ctx context.Context, id string, patch store.Patch) (*T, error) {
	ctx, span := c.span(ctx, "update")
	defer span.End()

	current, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, c.wrap("update", err)
	}

	if patch == nil {
		patch = store.Patch{}
	}
	delete(patch, "id")
	delete(patch, "created_at")
	patch["updated_at"] = c.stamp(PT(current).Meta().UpdatedAt)

	updated, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return nil, c.wrap("update", err)
	}
	c.cache.Invalidate(ctx, c.cachePrefix())
	return updated, nil
}

// stamp 返回微秒精度的当前时间，保证晚于 previous 且不早于上一次生成的时间戳。
func (c *Collection[T, PT]) stamp(previous time.Time) time.Time {
	c.stampMu.Lock()
	defer c.stampMu.Unlock()

	now := c.now().UTC().Truncate(time.Microsecond)
	floor := previous
	if c.lastStamp.After(floor) {
		floor = c.lastStamp
	}
	if !floor.IsZero() && !now.After(floor) {
		now = floor.Add(time.Microsecond)
	}
	c.lastStamp = now
	return now
}

func (c *Collection[T, PT]) wrap(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", op, c.table, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, c.table, err)
}

func orderKey(orders []store.Order) string {
	if len(orders) == 0 {
		return "default"
	}
	parts := make([]string, 0, len(orders))
	for _, order := range orders {
		direction := "asc"
		if order.Desc {
			direction = "desc"
		}
		parts = append(parts, order.Column+"."+direction)
	}
	return strings.Join(parts, ",")
}
