package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm/schema"
)

// RESTStore 通过 PostgREST（例如 Supabase）的 HTTP 接口访问表数据。
// 行在 JSON 中以数据库列名为键，映射复用模型上的 gorm schema。
type RESTStore[T any] struct {
	client *postgrest.Client
	schema *schema.Schema
}

// RESTOptions 描述 PostgREST 连接信息。
type RESTOptions struct {
	BaseURL string
	APIKey  string
	// Schema 为 Postgres schema，默认 public
	Schema    string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// NewRESTStore 构造 RESTStore。BaseURL 为项目根地址，不含 /rest/v1。
func NewRESTStore[T any](opts RESTOptions) (*RESTStore[T], error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("rest store: base url is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("rest store: api key is required")
	}

	sch, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}

	client := postgrest.NewClient(baseURL+"/rest/v1", opts.Schema, nil)
	if client.ClientError != nil {
		return nil, fmt.Errorf("rest store: %w", client.ClientError)
	}
	client.SetApiKey(opts.APIKey).SetAuthToken(opts.APIKey)
	client.Transport.Parent = restTransport(opts)

	return &RESTStore[T]{client: client, schema: sch}, nil
}

// restTransport 为没有自带超时的 postgrest 客户端限制响应头等待时间
func restTransport(opts RESTOptions) http.RoundTripper {
	if opts.Transport != nil {
		return opts.Transport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = timeout
	return base
}

func (s *RESTStore[T]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "store.rest."+op, trace.WithAttributes(
		attribute.String("db.table", s.schema.Table),
	))
}

// from 开始一次查询；postgrest 客户端不接收 context，取消只在发出请求前生效
func (s *RESTStore[T]) from(ctx context.Context) (*postgrest.QueryBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.client.From(s.schema.Table), nil
}

func (s *RESTStore[T]) List(ctx context.Context, q Query) (items []T, err error) {
	ctx, span := s.start(ctx, "list")
	defer func() { endSpan(span, err) }()

	qb, err := s.from(ctx)
	if err != nil {
		return nil, err
	}
	filter := applyWhere(qb.Select("*", "", false), q.Where)
	for _, order := range q.Order {
		// 与 Postgres 默认一致：升序空值在后，降序空值在前
		filter = filter.Order(order.Column, &postgrest.OrderOpts{Ascending: !order.Desc, NullsFirst: order.Desc})
	}
	if q.Limit > 0 {
		filter = filter.Limit(q.Limit, "")
	}

	body, _, err := filter.Execute()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.schema.Table, restErr(err))
	}
	return s.decodeRows(ctx, body)
}

func (s *RESTStore[T]) Get(ctx context.Context, id string) (item *T, err error) {
	ctx, span := s.start(ctx, "get")
	defer func() { endSpan(span, err) }()

	qb, err := s.from(ctx)
	if err != nil {
		return nil, err
	}
	body, _, err := qb.Select("*", "", false).Eq("id", id).Limit(1, "").Execute()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.schema.Table, restErr(err))
	}
	return s.first(ctx, body)
}

func (s *RESTStore[T]) Insert(ctx context.Context, item *T) (_ *T, err error) {
	ctx, span := s.start(ctx, "insert")
	defer func() { endSpan(span, err) }()

	payload, err := json.Marshal(s.encodeRow(ctx, item))
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", s.schema.Table, err)
	}
	qb, err := s.from(ctx)
	if err != nil {
		return nil, err
	}
	body, _, err := qb.Insert(json.RawMessage(payload), false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.schema.Table, restErr(err))
	}
	return s.first(ctx, body)
}

func (s *RESTStore[T]) Update(ctx context.Context, id string, patch Patch) (item *T, err error) {
	ctx, span := s.start(ctx, "update")
	defer func() { endSpan(span, err) }()

	payload, err := json.Marshal(map[string]any(patch))
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", s.schema.Table, err)
	}
	qb, err := s.from(ctx)
	if err != nil {
		return nil, err
	}
	body, _, err := qb.Update(json.RawMessage(payload), "representation", "").Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.schema.Table, restErr(err))
	}
	return s.first(ctx, body)
}

func (s *RESTStore[T]) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, "delete")
	defer func() { endSpan(span, err) }()

	qb, err := s.from(ctx)
	if err != nil {
		return err
	}
	body, _, err := qb.Delete("representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.schema.Table, restErr(err))
	}
	_, err = s.first(ctx, body)
	return err
}

func (s *RESTStore[T]) DeleteAll(ctx context.Context) (err error) {
	ctx, span := s.start(ctx, "delete_all")
	defer func() { endSpan(span, err) }()

	qb, err := s.from(ctx)
	if err != nil {
		return err
	}
	// PostgREST 拒绝无过滤条件的 DELETE
	if _, _, err = qb.Delete("minimal", "").Not("id", "is", "null").Execute(); err != nil {
		return fmt.Errorf("delete all %s: %w", s.schema.Table, restErr(err))
	}
	return nil
}

func (s *RESTStore[T]) Count(ctx context.Context, where map[string]any) (total int64, err error) {
	ctx, span := s.start(ctx, "count")
	defer func() { endSpan(span, err) }()

	qb, err := s.from(ctx)
	if err != nil {
		return 0, err
	}
	_, total, err = applyWhere(qb.Select("id", "exact", true), where).Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.schema.Table, restErr(err))
	}
	return total, nil
}

// restErr 把 postgrest 的 "(code) message" 错误中的唯一约束冲突映射为 ErrConflict
func restErr(err error) error {
	if strings.HasPrefix(err.Error(), "("+pgUniqueViolation+")") {
		return ErrConflict
	}
	return err
}

func (s *RESTStore[T]) first(ctx context.Context, body []byte) (*T, error) {
	items, err := s.decodeRows(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (s *RESTStore[T]) encodeRow(ctx context.Context, item *T) map[string]any {
	rv := reflect.Indirect(reflect.ValueOf(item))
	row := make(map[string]any, len(s.schema.Fields))
	for _, field := range s.schema.Fields {
		if field.DBName == "" {
			continue
		}
		value, _ := field.ValueOf(ctx, rv)
		row[field.DBName] = value
	}
	return row
}

func (s *RESTStore[T]) decodeRows(ctx context.Context, body []byte) ([]T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []T{}, nil
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", s.schema.Table, err)
	}

	items := make([]T, len(rows))
	for i, row := range rows {
		rv := reflect.ValueOf(&items[i]).Elem()
		for column, raw := range row {
			field := s.schema.LookUpField(column)
			if field == nil || field.DBName == "" {
				continue
			}
			target := reflect.New(field.FieldType)
			if err := json.Unmarshal(raw, target.Interface()); err != nil {
				return nil, fmt.Errorf("decode %s.%s: %w", s.schema.Table, column, err)
			}
			field.ReflectValueOf(ctx, rv).Set(target.Elem())
		}
	}
	return items, nil
}

func applyWhere(filter *postgrest.FilterBuilder, where map[string]any) *postgrest.FilterBuilder {
	for _, column := range sortedKeys(where) {
		filter = filter.Eq(column, formatFilterValue(where[column]))
	}
	return filter
}

func formatFilterValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
