package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// SQLStore 使用 gorm 访问 SQLite 或 PostgreSQL。
type SQLStore[T any] struct {
	db    *gorm.DB
	table string
}

// NewSQLStore 构造 SQLStore
func NewSQLStore[T any](gdb *gorm.DB) (*SQLStore[T], error) {
	if gdb == nil {
		return nil, errors.New("sql store: database not initialized")
	}
	table, err := TableName[T]()
	if err != nil {
		return nil, err
	}
	return &SQLStore[T]{db: gdb, table: table}, nil
}

func (s *SQLStore[T]) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "store.sql."+op, trace.WithAttributes(
		attribute.String("db.table", s.table),
	))
}

func (s *SQLStore[T]) scoped(ctx context.Context, where map[string]any) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(new(T))
	for _, column := range sortedKeys(where) {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: where[column]})
	}
	return tx
}

func (s *SQLStore[T]) List(ctx context.Context, q Query) (items []T, err error) {
	ctx, span := s.start(ctx, "list")
	defer func() { endSpan(span, err) }()

	tx := s.scoped(ctx, q.Where)
	for _, order := range q.Order {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	items = make([]T, 0)
	if err = tx.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	return items, nil
}

func (s *SQLStore[T]) Get(ctx context.Context, id string) (item *T, err error) {
	ctx, span := s.start(ctx, "get")
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *SQLStore[T]) get(ctx context.Context, id string) (*T, error) {
	item := new(T)
	if err := s.scoped(ctx, map[string]any{"id": id}).Take(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.table, err)
	}
	return item, nil
}

func (s *SQLStore[T]) Insert(ctx context.Context, item *T) (_ *T, err error) {
	ctx, span := s.start(ctx, "insert")
	defer func() { endSpan(span, err) }()

	if err = s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, translateSQLError(fmt.Sprintf("insert %s", s.table), err)
	}
	return item, nil
}

func (s *SQLStore[T]) Update(ctx context.Context, id string, patch Patch) (item *T, err error) {
	ctx, span := s.start(ctx, "update")
	defer func() { endSpan(span, err) }()

	if len(patch) == 0 {
		return s.get(ctx, id)
	}

	res := s.scoped(ctx, map[string]any{"id": id}).Updates(map[string]any(patch))
	if res.Error != nil {
		return nil, translateSQLError(fmt.Sprintf("update %s", s.table), res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *SQLStore[T]) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, "delete")
	defer func() { endSpan(span, err) }()

	res := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", s.table, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore[T]) DeleteAll(ctx context.Context) (err error) {
	ctx, span := s.start(ctx, "delete_all")
	defer func() { endSpan(span, err) }()

	if err = s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete all %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore[T]) Count(ctx context.Context, where map[string]any) (total int64, err error) {
	ctx, span := s.start(ctx, "count")
	defer func() { endSpan(span, err) }()

	if err = s.scoped(ctx, where).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return total, nil
}

func translateSQLError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
