package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
)

// Input 是各实体请求体需要实现的校验接口
type Input interface {
	Validate(create bool) error
}

// ContentService 是 Resource 依赖的数据访问接口，各实体服务均满足它
type ContentService[T any, I Input] interface {
	List(ctx context.Context, orders ...store.Order) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in I) (*T, error)
	Update(ctx context.Context, id string, in I) (*T, error)
	Delete(ctx context.Context, id string) error
	ParseOrder(field, direction string) ([]store.Order, error)
}

// Resource 为一个实体提供统一的 GET/POST/PUT/DELETE 处理函数
type Resource[T any, I Input] struct {
	svc      ContentService[T, I]
	singular string
	plural   string
	logger   *slog.Logger
}

// NewResource 构造 Resource；singular 用于 404 文案，plural 用于列表失败文案
func NewResource[T any, I Input](svc ContentService[T, I], singular, plural string, logger *slog.Logger) *Resource[T, I] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resource[T, I]{svc: svc, singular: singular, plural: plural, logger: logger}
}

// List 返回全部记录；带 ?id= 时退化为单条读取。
// 支持 ?orderBy=<字段>&order=asc|desc 覆盖默认排序。
func (r *Resource[T, I]) List(c *gin.Context) {
	if c.Query("id") != "" {
		r.Get(c)
		return
	}

	orders, err := r.svc.ParseOrder(c.Query("orderBy"), c.Query("order"))
	if err != nil {
		r.fail(c, "fetch", r.plural, err)
		return
	}

	items, err := r.svc.List(c.Request.Context(), orders...)
	if err != nil {
		r.fail(c, "fetch", r.plural, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get 按路径参数或 ?id= 读取单条
func (r *Resource[T, I]) Get(c *gin.Context) {
	id := resolveID(c, false)
	if id == "" {
		respondError(c, http.StatusBadRequest, "ID is required")
		return
	}

	item, err := r.svc.Get(c.Request.Context(), id)
	if err != nil {
		r.fail(c, "fetch", lower(r.singular), err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *Resource[T, I]) Create(c *gin.Context) {
	var in I
	if !bindJSON(c, &in, "Invalid request body") {
		return
	}
	if err := in.Validate(true); err != nil {
		r.fail(c, "create", lower(r.singular), err)
		return
	}

	item, err := r.svc.Create(c.Request.Context(), in)
	if err != nil {
		r.fail(c, "create", lower(r.singular), err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update 的 id 取自请求体，其次是路径参数
func (r *Resource[T, I]) Update(c *gin.Context) {
	var in I
	if !bindJSON(c, &in, "Invalid request body") {
		return
	}

	id := resolveID(c, true)
	if id == "" {
		respondError(c, http.StatusBadRequest, "ID is required")
		return
	}
	if err := in.Validate(false); err != nil {
		r.fail(c, "update", lower(r.singular), err)
		return
	}

	item, err := r.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		r.fail(c, "update", lower(r.singular), err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete 的 id 取自 ?id= 或路径参数
func (r *Resource[T, I]) Delete(c *gin.Context) {
	id := resolveID(c, false)
	if id == "" {
		respondError(c, http.StatusBadRequest, "ID is required")
		return
	}

	if err := r.svc.Delete(c.Request.Context(), id); err != nil {
		r.fail(c, "delete", lower(r.singular), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Resource[T, I]) fail(c *gin.Context, verb, noun string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, r.singular+" not found")
	case errors.Is(err, service.ErrMissingFields):
		respondError(c, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "Invalid field value")
	case errors.Is(err, service.ErrInvalidOrder):
		respondError(c, http.StatusBadRequest, "Invalid sort field")
	default:
		r.logger.ErrorContext(c.Request.Context(), "request failed",
			"entity", r.plural,
			"op", verb,
			"request_id", c.GetString(requestIDKey),
			"error", err,
		)
		respondError(c, http.StatusInternalServerError, "Failed to "+verb+" "+noun)
	}
}
