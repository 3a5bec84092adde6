package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

type cachedItem struct {
	Name string `json:"name"`
}

func TestMemoryCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	c.Set(ctx, "portfolio:skills:list:default", []cachedItem{{Name: "Go"}})
	c.Set(ctx, "portfolio:awards:list:default", []cachedItem{{Name: "Prize"}})

	var got []cachedItem
	if !c.Get(ctx, "portfolio:skills:list:default", &got) || len(got) != 1 || got[0].Name != "Go" {
		t.Fatalf("expected cached skills, got %v", got)
	}

	c.Invalidate(ctx, "portfolio:skills:")
	if c.Get(ctx, "portfolio:skills:list:default", &got) {
		t.Fatalf("expected skills entry to be invalidated")
	}
	if !c.Get(ctx, "portfolio:awards:list:default", &got) {
		t.Fatalf("expected unrelated entry to survive")
	}
}

func TestRedisCacheMissThenSet(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	items := []cachedItem{{Name: "Go"}}
	payload, _ := json.Marshal(items)

	mock.ExpectGet("portfolio:skills:list:default").RedisNil()
	mock.ExpectSet("portfolio:skills:list:default", payload, 2*time.Minute).SetVal("OK")

	c := NewRedisCache(rdb, 2*time.Minute)
	var got []cachedItem
	if c.Get(ctx, "portfolio:skills:list:default", &got) {
		t.Fatalf("expected cache miss")
	}
	c.Set(ctx, "portfolio:skills:list:default", items)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestRedisCacheHit(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("portfolio:skills:latest").SetVal(`[{"name":"Go"}]`)

	var got []cachedItem
	if !NewRedisCache(rdb, 0).Get(ctx, "portfolio:skills:latest", &got) {
		t.Fatalf("expected cache hit")
	}
	if len(got) != 1 || got[0].Name != "Go" {
		t.Fatalf("unexpected cached value: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestRedisCacheCorruptEntryIsDeleted(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("portfolio:skills:latest").SetVal(`not-json`)
	mock.ExpectDel("portfolio:skills:latest").SetVal(1)

	var got []cachedItem
	if NewRedisCache(rdb, time.Minute).Get(ctx, "portfolio:skills:latest", &got) {
		t.Fatalf("expected corrupt entry to be treated as a miss")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestRedisCacheInvalidateScansPrefix(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "portfolio:skills:*", 200).SetVal([]string{"portfolio:skills:list:default", "portfolio:skills:latest"}, 0)
	mock.ExpectDel("portfolio:skills:list:default", "portfolio:skills:latest").SetVal(2)

	NewRedisCache(rdb, time.Minute).Invalidate(ctx, "portfolio:skills:")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}
