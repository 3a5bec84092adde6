package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

var (
	initOnce sync.Once
	initErr  error
)

// Options 描述如何打开关系型存储。
type Options struct {
	// Driver 取值 sqlite 或 postgres，空值视为 sqlite。
	Driver string
	// Path 为 SQLite 文件路径，空值回退到 portfolio.db。
	Path string
	// URL 为 PostgreSQL 连接串。
	URL    string
	Silent bool
}

// Init 在进程内只执行一次：打开连接、自动迁移并写入全局 DB。
// 后续调用直接返回首次的结果。
func Init(opts Options) error {
	initOnce.Do(func() {
		gdb, err := Open(opts)
		if err != nil {
			initErr = err
			return
		}
		DB = gdb
	})
	return initErr
}

// Open 根据 Options 建立连接并执行自动迁移。
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{TranslateError: true}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// 自动迁移模式，为全部内容模型创建表
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return gdb, nil
}

// Models 返回参与迁移的全部模型。
func Models() []any {
	return []any{
		&User{},
		&About{},
		&Project{},
		&Experience{},
		&Education{},
		&Skill{},
		&Certification{},
		&Award{},
		&Contact{},
	}
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "portfolio.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(path), nil
	case "postgres", "postgresql":
		url := strings.TrimSpace(opts.URL)
		if url == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		return postgres.Open(url), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
