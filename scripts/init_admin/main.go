package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/portfoliocms/internal/app"
	"github.com/portfoliocms/internal/config"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
)

// 根据 ADMIN_EMAIL / ADMIN_PASSWORD 初始化管理员；传入 -reset 时清空用户表后重建
func main() {
	reset := flag.String("reset", "", "ADMIN_RESET_TOKEN value; deletes all users and recreates the admin")
	flag.Parse()

	cfg := config.Load()

	var (
		stores *app.Stores
		err    error
	)
	if cfg.StoreBackend == "rest" {
		stores, err = app.RESTStores(store.RESTOptions{BaseURL: cfg.RESTURL, APIKey: cfg.RESTServiceKey, Schema: cfg.RESTSchema})
	} else {
		if err = db.Init(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, URL: cfg.DatabaseURL}); err == nil {
			stores, err = app.SQLStores(db.DB)
		}
	}
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	auth := app.NewServices(stores, service.Options{}, service.AuthConfig{
		Admin:      cfg.Admin,
		ResetToken: cfg.ResetToken,
	}).Auth

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *reset != "" {
		user, err := auth.ResetAdmin(ctx, *reset)
		if err != nil {
			log.Fatalf("重置管理员失败: %v", err)
		}
		fmt.Printf("管理员已重置: %s (%s)\n", user.Email, user.ID)
		return
	}

	user, created, err := auth.EnsureAdminExists(ctx)
	if err != nil {
		log.Fatalf("初始化管理员失败: %v", err)
	}
	if !created {
		fmt.Printf("管理员已存在，无需初始化: %s\n", user.Email)
		return
	}
	fmt.Printf("管理员创建成功: %s\n", user.Email)
}
