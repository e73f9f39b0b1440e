// Package main 初始化数据库表结构
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"idea-forge-api/internal/app"
	"idea-forge-api/internal/config"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting database bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Database.Postgres.Enabled {
		fmt.Println("Postgres is disabled, nothing to migrate.")
		return
	}

	ctx := context.Background()

	// 2. 连接数据库并迁移
	cfg.Database.Postgres.AutoMigrate = true
	client, cleanup, err := app.ProvidePostgresClient(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	defer cleanup()

	// 3. 检查连通性
	if err := client.HealthCheck(ctx); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	fmt.Println("Bootstrap completed successfully!")
}
