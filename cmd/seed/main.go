package main

import (
	"context"
	"os"
	"strings"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/service"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode != "release"); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	password := strings.TrimSpace(os.Getenv("JD_SEED_PASSWORD"))
	if password == "" {
		password = "demo-passw0rd"
	}
	hasher := service.NewPasswordHasher(cfg.Security.PasswordHash.BcryptCost, service.NewHashPool(cfg.Security.PasswordHash.Workers))
	bcryptHash, err := hasher.Hash(context.Background(), password)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}

	// legacy 账号用于验证登录时的哈希迁移
	seeds := []models.SeedUser{
		{Email: "demo@jobdesk.local", PasswordHash: bcryptHash, Verified: true},
		{Email: "legacy@jobdesk.local", PasswordHash: service.LegacySHA256Hex(password), Verified: true, Locale: "en-US"},
		{Email: "pending@jobdesk.local", PasswordHash: bcryptHash},
	}
	for _, seed := range seeds {
		created, err := models.EnsureSeedUser(models.DB, seed)
		if err != nil {
			stdLog.Printf("Failed to seed user %s: %v", seed.Email, err)
			continue
		}
		if created {
			stdLog.Printf("Created user: %s", seed.Email)
		} else {
			stdLog.Printf("User already exists: %s", seed.Email)
		}
	}
}
