package app

import (
	"Gin_postgres_redis_library/cache"
	"Gin_postgres_redis_library/db"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client // 未配置 REDIS_ADDR 时为 nil
	Config Config
	Logger *slog.Logger

	borrowers *cache.BorrowerCache
	limiter   *ipLimiter
}

// Config 从环境变量读取
type Config struct {
	DB               db.Options
	RedisAddr        string
	RedisPwd         string
	BorrowerCacheTTL time.Duration
	WebOrigin        string
	Port             string
	RateLimitRPS     float64
	RateLimitBurst   int
	LogLevel         slog.Level
}

func (a *App) Borrowers() *cache.BorrowerCache { return a.borrowers }

// Open 连接数据库（不迁移）
func Open(cfg Config) (*gorm.DB, error) {
	return db.Open(cfg.DB)
}

// New 连接 DB / Redis，迁移表结构并组装 gin 引擎
func New(cfg Config) (*App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- DB ---
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// --- Redis（可选）---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	return NewWithDeps(cfg, logger, dbConn, rdb), nil
}

// NewWithDeps 用已有连接组装 App（测试用内存 sqlite / miniredis）
func NewWithDeps(cfg Config, logger *slog.Logger, dbConn *gorm.DB, rdb *redis.Client) *App {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Logger: logger,
		borrowers: cache.NewBorrowerCache(rdb, cfg.BorrowerCacheTTL),
	}
	if cfg.RateLimitRPS > 0 {
		a.limiter = newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(a.limiter.Middleware())
	}
	return a
}

func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func LoadConfig() Config {
	get := func(k, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return def
		}
		return v
	}
	ttlSec := get("BORROWER_CACHE_TTL_SECONDS", "600")
	var ttl time.Duration = 10 * time.Minute
	if d, err := time.ParseDuration(ttlSec + "s"); err == nil {
		ttl = d
	}
	rps, _ := strconv.ParseFloat(get("RATE_LIMIT_RPS", "0"), 64)
	burst, _ := strconv.Atoi(get("RATE_LIMIT_BURST", "0"))
	if burst <= 0 {
		burst = int(rps*2) + 1
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "INFO"))); err != nil {
		level = slog.LevelInfo
	}

	driver := get("DB_DRIVER", db.DriverPostgres)
	dsn := os.Getenv("DATABASE_URL")
	if driver == db.DriverSQLite {
		dsn = get("SQLITE_PATH", "library.db")
	}
	return Config{
		DB: db.Options{
			Driver:   driver,
			DSN:      dsn,
			Host:     get("DB_HOST", "127.0.0.1"),
			User:     get("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", "library"),
			Port:     get("DB_PORT", "5432"),
		},
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPwd:         os.Getenv("REDIS_PASSWORD"),
		BorrowerCacheTTL: ttl,
		WebOrigin:        get("WEB_ORIGIN", "http://localhost:3000"),
		Port:             get("PORT", "3001"),
		RateLimitRPS:     rps,
		RateLimitBurst:   burst,
		LogLevel:         level,
	}
}
