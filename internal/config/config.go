package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string

	LogLevel  string
	LogFormat string

	// 首次启动时创建的管理员
	AdminEmail    string
	AdminPassword string

	ReportCacheTTL    time.Duration
	ReportInterval    time.Duration
	AnalysisCacheSize int
	AnalyzeWorkers    int
}

// Load 加载配置
func Load() *Config {
	expiryHours := getEnvInt("JWT_EXPIRY_HOURS", 12)

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "restoflow")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := getEnv("DATABASE_URL", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL))

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", defaultSecret))
	env := getEnv("APP_ENV", "development")

	if env == "production" && appSecret == defaultSecret {
		slog.Warn("生产环境正在使用默认密钥，请立即设置 APP_SECRET 环境变量")
	}

	return &Config{
		Env:               env,
		AppSecret:         appSecret,
		DatabaseURL:       dbURL,
		JWTExpiry:         time.Duration(expiryHours) * time.Hour,
		Port:              getEnv("PORT", "5005"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@restoflow.local"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		ReportCacheTTL:    getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		ReportInterval:    getEnvDuration("REPORT_INTERVAL", 24*time.Hour),
		AnalysisCacheSize: getEnvInt("ANALYSIS_CACHE_SIZE", 1000),
		AnalyzeWorkers:    getEnvInt("ANALYZE_WORKERS", 8),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
