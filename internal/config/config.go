package config

import "os"

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string // empty disables the idempotency cache
	ReportDir string
	LogLevel  string
}

func Load() *Config {
	return &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/medstock?parseTime=true"),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		ReportDir: getEnv("REPORT_DIR", "reports"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
