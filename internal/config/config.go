// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// postgres:// のURLまたはSQLiteのファイルパス（sqlite://path）を指定する。
	DatabaseURL string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitImport  int

	// タイムゾーン指定の無いタイムスタンプと暦日判定に使うIANAゾーン名。
	// 空の場合はローカルタイム。
	DisplayTimezone string

	// Logging
	// LogFileが空の場合は標準出力、指定された場合はローテーション付きファイル出力。
	LogFile string

	// Import
	ImportMaxRecords int
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルがある場合は先に読み込む（無くてもエラーにしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitImport = getEnvInt("RATE_LIMIT_IMPORT", 10)
	cfg.DisplayTimezone = getEnvString("DISPLAY_TIMEZONE", "")
	cfg.LogFile = getEnvString("LOG_FILE", "")
	cfg.ImportMaxRecords = getEnvInt("IMPORT_MAX_RECORDS", 10000)

	return cfg, nil
}

// Location はDisplayTimezoneをtime.Locationに解決する。
// 未設定の場合はローカルタイム、解決できないゾーン名はエラーを返す。
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
