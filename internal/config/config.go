package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	Env                string
	CORSAllowedOrigins []string
	ReadHeaderTimeout  time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RequestTimeout     time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	RateLimitMaxIPs    int

	DBMaxConns          int32
	DBMinConns          int32
	DBHealthCheckPeriod time.Duration

	BrandReadTimeout     time.Duration
	BrandReadConcurrency int
	MinSlotID            int64
	InventorySchema      string
	LedgerTable          string
	FormsSchema          string
	FormsTable           string
	BrandsFile           string
	DateFormatCacheTTL   time.Duration
	SlotLimitDefault     int
	SlotLimitMax         int

	RedisURL       string
	ReportCacheTTL time.Duration
	ReportSlow     time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("API_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Env:         getEnv("APP_ENV", "dev"),
		CORSAllowedOrigins: getEnvCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}),
		ReadHeaderTimeout: time.Duration(getEnvInt("API_READ_HEADER_TIMEOUT_SEC", 5)) * time.Second,
		ReadTimeout:       time.Duration(getEnvInt("API_READ_TIMEOUT_SEC", 15)) * time.Second,
		WriteTimeout:      time.Duration(getEnvInt("API_WRITE_TIMEOUT_SEC", 30)) * time.Second,
		IdleTimeout:       time.Duration(getEnvInt("API_IDLE_TIMEOUT_SEC", 60)) * time.Second,
		RequestTimeout:    time.Duration(getEnvInt("API_REQUEST_TIMEOUT_SEC", 20)) * time.Second,
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 30),
		RateLimitMaxIPs:   getEnvInt("RATE_LIMIT_MAX_IPS", 10000),

		DBMaxConns:          int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBMinConns:          int32(getEnvInt("DB_MIN_CONNS", 0)),
		DBHealthCheckPeriod: time.Duration(getEnvInt("DB_HEALTH_CHECK_SEC", 30)) * time.Second,

		BrandReadTimeout:     time.Duration(getEnvInt("BRAND_READ_TIMEOUT_MS", 5000)) * time.Millisecond,
		BrandReadConcurrency: getEnvInt("BRAND_READ_CONCURRENCY", 6),
		MinSlotID:            int64(getEnvInt("MIN_SLOT_ID", 8000)),
		InventorySchema:      getEnv("INVENTORY_SCHEMA", "campaign_metadata"),
		LedgerTable:          getEnv("LEDGER_TABLE", "campaign_ledger"),
		FormsSchema:          getEnv("FORMS_SCHEMA", "data_products"),
		FormsTable:           getEnv("FORMS_TABLE", "sponsorship_bookings_form_submissions"),
		BrandsFile:           os.Getenv("BRANDS_FILE"),
		DateFormatCacheTTL:   time.Duration(getEnvInt("DATE_FORMAT_CACHE_TTL_SEC", 600)) * time.Second,
		SlotLimitDefault:     getEnvInt("SLOT_LIMIT_DEFAULT", 100),
		SlotLimitMax:         getEnvInt("SLOT_LIMIT_MAX", 1000),

		RedisURL:       os.Getenv("REDIS_URL"),
		ReportCacheTTL: time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second,
		ReportSlow:     time.Duration(getEnvInt("REPORT_SLOW_MS", 500)) * time.Millisecond,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SlotLimitDefault <= 0 || cfg.SlotLimitMax < cfg.SlotLimitDefault {
		return Config{}, fmt.Errorf("SLOT_LIMIT_DEFAULT must be positive and not exceed SLOT_LIMIT_MAX")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
