package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wonny/riskdesk/internal/contracts"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional; persistence is disabled when URL is empty)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Broker bridge
	Broker BrokerConfig

	// Benchmark index history
	Benchmark BenchmarkConfig

	// Analytics parameters
	Analytics AnalyticsConfig

	// Alert thresholds
	Alerts AlertsConfig

	// Refresh cycle
	Refresh RefreshConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// BrokerConfig holds the terminal bridge settings
type BrokerConfig struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	RateLimit    float64 // requests per second
	HistoryDays  int
	ContractSize float64
	PriceBars    int
}

// BenchmarkConfig holds the benchmark history page settings
type BenchmarkConfig struct {
	URL    string
	Symbol string
}

// AnalyticsConfig holds the numeric parameters of the analytics engine
type AnalyticsConfig struct {
	RiskFreeRate      float64
	PeriodsPerYear    int
	DrawdownThreshold float64
	RollingWindow     int
	MCSimulations     int
	MCSeed            int64
	HistorySize       int
}

// AlertsConfig mirrors the alert threshold record
type AlertsConfig struct {
	MarginPct           float64
	DailyLoss           float64
	Drawdown            float64
	DLeverage           float64
	VaRMonthly          float64
	Correlation         float64
	SectorConcentration float64
}

// AlertThresholds makes the config a threshold provider for the alerts engine
func (c *Config) AlertThresholds() contracts.AlertThresholds {
	a := c.Alerts
	return contracts.AlertThresholds{
		MarginPct:           a.MarginPct,
		DailyLoss:           a.DailyLoss,
		Drawdown:            a.Drawdown,
		DLeverage:           a.DLeverage,
		VaRMonthly:          a.VaRMonthly,
		Correlation:         a.Correlation,
		SectorConcentration: a.SectorConcentration,
	}
}

// RefreshConfig holds the periodic refresh settings
type RefreshConfig struct {
	Schedule    string // cron spec (seconds field enabled)
	AutoRefresh bool
	CacheTTL    time.Duration

	// Stored reports and alerts older than this are pruned nightly
	RetentionDays int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Broker: BrokerConfig{
			BaseURL:      getEnv("BROKER_BASE_URL", "http://localhost:5050"),
			Token:        getEnv("BROKER_TOKEN", ""),
			Timeout:      getEnvAsDuration("BROKER_TIMEOUT", "10s"),
			RateLimit:    getEnvAsFloat("BROKER_RATE_LIMIT", 5),
			HistoryDays:  getEnvAsInt("BROKER_HISTORY_DAYS", 90),
			ContractSize: getEnvAsFloat("BROKER_CONTRACT_SIZE", 100000),
			PriceBars:    getEnvAsInt("BROKER_PRICE_BARS", 30),
		},

		Benchmark: BenchmarkConfig{
			URL:    getEnv("BENCHMARK_URL", ""),
			Symbol: getEnv("BENCHMARK_SYMBOL", "SPX"),
		},

		Analytics: AnalyticsConfig{
			RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0.03),
			PeriodsPerYear:    getEnvAsInt("PERIODS_PER_YEAR", 252),
			DrawdownThreshold: getEnvAsFloat("DRAWDOWN_THRESHOLD", -5),
			RollingWindow:     getEnvAsInt("ROLLING_WINDOW", 30),
			MCSimulations:     getEnvAsInt("MC_SIMULATIONS", 10000),
			MCSeed:            int64(getEnvAsInt("MC_SEED", 42)),
			HistorySize:       getEnvAsInt("METRIC_HISTORY_SIZE", 100),
		},

		Alerts: AlertsConfig{
			MarginPct:           getEnvAsFloat("ALERT_MARGIN_PCT", 50),
			DailyLoss:           getEnvAsFloat("ALERT_DAILY_LOSS", -5),
			Drawdown:            getEnvAsFloat("ALERT_DRAWDOWN", -15),
			DLeverage:           getEnvAsFloat("ALERT_D_LEVERAGE", 16.25),
			VaRMonthly:          getEnvAsFloat("ALERT_VAR_MONTHLY", 12),
			Correlation:         getEnvAsFloat("ALERT_CORRELATION", 0.8),
			SectorConcentration: getEnvAsFloat("ALERT_SECTOR_CONCENTRATION", 30),
		},

		Refresh: RefreshConfig{
			Schedule:    getEnv("REFRESH_SCHEDULE", "@every 1m"),
			AutoRefresh: getEnvAsBool("AUTO_REFRESH", true),
			CacheTTL:    getEnvAsDuration("REPORT_CACHE_TTL", "10m"),

			RetentionDays: getEnvAsInt("RETENTION_DAYS", 90),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values that would make the engine misbehave
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analytics.PeriodsPerYear <= 0 {
		return fmt.Errorf("PERIODS_PER_YEAR must be positive")
	}

	if c.Analytics.DrawdownThreshold >= 0 {
		return fmt.Errorf("DRAWDOWN_THRESHOLD must be negative")
	}

	if c.Analytics.MCSimulations <= 0 {
		return fmt.Errorf("MC_SIMULATIONS must be positive")
	}

	if c.Broker.ContractSize <= 0 {
		return fmt.Errorf("BROKER_CONTRACT_SIZE must be positive")
	}

	if c.Alerts.DailyLoss > 0 || c.Alerts.Drawdown > 0 {
		return fmt.Errorf("ALERT_DAILY_LOSS and ALERT_DRAWDOWN must be zero or negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
