package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analysis agents
	Agents AgentsConfig

	// Trading limits (hard guardrails)
	Limits LimitsConfig

	// Alerting
	Telegram TelegramConfig
	Slack    SlackConfig

	// Logging
	LogLevel  string
	LogFormat string
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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AgentsConfig holds the analysis agent endpoints and deadlines
type AgentsConfig struct {
	NewsURL        string
	FundamentalURL string
	TechnicalURL   string
	ExpertURL      string
	RiskURL        string

	CallTimeout    time.Duration // per-agent deadline
	OverallTimeout time.Duration // whole-dispatch deadline
	CallsPerSecond int           // outbound rate limit per agent
}

// LimitsConfig holds the hard trading guardrails
// 가드레일: 완화 불가, 위반 시 HOLD로 강등
type LimitsConfig struct {
	AccountBalance     float64 // 계좌 잔고 (기본 1000만원)
	MaxSingleStockPct  float64 // 단일 종목 최대 비중
	MaxRiskPerTradePct float64 // 1회 거래당 최대 리스크
	MinRewardRisk      float64 // 최소 손익비
	MaxDailyTrades     int
	MaxOpenPositions   int
	DryRun             bool // true면 주문 미실행
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// SlackConfig holds Slack webhook configuration
type SlackConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Analysis agents
		Agents: AgentsConfig{
			NewsURL:        agentURL("NEWS_AGENT", "8001"),
			FundamentalURL: agentURL("FUNDAMENTAL_AGENT", "8002"),
			TechnicalURL:   agentURL("TECHNICAL_AGENT", "8003"),
			ExpertURL:      agentURL("EXPERT_AGENT", "8004"),
			RiskURL:        agentURL("RISK_AGENT", "8005"),
			CallTimeout:    getEnvAsDuration("AGENT_CALL_TIMEOUT", "90s"),
			OverallTimeout: getEnvAsDuration("AGENT_OVERALL_TIMEOUT", "2m"),
			CallsPerSecond: getEnvAsInt("AGENT_CALLS_PER_SECOND", 2),
		},

		// Trading limits
		Limits: LimitsConfig{
			AccountBalance:     getEnvAsFloat("ACCOUNT_BALANCE", 10000000),
			MaxSingleStockPct:  getEnvAsFloat("MAX_SINGLE_STOCK_RATIO", 0.20),
			MaxRiskPerTradePct: getEnvAsFloat("MAX_RISK_PER_TRADE", 0.02),
			MinRewardRisk:      getEnvAsFloat("MIN_REWARD_RISK", 1.5),
			MaxDailyTrades:     getEnvAsInt("MAX_DAILY_TRADES", 10),
			MaxOpenPositions:   getEnvAsInt("MAX_OPEN_POSITIONS", 10),
			DryRun:             getEnvAsBool("DRY_RUN", true),
		},

		// Alerting
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Agents.CallTimeout <= 0 {
		return fmt.Errorf("AGENT_CALL_TIMEOUT must be positive")
	}
	if c.Agents.OverallTimeout < c.Agents.CallTimeout {
		return fmt.Errorf("AGENT_OVERALL_TIMEOUT must be >= AGENT_CALL_TIMEOUT")
	}

	if c.Limits.AccountBalance <= 0 {
		return fmt.Errorf("ACCOUNT_BALANCE must be positive")
	}

	return nil
}

// agentURL builds an agent endpoint URL from HOST/PORT env pairs.
// Docker service 이름이 기본 호스트
func agentURL(prefix, defaultPort string) string {
	if url := getEnv(prefix+"_URL", ""); url != "" {
		return url
	}
	host := getEnv(prefix+"_HOST", "localhost")
	port := getEnv(prefix+"_PORT", defaultPort)
	return fmt.Sprintf("http://%s:%s/", host, port)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
	valueStr := strings.TrimSpace(os.Getenv(key))
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
