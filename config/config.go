package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Scraping     ScrapingConfig
	Subscription SubscriptionConfig
	Fees         FeesConfig
	Notifier     NotifierConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type ScrapingConfig struct {
	StubHubBaseURL      string
	TicketmasterBaseURL string
	TicketmasterAPIKey  string
	ViagogoBaseURL      string
	RequestTimeout      time.Duration
	SearchCacheTTL      time.Duration
	ScheduleTTL         time.Duration
	AlertCheckInterval  time.Duration
	MatchThreshold      int
}

type SubscriptionConfig struct {
	FreeAccessDays int
}

type FeesConfig struct {
	ProcessingFeeRate float64
	ServiceFee        float64
}

// NotifierConfig points each channel at its delivery gateway.
// An empty URL puts that channel in simulated (log-only) mode.
type NotifierConfig struct {
	EmailGatewayURL string
	SMSGatewayURL   string
	PushGatewayURL  string
	SlackWebhookURL string
	SendTimeout     time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server:       GetServerConfig(),
		Database:     GetDatabaseConfig(),
		Redis:        GetRedisConfig(),
		Scraping:     GetScrapingConfig(),
		Subscription: GetSubscriptionConfig(),
		Fees:         GetFeesConfig(),
		Notifier:     GetNotifierConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8081"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433", // test DB runs on 5433
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380", // test Redis runs on 6380
			Password: "",
			DB:       1,
		},
		Scraping: ScrapingConfig{
			RequestTimeout:     2 * time.Second,
			SearchCacheTTL:     time.Minute,
			ScheduleTTL:        time.Hour,
			AlertCheckInterval: time.Minute,
			MatchThreshold:     70,
		},
		Subscription: SubscriptionConfig{FreeAccessDays: 7},
		Fees:         FeesConfig{ProcessingFeeRate: 0.03, ServiceFee: 2.50},
		Notifier:     NotifierConfig{SendTimeout: time.Second},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnv("SERVER_PORT", "8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetScrapingConfig() ScrapingConfig {
	return ScrapingConfig{
		StubHubBaseURL:      getEnv("STUBHUB_BASE_URL", "https://www.stubhub.com/api/search/catalog/events/v3"),
		TicketmasterBaseURL: getEnv("TICKETMASTER_BASE_URL", "https://app.ticketmaster.com/discovery/v2/events.json"),
		TicketmasterAPIKey:  getEnv("TICKETMASTER_API_KEY", ""),
		ViagogoBaseURL:      getEnv("VIAGOGO_BASE_URL", ""),
		RequestTimeout:      getEnvDuration("SCRAPE_REQUEST_TIMEOUT", 10*time.Second),
		SearchCacheTTL:      getEnvDuration("SCRAPE_CACHE_TTL", 5*time.Minute),
		ScheduleTTL:         getEnvDuration("SCRAPE_SCHEDULE_TTL", 24*time.Hour),
		AlertCheckInterval:  getEnvDuration("ALERT_CHECK_INTERVAL", 15*time.Minute),
		MatchThreshold:      getEnvInt("ALERT_MATCH_THRESHOLD", 70),
	}
}

func GetSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		FreeAccessDays: getEnvInt("FREE_ACCESS_DAYS", 7),
	}
}

func GetFeesConfig() FeesConfig {
	rate, err := strconv.ParseFloat(getEnv("PROCESSING_FEE_RATE", "0.03"), 64)
	if err != nil {
		panic(err)
	}
	fee, err := strconv.ParseFloat(getEnv("SERVICE_FEE", "2.50"), 64)
	if err != nil {
		panic(err)
	}

	return FeesConfig{
		ProcessingFeeRate: rate,
		ServiceFee:        fee,
	}
}

func GetNotifierConfig() NotifierConfig {
	return NotifierConfig{
		EmailGatewayURL: getEnv("EMAIL_GATEWAY_URL", ""),
		SMSGatewayURL:   getEnv("SMS_GATEWAY_URL", ""),
		PushGatewayURL:  getEnv("PUSH_GATEWAY_URL", ""),
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SendTimeout:     getEnvDuration("NOTIFY_SEND_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
