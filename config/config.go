package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	HTTP           ServerConfig
	MySQL          MySQLConfig
	Log            LogConfig
	Adyen          AdyenConfig
	Host           HostConfig
	Reconciliation ReconciliationConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AdyenConfig struct {
	APIKey          string
	MerchantAccount string
	PaymentURL      string
	HTTPTimeout     time.Duration
}

type HostConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration

	// Credentials for the impersonated terminal write performed by delayed
	// reconciliation checks.
	Username string
	Password string
}

type ReconciliationConfig struct {
	// CheckDelay is how long after an intermediate authentication response
	// the delayed check fires.
	CheckDelay     time.Duration
	WorkerInterval time.Duration
	BatchSize      int
	// Pending3DSExpiration is the read-time window after which a pending
	// authorization is surfaced as canceled.
	Pending3DSExpiration time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "adyen-plugin"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Adyen: AdyenConfig{
			APIKey:          getEnv("ADYEN_API_KEY", ""),
			MerchantAccount: getEnv("ADYEN_MERCHANT_ACCOUNT", ""),
			PaymentURL:      getEnv("ADYEN_PAYMENT_URL", ""),
			HTTPTimeout:     getSecondsEnv("ADYEN_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		Host: HostConfig{
			BaseURL:     getEnv("HOST_BASE_URL", ""),
			APIKey:      getEnv("HOST_API_KEY", ""),
			HTTPTimeout: getSecondsEnv("HOST_HTTP_TIMEOUT_SECONDS", 15*time.Second),
			Username:    getEnv("HOST_USERNAME", ""),
			Password:    getEnv("HOST_PASSWORD", ""),
		},
		Reconciliation: ReconciliationConfig{
			CheckDelay:           getMinutesEnv("RECONCILIATION_CHECK_DELAY_MINUTES", 20*time.Minute),
			WorkerInterval:       getMinutesEnv("RECONCILIATION_WORKER_INTERVAL_MINUTES", time.Minute),
			BatchSize:            getIntEnv("RECONCILIATION_BATCH_SIZE", 100),
			Pending3DSExpiration: getMinutesEnv("RECONCILIATION_PENDING_3DS_EXPIRATION_MINUTES", 3*time.Hour),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
