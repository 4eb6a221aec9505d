package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Email      EmailConfig
	Notify     NotifyConfig
	Auth       AuthConfig
	Expiration ExpirationConfig
	Fees       FeeConfig
	Sweeper    SweeperConfig
	Pass       PassConfig
}

type ServerConfig struct {
	Port        string
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

type DatabaseConfig struct {
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   time.Duration
	MigrationsDir string
	AutoMigrate   bool
}

type RedisConfig struct {
	Addr            string
	PurchaseLockTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  TopicConfig
	Enabled bool
}

type TopicConfig struct {
	TransactionStatus string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	FromName     string
	Enabled      bool
}

// NotifyConfig sizes the queue between committed transitions and the delivery channels.
type NotifyConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

type AuthConfig struct {
	OIDCIssuer string
	JWTSecret  string
}

// ExpirationConfig holds the business deadlines stored on transactions and coupons.
type ExpirationConfig struct {
	PaymentWindow      time.Duration
	ConfirmationWindow time.Duration
	CouponMonths       int
}

type FeeConfig struct {
	AdminFeePercentage float64
}

type SweeperConfig struct {
	// Interval of the background sweep. Zero leaves sweeping to the request path only.
	Interval time.Duration
}

type PassConfig struct {
	SecretKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", ":8084"),
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:           getEnv("POSTGRES_DSN", ""),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:   time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
			AutoMigrate:   getEnvBool("AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			PurchaseLockTTL: time.Duration(getEnvInt("PURCHASE_LOCK_TTL_SECONDS", 10)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			GroupID: getEnv("KAFKA_GROUP_ID", "transaction-notifications"),
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				TransactionStatus: getEnv("KAFKA_TOPIC_TRANSACTIONS", "ticketing.transactions.status"),
			},
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("MAIL_FROM", "no-reply@evently.local"),
			FromName:     getEnv("MAIL_FROM_NAME", "Evently"),
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
		},
		Notify: NotifyConfig{
			QueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),
			SendTimeout: time.Duration(getEnvInt("NOTIFY_SEND_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
			JWTSecret:  getEnv("JWT_SECRET", ""),
		},
		Expiration: ExpirationConfig{
			PaymentWindow:      time.Duration(getEnvInt("PAYMENT_EXPIRATION_HOURS", 2)) * time.Hour,
			ConfirmationWindow: time.Duration(getEnvInt("WAITING_FOR_ADMIN_EXPIRATION_DAYS", 3)) * 24 * time.Hour,
			CouponMonths:       getEnvInt("COUPON_EXPIRATION_MONTHS", 3),
		},
		Fees: FeeConfig{
			AdminFeePercentage: getEnvFloat("ADMIN_FEE_PERCENTAGE", 10),
		},
		Sweeper: SweeperConfig{
			Interval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		},
		Pass: PassConfig{
			SecretKey: getEnv("PASS_SECRET_KEY", "change-me"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
