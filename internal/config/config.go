package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Discord  DiscordConfig
	Status   StatusConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Site     SiteDefaults
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
}

type DatabaseConfig struct {
	Driver       string // sqlite or postgres
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Channel  string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topics  TopicConfig
}

type TopicConfig struct {
	OrderCreated   string
	OrderPaid      string
	OrderDelivered string
	ContactCreated string
}

func (t TopicConfig) All() []string {
	return []string{t.OrderCreated, t.OrderPaid, t.OrderDelivered, t.ContactCreated}
}

type DiscordConfig struct {
	ShopWebhookURL    string
	ContactWebhookURL string
	MentionUserID     string
	Timeout           time.Duration
}

type StatusConfig struct {
	APIBaseURL   string
	PollInterval time.Duration
	DefaultPort  string
	Timeout      time.Duration
}

type StorageConfig struct {
	Backend       string // local or oss
	UploadDir     string
	PublicBaseURL string
	MaxUploadSize int64

	OSSEndpoint        string
	OSSRegion          string
	OSSBucket          string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
}

type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	SessionTTL        time.Duration
}

type PaymentConfig struct {
	BankName    string
	BankCode    string // VietQR bank code, e.g. MB
	BankAccount string
	AccountName string
	QRBaseURL   string
}

// SiteDefaults seed the site_settings singleton when the row is missing.
type SiteDefaults struct {
	ServerIP      string
	ServerVersion string
	ContactEmail  string
	ContactPhone  string
	DiscordURL    string
	SiteTitle     string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", ":8084"),
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			DSN:          getEnv("DB_DSN", "file:buildnchill.db?cache=shared"),
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANGES_CHANNEL", "buildnchill:changes"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topics: TopicConfig{
				OrderCreated:   getEnv("KAFKA_TOPIC_ORDER_CREATED", "buildnchill.order.created"),
				OrderPaid:      getEnv("KAFKA_TOPIC_ORDER_PAID", "buildnchill.order.paid"),
				OrderDelivered: getEnv("KAFKA_TOPIC_ORDER_DELIVERED", "buildnchill.order.delivered"),
				ContactCreated: getEnv("KAFKA_TOPIC_CONTACT_CREATED", "buildnchill.contact.created"),
			},
		},
		Discord: DiscordConfig{
			ShopWebhookURL:    getEnv("DISCORD_SHOP_WEBHOOK_URL", ""),
			ContactWebhookURL: getEnv("DISCORD_CONTACT_WEBHOOK_URL", ""),
			MentionUserID:     getEnv("DISCORD_MENTION_USER_ID", ""),
			Timeout:           time.Duration(getEnvInt("DISCORD_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Status: StatusConfig{
			APIBaseURL:   getEnv("STATUS_API_URL", "https://api.mcstatus.io"),
			PollInterval: time.Duration(getEnvInt("STATUS_POLL_INTERVAL", 20)) * time.Second,
			DefaultPort:  getEnv("STATUS_DEFAULT_PORT", "25190"),
			Timeout:      time.Duration(getEnvInt("STATUS_TIMEOUT_SECONDS", 8)) * time.Second,
		},
		Storage: StorageConfig{
			Backend:            getEnv("STORAGE_BACKEND", "local"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:8084/uploads"),
			MaxUploadSize:      int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
			OSSEndpoint:        getEnv("OSS_ENDPOINT", ""),
			OSSRegion:          getEnv("OSS_REGION", ""),
			OSSBucket:          getEnv("OSS_BUCKET", ""),
			OSSAccessKeyID:     getEnv("OSS_ACCESS_KEY_ID", ""),
			OSSAccessKeySecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
		},
		Auth: AuthConfig{
			AdminUsername:     getEnv("ADMIN_USERNAME", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		},
		Payment: PaymentConfig{
			BankName:    getEnv("PAYMENT_BANK_NAME", "MBBank"),
			BankCode:    getEnv("PAYMENT_BANK_CODE", "MB"),
			BankAccount: getEnv("PAYMENT_BANK_ACCOUNT", ""),
			AccountName: getEnv("PAYMENT_ACCOUNT_NAME", ""),
			QRBaseURL:   getEnv("PAYMENT_QR_BASE_URL", "https://img.vietqr.io/image"),
		},
		Site: SiteDefaults{
			ServerIP:      getEnv("SITE_SERVER_IP", "buildnchill.id.vn:25190"),
			ServerVersion: getEnv("SITE_SERVER_VERSION", "> 1.21.4"),
			ContactEmail:  getEnv("SITE_CONTACT_EMAIL", ""),
			ContactPhone:  getEnv("SITE_CONTACT_PHONE", ""),
			DiscordURL:    getEnv("SITE_DISCORD_URL", ""),
			SiteTitle:     getEnv("SITE_TITLE", "BuildnChill"),
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

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
