package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Therapy platform REST backend.
	BackendAPIURL         string `mapstructure:"BACKEND_API_URL"`
	MediaBaseURL          string `mapstructure:"MEDIA_BASE_URL"`
	BackendTimeoutSeconds int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`
	BackendJWTSecret      string `mapstructure:"BACKEND_JWT_SECRET"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Reconciliation incidents live in Mongo.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	StripeKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeCurrency string `mapstructure:"STRIPE_CURRENCY"`

	// Session price tiers, in whole rupees.
	PriceVideo   int64 `mapstructure:"PRICE_VIDEO"`
	PriceVoice   int64 `mapstructure:"PRICE_VOICE"`
	PriceMessage int64 `mapstructure:"PRICE_MESSAGE"`

	MinWithdrawalAmount int64 `mapstructure:"MIN_WITHDRAWAL_AMOUNT"`

	ZegoAppID           uint32 `mapstructure:"ZEGO_APP_ID"`
	ZegoServerSecret    string `mapstructure:"ZEGO_SERVER_SECRET"`
	ZegoTokenTTLSeconds int64  `mapstructure:"ZEGO_TOKEN_TTL_SECONDS"`

	SessionTTLMinutes     int `mapstructure:"SESSION_TTL_MINUTES"`
	BookingFlowTTLMinutes int `mapstructure:"BOOKING_FLOW_TTL_MINUTES"`

	// When set, backend tokens are encrypted inside stored sessions.
	SessionEncryptionKey string `mapstructure:"SESSION_ENCRYPTION_KEY"`

	ReconcileSweepSpec   string `mapstructure:"RECONCILE_SWEEP_SPEC"`
	ReconcileMaxAttempts int    `mapstructure:"RECONCILE_MAX_ATTEMPTS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
}

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("BACKEND_API_URL", "http://localhost:8000")
	viper.SetDefault("MEDIA_BASE_URL", "http://localhost:8000")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("BACKEND_JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "mindease")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_CURRENCY", "inr")
	viper.SetDefault("PRICE_VIDEO", 1500)
	viper.SetDefault("PRICE_VOICE", 1000)
	viper.SetDefault("PRICE_MESSAGE", 500)
	viper.SetDefault("MIN_WITHDRAWAL_AMOUNT", 500)
	viper.SetDefault("ZEGO_APP_ID", 0)
	viper.SetDefault("ZEGO_SERVER_SECRET", "")
	viper.SetDefault("ZEGO_TOKEN_TTL_SECONDS", 3600)
	viper.SetDefault("SESSION_TTL_MINUTES", 24*60)
	viper.SetDefault("SESSION_ENCRYPTION_KEY", "")
	viper.SetDefault("BOOKING_FLOW_TTL_MINUTES", 30)
	viper.SetDefault("RECONCILE_SWEEP_SPEC", "@every 15m")
	viper.SetDefault("RECONCILE_MAX_ATTEMPTS", 5)
}

// Validate rejects configurations the portal cannot run with.
func (c Config) Validate() error {
	if c.BackendAPIURL == "" {
		return fmt.Errorf("BACKEND_API_URL is required")
	}
	if !(c.PriceVideo > c.PriceVoice && c.PriceVoice > c.PriceMessage && c.PriceMessage > 0) {
		return fmt.Errorf("price tiers must satisfy video > voice > message > 0, got %d/%d/%d",
			c.PriceVideo, c.PriceVoice, c.PriceMessage)
	}
	if c.MinWithdrawalAmount < 0 {
		return fmt.Errorf("MIN_WITHDRAWAL_AMOUNT cannot be negative")
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves TIMEZONE, falling back to the local zone.
func Location() *time.Location {
	if AppConfig.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func BackendTimeout() time.Duration {
	if AppConfig.BackendTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(AppConfig.BackendTimeoutSeconds) * time.Second
}
