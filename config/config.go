package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Places provider configuration.
	PlacesBaseURL        string `mapstructure:"PLACES_BASE_URL"`
	PlacesAPIKey         string `mapstructure:"PLACES_API_KEY"`
	PlacesTimeoutSeconds int    `mapstructure:"PLACES_TIMEOUT_SECONDS"`

	// Feed tuning.
	FeedDefaultRadiusMiles float64 `mapstructure:"FEED_DEFAULT_RADIUS_MILES"`
	FeedRadiusCeilingMiles float64 `mapstructure:"FEED_RADIUS_CEILING_MILES"`
	FeedBatchSize          int     `mapstructure:"FEED_BATCH_SIZE"`
	FeedMinNewUnique       int     `mapstructure:"FEED_MIN_NEW_UNIQUE"`
	FeedMaxAttempts        int     `mapstructure:"FEED_MAX_ATTEMPTS"`
	FeedCooldownSeconds    int     `mapstructure:"FEED_COOLDOWN_SECONDS"`

	// Recommendation cache tuning.
	CacheValidPhotoFraction float64 `mapstructure:"CACHE_VALID_PHOTO_FRACTION"`
	CacheTTLHours           int     `mapstructure:"CACHE_TTL_HOURS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place")
	viper.SetDefault("PLACES_API_KEY", "")
	viper.SetDefault("PLACES_TIMEOUT_SECONDS", 8)
	viper.SetDefault("FEED_DEFAULT_RADIUS_MILES", 10.0)
	viper.SetDefault("FEED_RADIUS_CEILING_MILES", 31.0)
	viper.SetDefault("FEED_BATCH_SIZE", 20)
	viper.SetDefault("FEED_MIN_NEW_UNIQUE", 5)
	viper.SetDefault("FEED_MAX_ATTEMPTS", 4)
	viper.SetDefault("FEED_COOLDOWN_SECONDS", 2)
	viper.SetDefault("CACHE_VALID_PHOTO_FRACTION", 0.7)
	viper.SetDefault("CACHE_TTL_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
