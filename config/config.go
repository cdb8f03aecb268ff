package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL      string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	// Server configuration
	Port      string
	JWTSecret string

	// Marketplace settings
	DefaultCurrency        string
	PurchaseTimeoutSeconds int
	PaymentProvider        string
	BlockedAliasIDs        []string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		instance = load()
	})
	return instance
}

// load loads configuration from environment variables
func load() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_NAME", "raffler")
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("PURCHASE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PAYMENT_PROVIDER", "stub")
	viper.SetDefault("ENVIRONMENT", "development")

	config := &Config{
		DatabaseURL:      viper.GetString("DATABASE_URL"),
		DatabaseHost:     viper.GetString("DATABASE_HOST"),
		DatabasePort:     viper.GetString("DATABASE_PORT"),
		DatabaseUser:     viper.GetString("DATABASE_USER"),
		DatabasePassword: viper.GetString("DATABASE_PASSWORD"),
		DatabaseName:     viper.GetString("DATABASE_NAME"),

		Port:      viper.GetString("PORT"),
		JWTSecret: viper.GetString("JWT_SECRET"),

		DefaultCurrency:        viper.GetString("DEFAULT_CURRENCY"),
		PurchaseTimeoutSeconds: viper.GetInt("PURCHASE_TIMEOUT_SECONDS"),
		PaymentProvider:        viper.GetString("PAYMENT_PROVIDER"),

		Environment: viper.GetString("ENVIRONMENT"),
	}

	if blocked := viper.GetString("BLOCKED_ALIAS_IDS"); blocked != "" {
		for _, id := range strings.Split(blocked, ",") {
			if id = strings.TrimSpace(id); id != "" {
				config.BlockedAliasIDs = append(config.BlockedAliasIDs, id)
			}
		}
	}

	return config
}

// IsDevelopment returns true when running outside production
func (c *Config) IsDevelopment() bool {
	return c.Environment != "production"
}
