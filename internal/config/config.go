package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Routes are the storefront endpoints the reconciler talks to. Paths are
// resolved against StorefrontURL.
type Routes struct {
	Cart       string
	CartAdd    string
	CartChange string
	Products   string
}

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers      string
	KafkaCartTopic    string
	KafkaResultsTopic string
	KafkaGroupID      string

	// API Configuration
	APIPort     string
	APIHost     string
	CORSOrigins []string

	// Storefront
	StorefrontURL     string
	Routes            Routes
	StorefrontTimeout time.Duration

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	storefrontURL := strings.TrimSuffix(getEnv("STOREFRONT_URL", "http://localhost:9292"), "/")

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "sqlite://promocart.db"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaCartTopic:    getEnv("KAFKA_CART_TOPIC", "cart-events"),
		KafkaResultsTopic: getEnv("KAFKA_RESULTS_TOPIC", "reconciliation-results"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "promocart-worker"),
		APIPort:           getEnv("API_PORT", "8080"),
		APIHost:           getEnv("API_HOST", "0.0.0.0"),
		CORSOrigins:       getEnvAsList("CORS_ORIGINS", []string{origin(storefrontURL)}),
		StorefrontURL:     storefrontURL,
		Routes: Routes{
			Cart:       getEnv("CART_URL", "/cart.js"),
			CartAdd:    getEnv("CART_ADD_URL", "/cart/add.js"),
			CartChange: getEnv("CART_CHANGE_URL", "/cart/change.js"),
			Products:   getEnv("PRODUCTS_URL", "/products"),
		},
		StorefrontTimeout: time.Duration(getEnvAsInt("STOREFRONT_TIMEOUT_SECONDS", 30)) * time.Second,
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Brokers splits the comma-separated broker list.
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// origin reduces a URL to scheme://host, the form browsers send in Origin.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if list := splitList(value); len(list) > 0 {
			return list
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
