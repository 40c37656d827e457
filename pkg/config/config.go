package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	CartPolicyReadable   = "readable"
	CartPolicyInvalidate = "invalidate"
)

type Config struct {
	ServiceName string

	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	SeedProducts bool

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AdminJWTSecret []byte

	MilestoneEvery       int
	DiscountPercentage   int
	CheckedOutCartPolicy string

	CORSOrigins []string
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "sqlite")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  EnvDefault("SQLITE_PATH", "storefront.db"),

		SeedProducts: EnvBoolDefault("SEED_PRODUCTS", true),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		AdminJWTSecret: []byte(os.Getenv("ADMIN_JWT_SECRET")),

		MilestoneEvery:       EnvIntDefault("MILESTONE_EVERY", 10),
		DiscountPercentage:   EnvIntDefault("DISCOUNT_PERCENTAGE", 10),
		CheckedOutCartPolicy: strings.ToLower(EnvDefault("CHECKED_OUT_CART_POLICY", CartPolicyReadable)),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "*")),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
