// Package config reads service settings from the environment (and .env when present).
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/junaidrashid-git/fashionshop-api/events"
	"github.com/junaidrashid-git/fashionshop-api/vnpay"
)

type Config struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret   string
	AdminAPIKey string

	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	VNPay              vnpay.Config
	CheckoutSuccessURL string
	CheckoutFailureURL string

	SweepInterval time.Duration
	SweepGrace    time.Duration
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		IdempotencyTTL: duration("IDEMPOTENCY_TTL", 24*time.Hour),

		KafkaBrokers: events.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_ORDER_TOPIC", "order-events"),

		VNPay: vnpay.Config{
			TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
			HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
			PayURL:     getenv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:  os.Getenv("VNPAY_RETURN_URL"),
			Locale:     getenv("VNPAY_LOCALE", "vn"),
			ExpireIn:   duration("VNPAY_EXPIRE_IN", 15*time.Minute),
		},
		CheckoutSuccessURL: strings.TrimRight(getenv("CHECKOUT_SUCCESS_URL", "/checkout/success"), "/"),
		CheckoutFailureURL: strings.TrimRight(getenv("CHECKOUT_FAILURE_URL", "/checkout/failure"), "/"),

		SweepInterval: duration("PAYMENT_SWEEP_INTERVAL", 5*time.Minute),
		SweepGrace:    duration("PAYMENT_SWEEP_GRACE", 5*time.Minute),
	}
}

// PostgresDSN is DATABASE_URL when set, otherwise built from the DB_* parts.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("⚠️ Ignoring %s=%q: not a valid duration, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
