package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string

	MercadoPagoAccessToken string
	WebhookBaseURL         string

	FreeShippingThreshold float64
}

const defaultFreeShippingThreshold = 150.0

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:                 os.Getenv("DB_HOST"),
		DBUser:                 os.Getenv("DB_USER"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBName:                 os.Getenv("DB_NAME"),
		DBPort:                 os.Getenv("DB_PORT"),
		AppPort:                os.Getenv("APP_PORT"),
		AppEnv:                 os.Getenv("APP_ENV"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		WebhookBaseURL:         os.Getenv("WEBHOOK_BASE_URL"),
		FreeShippingThreshold:  parseThreshold(os.Getenv("FREE_SHIPPING_THRESHOLD")),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg
}

func parseThreshold(raw string) float64 {
	if raw == "" {
		return defaultFreeShippingThreshold
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return defaultFreeShippingThreshold
	}
	return v
}
