// config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	BaseURL     string
	MongoURI    string
	MongoDBName string
	RabbitURL   string
	UploadDir   string

	// Email
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromName   string
	AdminEmail string

	// Payment destination shown in the payment-instruction emails.
	// Business data lives in the environment, never in templates.
	BankName       string
	BankHolder     string
	BankCBU        string
	BankAlias      string
	CurrencySymbol string

	OrderPrefix string
	DefaultLang string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "billing_db"),
		RabbitURL:   getEnv("RABBIT_URL", ""),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),

		SMTPHost:   getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:   getEnvInt("SMTP_PORT", 587),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		FromName:   getEnv("MAIL_FROM_NAME", "Viny 2030"),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),

		BankName:       getEnv("BANK_NAME", ""),
		BankHolder:     getEnv("BANK_HOLDER", ""),
		BankCBU:        getEnv("BANK_CBU", ""),
		BankAlias:      getEnv("BANK_ALIAS", ""),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),

		OrderPrefix: getEnv("ORDER_PREFIX", "VNY"),
		DefaultLang: getEnv("DEFAULT_LANG", "es"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
