package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	JWT_SECRET     string
	REFRESH_SECRET string

	KAFKA_ADDRESS string

	RAZORPAY_KEY_ID     string
	RAZORPAY_KEY_SECRET string

	BASE_URL     string
	ADMIN_EMAILS []string

	LOG_LEVEL string

	Pricing PricingConfig
}

// PricingConfig resolves the historical shipping ambiguity: threshold, fee and
// whether shipping is added to the payable total are all explicit settings.
type PricingConfig struct {
	TaxRate           float64
	FreeShippingAbove float64
	ShippingFee       float64
	ShippingInTotal   bool
	HomeState         string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		RAZORPAY_KEY_ID:     os.Getenv("RAZORPAY_KEY_ID"),
		RAZORPAY_KEY_SECRET: os.Getenv("RAZORPAY_KEY_SECRET"),

		BASE_URL:     os.Getenv("BASE_URL"),
		ADMIN_EMAILS: splitList(os.Getenv("ADMIN_EMAILS")),

		LOG_LEVEL: os.Getenv("LOG_LEVEL"),

		Pricing: PricingConfig{
			TaxRate:           floatEnv("TAX_RATE", 0.18),
			FreeShippingAbove: floatEnv("FREE_SHIPPING_ABOVE", 5000),
			ShippingFee:       floatEnv("SHIPPING_FEE", 0),
			ShippingInTotal:   boolEnv("SHIPPING_IN_TOTAL", true),
			HomeState:         os.Getenv("HOME_STATE"),
		},
	}

	return config, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func floatEnv(name string, def float64) float64 {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
		log.Printf("Notice: invalid %s, using default %v", name, def)
	}
	return def
}

func boolEnv(name string, def bool) bool {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
		log.Printf("Notice: invalid %s, using default %v", name, def)
	}
	return def
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Address{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductFeature{},
		&models.ProductVariant{},
		&models.Review{},
		&models.Coupon{},
		&models.Order{},
	)
}
