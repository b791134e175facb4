package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nayeemx/gymstore/internal/models"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8000"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"gymstore"`

	GatewayBaseURL       string        `envconfig:"GATEWAY_BASE_URL" default:"https://sandbox.sslcommerz.com"`
	GatewayStoreID       string        `envconfig:"STORE_ID"`
	GatewayStorePassword string        `envconfig:"STORE_PASSWD"`
	GatewayTimeout       time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	Currency             string        `envconfig:"CURRENCY" default:"BDT"`

	// CallbackBaseURL is this server's public base; the gateway sends the
	// buyer's browser to callback URLs built from it.
	CallbackBaseURL string   `envconfig:"CALLBACK_BASE_URL" default:"http://localhost:8000"`
	FrontendURL     string   `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`

	PendingOrderTTL time.Duration `envconfig:"PENDING_ORDER_TTL" default:"24h"`
	SweepInterval   time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return nil, err
	}

	return db, nil
}
