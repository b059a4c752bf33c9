package config

import (
	"log"

	"mandi-app/internal/models"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Billing  BillingConfig
	Market   models.MarketInfo
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string
}

type BillingConfig struct {
	BillPrefix     string  `mapstructure:"bill_prefix"`
	CommissionRate float64 `mapstructure:"commission_rate"` // Percent, global default
	TopLimit       int     `mapstructure:"top_limit"`       // Top-N for rankings
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Read .env file
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, checking environment variables: %v", err)
	}

	// Enable reading from OS environment variables as fallback/override
	viper.AutomaticEnv()

	viper.BindEnv("SERVER_PORT", "PORT") // Fallback to PORT if SERVER_PORT is missing
	viper.BindEnv("DATABASE_URL")

	viper.SetDefault("BILL_PREFIX", "MB")
	viper.SetDefault("COMMISSION_RATE", 3.0)
	viper.SetDefault("TOP_LIMIT", 5)

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			URL:      viper.GetString("DATABASE_URL"),
		},
		Billing: BillingConfig{
			BillPrefix:     viper.GetString("BILL_PREFIX"),
			CommissionRate: viper.GetFloat64("COMMISSION_RATE"),
			TopLimit:       viper.GetInt("TOP_LIMIT"),
		},
	}

	// Load TOML Config for Market Info
	marketViper := viper.New()
	marketViper.SetConfigFile("config/config.toml")
	marketViper.SetConfigType("toml")
	if err := marketViper.ReadInConfig(); err != nil {
		log.Printf("Warning: config/config.toml not found, using empty market info: %v", err)
	} else {
		if err := marketViper.UnmarshalKey("market", &AppConfig.Market); err != nil {
			log.Printf("Error: Failed to unmarshal market info from TOML: %v", err)
		}
	}

	log.Printf("Configuration loaded successfully:")
	log.Printf("- Server Port: %s", AppConfig.Server.Port)
	log.Printf("- Server Env: %s", AppConfig.Server.Env)
	log.Printf("- Database Driver: %s", AppConfig.Database.Driver)
	log.Printf("- Database Host: %s", AppConfig.Database.Host)
	log.Printf("- Database Name: %s", AppConfig.Database.Name)
	log.Printf("- Database URL: %s", func() string {
		if AppConfig.Database.URL != "" {
			return "SET"
		}
		return "NOT SET"
	}())
	log.Printf("- Bill Prefix: %s", AppConfig.Billing.BillPrefix)
	log.Printf("- Commission Rate: %.2f%%", AppConfig.Billing.CommissionRate)
	log.Printf("- Market Name: %s", AppConfig.Market.Name)
}
