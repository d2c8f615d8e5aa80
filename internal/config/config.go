package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/spf13/viper"

	"github.com/simaogato/estateflow-backend/internal/domain"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBConfig holds the database connection settings
type DBConfig struct {
	Driver   string
	ConnStr  string // Wins over the individual fields when set
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Config is the runtime configuration of the service
type Config struct {
	DB            DBConfig
	GRPCAddr      string
	HTTPAddr      string
	RedisAddr     string // Empty disables redis; an in-process cache is used instead
	APIToken      string
	Currency      domain.Currency
	PlusDays      int
	Timezone      string
	PriceCacheTTL time.Duration
	LogLevel      string
	LogDebug      bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_CONN_STR", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "estateflow")
	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("API_TOKEN", "dev-token")
	v.SetDefault("CURRENCY_CODE", domain.DefaultCurrency.Code)
	v.SetDefault("CURRENCY_PRECISION", domain.DefaultCurrency.Precision)
	v.SetDefault("PLUS_DAYS", 3)
	v.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("PRICE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEBUG", false)
}

// Load reads the configuration from defaults, then the optional file, then the environment
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		DB: DBConfig{
			Driver:   v.GetString("DB_DRIVER"),
			ConnStr:  v.GetString("DB_CONN_STR"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		GRPCAddr:  v.GetString("GRPC_ADDR"),
		HTTPAddr:  v.GetString("HTTP_ADDR"),
		RedisAddr: v.GetString("REDIS_ADDR"),
		APIToken:  v.GetString("API_TOKEN"),
		Currency: domain.Currency{
			Code:      v.GetString("CURRENCY_CODE"),
			Precision: v.GetInt32("CURRENCY_PRECISION"),
		},
		PlusDays:      v.GetInt("PLUS_DAYS"),
		Timezone:      v.GetString("TIMEZONE"),
		PriceCacheTTL: v.GetDuration("PRICE_CACHE_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogDebug:      v.GetBool("LOG_DEBUG"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.DB.Driver != DriverPostgres && c.DB.Driver != DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", DriverPostgres, DriverSQLite, c.DB.Driver)
	}
	if c.DB.Driver == DriverSQLite && c.DB.ConnStr == "" {
		return errors.New("DB_CONN_STR is required for the sqlite driver")
	}
	if c.APIToken == "" {
		return errors.New("API_TOKEN cannot be empty")
	}
	if err := c.Currency.Validate(); err != nil {
		return err
	}
	if c.PlusDays < 0 {
		return errors.New("PLUS_DAYS cannot be negative")
	}
	if c.PriceCacheTTL < 0 {
		return errors.New("PRICE_CACHE_TTL cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DSN returns the connection string for the configured driver.
// For postgres it is assembled from the individual fields unless DB_CONN_STR is set.
func (c *Config) DSN() string {
	if c.DB.ConnStr != "" {
		return c.DB.ConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name)
}

// Location is the timezone "today" is evaluated in
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
