package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml, an optional
// environment-specific overlay, and the process environment. Missing files
// are tolerated; defaults cover every field the engine depends on.
func Load() (*Config, error) {
	// .env is optional; system environment wins when it is absent.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "loanlens-backend")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("uploads.allowed_types", []string{"image/jpeg", "image/png", "application/pdf"})
	v.SetDefault("uploads.min_size_bytes", 10*1024)

	v.SetDefault("underwriting.min_monthly_income", 25000)
	v.SetDefault("underwriting.income_multiple", 20)
	v.SetDefault("underwriting.max_loan_amount", 500000)
	v.SetDefault("underwriting.prime_threshold", 300000)
	v.SetDefault("underwriting.prime_rate", 14.0)
	v.SetDefault("underwriting.standard_rate", 16.0)
	v.SetDefault("underwriting.prime_tenure_months", 48)
	v.SetDefault("underwriting.standard_tenure_months", 36)
	v.SetDefault("underwriting.min_processing_fee", 1999)
	v.SetDefault("underwriting.fee_percent", 0.01)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	if cfg.Uploads.MinSizeBytes < 0 {
		return fmt.Errorf("uploads.min_size_bytes must be non-negative")
	}
	if len(cfg.Uploads.AllowedTypes) == 0 {
		return fmt.Errorf("uploads.allowed_types must not be empty")
	}
	if cfg.Underwriting.IncomeMultiple <= 0 {
		return fmt.Errorf("underwriting.income_multiple must be positive")
	}
	if cfg.Underwriting.MaxLoanAmount <= 0 {
		return fmt.Errorf("underwriting.max_loan_amount must be positive")
	}
	return nil
}
