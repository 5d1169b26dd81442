package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Uploads      UploadConfig       `mapstructure:"uploads"`
	Underwriting UnderwritingConfig `mapstructure:"underwriting"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // seconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UploadConfig holds KYC document validation settings.
type UploadConfig struct {
	AllowedTypes []string `mapstructure:"allowed_types"`
	MinSizeBytes int64    `mapstructure:"min_size_bytes"`
}

// UnderwritingConfig holds the rule constants for the eligibility engine.
type UnderwritingConfig struct {
	MinMonthlyIncome int64   `mapstructure:"min_monthly_income"`
	IncomeMultiple   int64   `mapstructure:"income_multiple"`
	MaxLoanAmount    int64   `mapstructure:"max_loan_amount"`
	PrimeThreshold   int64   `mapstructure:"prime_threshold"`
	PrimeRate        float64 `mapstructure:"prime_rate"`
	StandardRate     float64 `mapstructure:"standard_rate"`
	PrimeTenure      int     `mapstructure:"prime_tenure_months"`
	StandardTenure   int     `mapstructure:"standard_tenure_months"`
	MinProcessingFee int64   `mapstructure:"min_processing_fee"`
	FeePercent       float64 `mapstructure:"fee_percent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
