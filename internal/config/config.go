package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Health   HealthConfig   `mapstructure:"health"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"DATABASE_URL"`
	Host     string `mapstructure:"DATABASE_HOST"`
	Port     string `mapstructure:"DATABASE_PORT"`
	Name     string `mapstructure:"DATABASE_NAME"`
	User     string `mapstructure:"DATABASE_USER"`
	Password string `mapstructure:"DATABASE_PASSWORD"`
}

type RedisConfig struct {
	URL      string `mapstructure:"REDIS_URL"`
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
}

type SweeperConfig struct {
	Interval  string `mapstructure:"SWEEPER_INTERVAL"`
	Timezone  string `mapstructure:"SWEEPER_TIMEZONE"`
	ServerURL string `mapstructure:"SWEEPER_SERVER_URL"`
	AdminAddr string `mapstructure:"SWEEPER_ADMIN_ADDRESS"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// PolicyConfig seeds the lending policy on first boot. Once initialized,
// the persisted policy wins and these values are ignored.
type PolicyConfig struct {
	ConsensusThresholdBps int64  `mapstructure:"POLICY_CONSENSUS_THRESHOLD_BPS"`
	MembershipFee         string `mapstructure:"POLICY_MEMBERSHIP_FEE"`
	MinMembershipDuration string `mapstructure:"POLICY_MIN_MEMBERSHIP_DURATION"`
	MaxLoanDurationDays   int    `mapstructure:"POLICY_MAX_LOAN_DURATION_DAYS"`
	MinInterestRateBps    int64  `mapstructure:"POLICY_MIN_INTEREST_RATE_BPS"`
	MaxInterestRateBps    int64  `mapstructure:"POLICY_MAX_INTEREST_RATE_BPS"`
	CooldownPeriod        string `mapstructure:"POLICY_COOLDOWN_PERIOD"`
	MaxLoanRatioBps       int64  `mapstructure:"POLICY_MAX_LOAN_RATIO_BPS"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("SWEEPER_INTERVAL", "1h")
	viper.SetDefault("SWEEPER_TIMEZONE", "UTC")
	viper.SetDefault("SWEEPER_SERVER_URL", "http://localhost:8080")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
	viper.SetDefault("POLICY_CONSENSUS_THRESHOLD_BPS", 5100)
	viper.SetDefault("POLICY_MEMBERSHIP_FEE", "1000000")
	viper.SetDefault("POLICY_MIN_MEMBERSHIP_DURATION", "720h")
	viper.SetDefault("POLICY_MAX_LOAN_DURATION_DAYS", 30)
	viper.SetDefault("POLICY_MIN_INTEREST_RATE_BPS", 500)
	viper.SetDefault("POLICY_MAX_INTEREST_RATE_BPS", 2000)
	viper.SetDefault("POLICY_COOLDOWN_PERIOD", "336h")
	viper.SetDefault("POLICY_MAX_LOAN_RATIO_BPS", 5000)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Policy.ConsensusThresholdBps <= 0 || c.Policy.ConsensusThresholdBps > 10000 {
		return fmt.Errorf("POLICY_CONSENSUS_THRESHOLD_BPS must be between 1 and 10000")
	}

	if c.Policy.MinInterestRateBps < 0 || c.Policy.MaxInterestRateBps < c.Policy.MinInterestRateBps {
		return fmt.Errorf("POLICY_MIN/MAX_INTEREST_RATE_BPS must form a valid range")
	}

	if c.Policy.MaxLoanDurationDays <= 0 {
		return fmt.Errorf("POLICY_MAX_LOAN_DURATION_DAYS must be greater than 0")
	}

	if c.Policy.MaxLoanRatioBps <= 0 || c.Policy.MaxLoanRatioBps > 10000 {
		return fmt.Errorf("POLICY_MAX_LOAN_RATIO_BPS must be between 1 and 10000")
	}

	// Validate membership fee
	fee, err := decimal.NewFromString(c.Policy.MembershipFee)
	if err != nil {
		return fmt.Errorf("POLICY_MEMBERSHIP_FEE must be a valid decimal: %w", err)
	}
	if !fee.IsPositive() {
		return fmt.Errorf("POLICY_MEMBERSHIP_FEE must be greater than 0")
	}

	// Validate durations
	if _, err := time.ParseDuration(c.Policy.MinMembershipDuration); err != nil {
		return fmt.Errorf("POLICY_MIN_MEMBERSHIP_DURATION must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Policy.CooldownPeriod); err != nil {
		return fmt.Errorf("POLICY_COOLDOWN_PERIOD must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Sweeper.Interval); err != nil {
		return fmt.Errorf("SWEEPER_INTERVAL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetMembershipFee returns the configured membership fee as decimal
func (c *Config) GetMembershipFee() decimal.Decimal {
	fee, _ := decimal.NewFromString(c.Policy.MembershipFee)
	return fee
}

// GetMinMembershipDuration returns the seasoning period as duration
func (c *Config) GetMinMembershipDuration() time.Duration {
	duration, _ := time.ParseDuration(c.Policy.MinMembershipDuration)
	return duration
}

// GetCooldownPeriod returns the between-loans cooldown as duration
func (c *Config) GetCooldownPeriod() time.Duration {
	duration, _ := time.ParseDuration(c.Policy.CooldownPeriod)
	return duration
}

// GetSweeperInterval returns the sweeper interval as duration
func (c *Config) GetSweeperInterval() time.Duration {
	duration, _ := time.ParseDuration(c.Sweeper.Interval)
	return duration
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
