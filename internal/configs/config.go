package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"

	MailDeliveryDirect = "direct"
	MailDeliveryOutbox = "outbox"

	MailProviderSMTP   = "smtp"
	MailProviderResend = "resend"
)

type Config struct {
	App struct {
		Env         string `yaml:"env"`
		Port        string `yaml:"port"`
		UploadsRoot string `yaml:"uploads_root"`
		CORSOrigins string `yaml:"cors_origins"`
	} `yaml:"app"`

	DB struct {
		Driver       string        `yaml:"driver"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Name         string        `yaml:"dbname"`
		DSN          string        `yaml:"dsn"`
		Migrate      bool          `yaml:"migrate"`
		MaxOpenConns int           `yaml:"max_open_conns"`
		MaxIdleConns int           `yaml:"max_idle_conns"`
		ConnLifetime time.Duration `yaml:"conn_lifetime"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"redis_addr"`
		Username string `yaml:"redis_username"`
		Password string `yaml:"redis_password"`
		DB       int    `yaml:"redis_db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string        `yaml:"secret"`
		Expiry time.Duration `yaml:"expiry"`
	} `yaml:"jwt"`

	Auth struct {
		OTPLength               int           `yaml:"otp_length"`
		OTPTTL                  time.Duration `yaml:"otp_ttl"`
		AllowResendWhenVerified bool          `yaml:"allow_resend_when_verified"`
		MinPasswordLength       int           `yaml:"min_password_length"`
		MaxOTPAttempts          int           `yaml:"max_otp_attempts"`
		RateLimitPerSecond      float64       `yaml:"rate_limit_per_second"`
		RateLimitBurst          int           `yaml:"rate_limit_burst"`
	} `yaml:"auth"`

	Mail struct {
		Provider     string        `yaml:"provider"`
		Delivery     string        `yaml:"delivery"`
		SenderEmail  string        `yaml:"sender_email"`
		SMTPHost     string        `yaml:"smtp_host"`
		SMTPPort     int           `yaml:"smtp_port"`
		SMTPUsername string        `yaml:"smtp_username"`
		SMTPPassword string        `yaml:"smtp_password"`
		ResendAPIKey string        `yaml:"resend_api_key"`
		MaxAttempts  int           `yaml:"max_attempts"`
		RetryAfter   time.Duration `yaml:"retry_after"`
	} `yaml:"mail"`

	Log struct {
		Level string `yaml:"level"`
		Dev   bool   `yaml:"dev"`
	} `yaml:"log"`
}

// Load reads the YAML file for env from internal/configs (or CONFIG_PATH),
// expanding ${VAR} references from the process environment.
func Load(env string) (*Config, error) {
	configFile := "dev.yml"
	if env == EnvProduction {
		configFile = "prod.yml"
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("internal", "configs", configFile)
	}

	return LoadFile(configPath, env)
}

func LoadFile(path, env string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw, env)
}

func Parse(raw []byte, env string) (*Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if env != "" {
		cfg.App.Env = env
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.App.Env == "" {
		c.App.Env = EnvDevelopment
	}
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if c.App.UploadsRoot == "" {
		c.App.UploadsRoot = "uploads"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "mysql"
	}
	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = 100
	}
	if c.DB.MaxIdleConns == 0 {
		c.DB.MaxIdleConns = 10
	}
	if c.DB.ConnLifetime == 0 {
		c.DB.ConnLifetime = time.Hour
	}
	if c.JWT.Expiry == 0 {
		c.JWT.Expiry = 48 * time.Hour
	}
	if c.Auth.OTPLength == 0 {
		c.Auth.OTPLength = 6
	}
	if c.Auth.OTPTTL == 0 {
		c.Auth.OTPTTL = 5 * time.Minute
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 6
	}
	if c.Auth.MaxOTPAttempts == 0 {
		c.Auth.MaxOTPAttempts = 5
	}
	if c.Auth.RateLimitPerSecond == 0 {
		c.Auth.RateLimitPerSecond = 1
	}
	if c.Auth.RateLimitBurst == 0 {
		c.Auth.RateLimitBurst = 5
	}
	if c.Mail.Provider == "" {
		c.Mail.Provider = MailProviderSMTP
	}
	if c.Mail.Delivery == "" {
		c.Mail.Delivery = MailDeliveryDirect
	}
	if c.Mail.MaxAttempts == 0 {
		c.Mail.MaxAttempts = 5
	}
	if c.Mail.RetryAfter == 0 {
		c.Mail.RetryAfter = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is not configured")
	}
	if c.Auth.OTPLength != 4 && c.Auth.OTPLength != 6 {
		return fmt.Errorf("otp_length must be 4 or 6, got %d", c.Auth.OTPLength)
	}
	switch c.Mail.Delivery {
	case MailDeliveryDirect, MailDeliveryOutbox:
	default:
		return fmt.Errorf("unknown mail delivery mode %q", c.Mail.Delivery)
	}
	switch c.Mail.Provider {
	case MailProviderSMTP, MailProviderResend:
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// SQLDSN returns the configured DSN, or builds a MySQL one from the parts.
func (c *Config) SQLDSN() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name,
	)
}
