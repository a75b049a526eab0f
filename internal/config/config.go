package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// SMS provider (Twilio)
	TwilioAccountSID string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`
	TwilioFromNumber string `mapstructure:"twilio_from_number"`

	// Email provider (SMTP)
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`

	// Recruiter identity used for template variables
	RecruiterName  string `mapstructure:"recruiter_name"`
	RecruiterEmail string `mapstructure:"recruiter_email"`
	RecruiterPhone string `mapstructure:"recruiter_phone"`
	CompanyName    string `mapstructure:"company_name"`
	RoleTitle      string `mapstructure:"role_title"`

	// Background polling
	DeliveryPollSeconds int `mapstructure:"delivery_poll_seconds"`
	ReplyPollSeconds    int `mapstructure:"reply_poll_seconds"`
}

// DeliveryPollInterval returns the delivery poller tick interval.
func (c *Config) DeliveryPollInterval() time.Duration {
	return time.Duration(c.DeliveryPollSeconds) * time.Second
}

// ReplyPollInterval returns the inbound reply poller tick interval.
func (c *Config) ReplyPollInterval() time.Duration {
	return time.Duration(c.ReplyPollSeconds) * time.Second
}

// SMSConfigured reports whether the Twilio credentials are usable.
func (c *Config) SMSConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// EmailConfigured reports whether the SMTP credentials are usable.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != ""
}

// Initialize loads or creates the configuration file and returns the config.
func Initialize() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".talentreach")
	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return nil, err
		}
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	viper.SetDefault("twilio_account_sid", "")
	viper.SetDefault("twilio_auth_token", "")
	viper.SetDefault("twilio_from_number", "")
	viper.SetDefault("smtp_host", "")
	viper.SetDefault("smtp_port", 587)
	viper.SetDefault("smtp_user", "")
	viper.SetDefault("smtp_password", "")
	viper.SetDefault("smtp_from", "")
	viper.SetDefault("recruiter_name", "")
	viper.SetDefault("recruiter_email", "")
	viper.SetDefault("recruiter_phone", "")
	viper.SetDefault("company_name", "")
	viper.SetDefault("role_title", "")
	viper.SetDefault("delivery_poll_seconds", 60)
	viper.SetDefault("reply_poll_seconds", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# talentreach configuration

# SMS provider (keep this file secure!)
twilio_account_sid: ""
twilio_auth_token: ""
twilio_from_number: ""

# Email provider (keep this file secure!)
smtp_host: ""
smtp_port: 587
smtp_user: ""
smtp_password: ""
smtp_from: ""

# Recruiter identity used in message templates
recruiter_name: ""
recruiter_email: ""
recruiter_phone: ""
company_name: ""
role_title: ""

# Background polling intervals
delivery_poll_seconds: 60
reply_poll_seconds: 30
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value
func Set(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".talentreach", "config.yaml")
}

// DataDir returns the directory holding the sqlite database.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".talentreach"), nil
}
