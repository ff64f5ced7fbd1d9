package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/sushihentaime/blogsite/internal/identity"
)

const (
	storageDriverPostgres = "postgres"
	storageDriverMemory   = "memory"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DBHost        string `mapstructure:"POSTGRES_HOST"`
	DBPort        string `mapstructure:"POSTGRES_PORT"`
	DBUser        string `mapstructure:"POSTGRES_USER"`
	DBPassword    string `mapstructure:"POSTGRES_PASSWORD"`
	DBName        string `mapstructure:"POSTGRES_DB"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCertsURL  string `mapstructure:"FIREBASE_CERTS_URL"`
	AuthDevSecret     string `mapstructure:"AUTH_DEV_SECRET"`

	RateLimitRPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int     `mapstructure:"RATE_LIMIT_BURST"`
	RateLimitEnabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var configDefaults = map[string]any{
	"PORT":                "8080",
	"ENVIRONMENT":         "development",
	"VERSION":             "1.0.0",
	"TRUSTED_ORIGINS":     "",
	"STORAGE_DRIVER":      storageDriverPostgres,
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "",
	"POSTGRES_PASSWORD":   "",
	"POSTGRES_DB":         "",
	"DB_AUTO_MIGRATE":     false,
	"FIREBASE_PROJECT_ID": "",
	"FIREBASE_CERTS_URL":  identity.GoogleCertsURL,
	"AUTH_DEV_SECRET":     "",
	"RATE_LIMIT_RPS":      2,
	"RATE_LIMIT_BURST":    4,
	"RATE_LIMIT_ENABLED":  true,
	"MAIL_HOST":           "",
	"MAIL_PORT":           587,
	"MAIL_USER":           "",
	"MAIL_PASSWORD":       "",
	"MAIL_SENDER":         "",
	"RABBITMQ_HOST":       "",
	"RABBITMQ_PORT":       "5672",
	"RABBITMQ_USER":       "",
	"RABBITMQ_PASSWORD":   "",
	"TLS_CERT_FILE":       "",
	"TLS_KEY_FILE":        "",
}

// loadConfig reads the .env file at path. Environment variables override the
// file, and a missing file leaves the environment and defaults in place.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.TrustedOrigins = splitOrigins(config.TrustedOrigins)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// splitOrigins drops empty entries and accepts space separated values too.
func splitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.FieldsFunc(o, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case storageDriverPostgres, storageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.FirebaseProjectID == "" && c.AuthDevSecret == "" {
		return errors.New("one of FIREBASE_PROJECT_ID or AUTH_DEV_SECRET must be set")
	}

	if c.AuthDevSecret != "" && c.Environment == "production" {
		return errors.New("AUTH_DEV_SECRET cannot be used in production")
	}

	if c.Environment == "production" && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required in production")
	}

	return nil
}

// notificationsEnabled reports whether a broker is configured.
func (c *Config) notificationsEnabled() bool {
	return c.MQHost != ""
}
