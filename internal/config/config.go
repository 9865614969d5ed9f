package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

type DatabaseOptions struct {
	Driver string `env:"DB_DRIVER" envDefault:"postgres"`
	DSN    string `env:"DB_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=cybershield port=5432 sslmode=disable"`
}

type ImportOptions struct {
	Root              string        `env:"IMPORT_ROOT" envDefault:"./import"`
	Source            string        `env:"IMPORT_SOURCE" envDefault:"dir"`
	Policy            string        `env:"IMPORT_POLICY" envDefault:"strict"`
	LegacyCityCountry bool          `env:"IMPORT_LEGACY_CITY_COUNTRY" envDefault:"false"`
	CityCountryMap    string        `env:"IMPORT_CITY_COUNTRY_MAP"`
	Schedule          time.Duration `env:"IMPORT_SCHEDULE"`
	UploadDir         string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
}

type S3Options struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"auto"`
	Bucket    string `env:"S3_BUCKET"`
	Prefix    string `env:"S3_PREFIX"`
	AccessKey string `env:"S3_ACCESS_KEY_ID"`
	SecretKey string `env:"S3_SECRET_ACCESS_KEY"`
}

type SheetsOptions struct {
	CredentialsFile string            `env:"GSHEETS_CREDENTIALS_FILE"`
	Files           map[string]string `env:"GSHEETS_FILES" envSeparator:"," envKeyValSeparator:"="`
}

type SMTPOptions struct {
	Host       string   `env:"SMTP_HOST"`
	Port       string   `env:"SMTP_PORT" envDefault:"587"`
	User       string   `env:"SMTP_USER"`
	Pass       string   `env:"SMTP_PASS"`
	Recipients []string `env:"REPORT_RECIPIENTS" envSeparator:","`
}

type TelegramOptions struct {
	BotToken     string  `env:"BOT_TOKEN"`
	AdminChatIDs []int64 `env:"BOT_ADMIN_CHAT_IDS" envSeparator:","`
}

type Config struct {
	Database DatabaseOptions
	Import   ImportOptions
	S3       S3Options
	Sheets   SheetsOptions
	SMTP     SMTPOptions
	Telegram TelegramOptions

	Environment   string `env:"APP_ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret     string `env:"JWT_SECRET"`
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	logger *logrus.Logger
}

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files (when present) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.logger = newLogger(c)
	return c, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Import.Source {
	case "dir", "s3", "gsheets":
	default:
		return fmt.Errorf("unsupported IMPORT_SOURCE %q", c.Import.Source)
	}
	switch c.Import.Policy {
	case "strict", "tolerant":
	default:
		return fmt.Errorf("unsupported IMPORT_POLICY %q", c.Import.Policy)
	}
	return nil
}

func (c *Config) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = newLogger(c)
	}
	return c.logger
}

func (c *Config) LogrusLogLevel() logrus.Level {
	switch strings.ToLower(c.LogLevel) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func newLogger(c *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogrusLogLevel())
	if c.Environment == Production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
