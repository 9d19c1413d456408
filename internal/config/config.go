package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	BankPath       string        `mapstructure:"bank_path"`
	BankStrict     bool          `mapstructure:"bank_strict"`
	StorageBackend string        `mapstructure:"storage_backend"`
	StatsPath      string        `mapstructure:"stats_path"`
	SessionPath    string        `mapstructure:"session_path"`
	DBPath         string        `mapstructure:"db_path"`
	Addr           string        `mapstructure:"addr"`
	LogLevel       string        `mapstructure:"log_level"`
	LogColors      bool          `mapstructure:"log_colors"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	WorstLimit     int           `mapstructure:"worst_limit"`
}

// Load reads configuration from a .env file (if present), an optional
// quizdrill.yaml and environment variables, applying defaults for missing keys.
func Load() (Config, error) {
	// Ignore error so the trainer still starts when .env is absent.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("quizdrill")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("bank_path", "merged_questions.json")
	v.SetDefault("bank_strict", false)
	v.SetDefault("storage_backend", BackendJSON)
	v.SetDefault("stats_path", "stats.json")
	v.SetDefault("session_path", "last_session.json")
	v.SetDefault("db_path", "file:quizdrill.db")
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_colors", true)
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("worst_limit", 10)

	// BANK_PATH, STATS_PATH, ... map straight onto the keys above.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// Validate reports every invalid setting in a single error.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.BankPath) == "" {
		problems = append(problems, "BANK_PATH cannot be empty")
	}

	switch strings.ToLower(c.StorageBackend) {
	case BackendJSON:
		if strings.TrimSpace(c.StatsPath) == "" {
			problems = append(problems, "STATS_PATH cannot be empty")
		}
		if strings.TrimSpace(c.SessionPath) == "" {
			problems = append(problems, "SESSION_PATH cannot be empty")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			problems = append(problems, "DB_PATH cannot be empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND must be %q or %q, got %q", BackendJSON, BackendSQLite, c.StorageBackend))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}

	if c.TickInterval <= 0 {
		problems = append(problems, "TICK_INTERVAL must be positive")
	}
	if c.WorstLimit <= 0 {
		problems = append(problems, "WORST_LIMIT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
