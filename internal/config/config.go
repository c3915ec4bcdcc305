// Package config loads the settings of the mqb command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	querybuilder "github.com/niklucky/mysql-query-builder"
)

var AppFs = afero.NewOsFs()

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the application configuration
type Config struct {
	DSN          string
	Inline       bool
	DefaultLimit int
	LogLevel     string
}

// Load reads mqb.yaml (or file when given), the MQB_* environment and any
// .env file in the working directory. The environment wins over the file and
// .env only fills variables that are unset or empty.
func Load(file string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("mqb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MQB")
	v.AutomaticEnv()

	v.SetDefault("dsn", "")
	v.SetDefault("inline", false)
	v.SetDefault("default_limit", querybuilder.DefaultLimit)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DSN:          v.GetString("dsn"),
		Inline:       v.GetBool("inline"),
		DefaultLimit: v.GetInt("default_limit"),
		LogLevel:     v.GetString("log_level"),
	}
	return cfg, cfg.Validate()
}

// loadDotEnv exports the variables of name on AppFs. A missing file is fine.
func loadDotEnv(name string) error {
	f, err := AppFs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	for k, v := range vars {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("%w: default_limit must be positive, got %d", ErrInvalidConfig, c.DefaultLimit)
	}
	if c.DSN != "" {
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return fmt.Errorf("%w: dsn: %v", ErrInvalidConfig, err)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

// Options turns the configuration into builder options.
func (c *Config) Options(logger *slog.Logger) []querybuilder.Option {
	opts := []querybuilder.Option{
		querybuilder.WithLogger(logger),
		querybuilder.WithDefaultLimit(c.DefaultLimit),
	}
	if c.Inline {
		opts = append(opts, querybuilder.WithInlineValues())
	}
	return opts
}

// MySQL returns the parsed DSN with parseTime enabled.
func (c *Config) MySQL() (*mysql.Config, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("%w: dsn is not set", ErrInvalidConfig)
	}
	mc, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: dsn: %v", ErrInvalidConfig, err)
	}
	mc.ParseTime = true
	return mc, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
