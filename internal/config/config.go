package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Addr                string        `mapstructure:"addr" validate:"required"`
	DBDriver            string        `mapstructure:"db_driver" validate:"oneof=sqlite3 postgres memory"`
	DBPath              string        `mapstructure:"db_path" validate:"required_unless=DBDriver memory"`
	LogLevel            string        `mapstructure:"log_level" validate:"loglevel"`
	StudySetSize        int           `mapstructure:"study_set_size" validate:"min=1,max=500"`
	ReviewRatio         float64       `mapstructure:"review_ratio" validate:"gte=0,lte=1"`
	ReviewRetryAttempts uint          `mapstructure:"review_retry_attempts" validate:"min=1,max=10"`
	DigestInterval      time.Duration `mapstructure:"digest_interval" validate:"gte=0s"`
	DigestWorkerCount   int           `mapstructure:"digest_worker_count" validate:"min=1"`
	DigestQueueSize     int           `mapstructure:"digest_queue_size" validate:"min=1"`
}

var defaults = map[string]any{
	"addr":                  ":8080",
	"db_driver":             DriverSQLite,
	"db_path":               "file:wordflash.db",
	"log_level":             "INFO",
	"study_set_size":        20,
	"review_ratio":          0.7,
	"review_retry_attempts": 3,
	"digest_interval":       time.Hour,
	"digest_worker_count":   2,
	"digest_queue_size":     32,
}

// Load reads configuration from a .env file (if present), an optional YAML
// config file and environment variables, in increasing order of precedence.
// Keys map to upper-cased environment variables (db_path -> DB_PATH).
func Load(configFile string) (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s environment variable: %w", strings.ToUpper(key), err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("configuration file %s could not be read: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	return cfg, nil
}

// Validate checks every field and reports all problems at once, naming the
// environment variable that controls each.
func (c Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, errors.New(describe(fe)))
	}
	return errors.Join(errs...)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return strings.ToUpper(name)
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
			return true
		}
		return false
	})
	return validate
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s cannot be empty", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "loglevel":
		return fmt.Sprintf("%s must be one of DEBUG, INFO, WARN, ERROR, got %q", fe.Field(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
