package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config holds the runtime settings for a collection cycle.
type Config struct {
	// StateDir is where the generational sets and last-run marker live.
	StateDir string `mapstructure:"state_dir" validate:"required"`

	// StateBackend selects the persistence mechanism.
	StateBackend string `mapstructure:"state_backend" validate:"required,oneof=file sqlite"`

	// MinInterval is the minimum wall-clock time between cycles. A run
	// started earlier than this after the previous one is skipped unless
	// forced.
	MinInterval time.Duration `mapstructure:"min_interval" validate:"min=0"`
}

// DefaultStateDir returns the per-user default state directory.
func DefaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".reaper"
	}
	return filepath.Join(homeDir, ".local", "share", "reaper")
}

// Load reads configuration from an optional YAML file, the REAPER_*
// environment, and built-in defaults, then validates the result. filePath may
// be empty, in which case only environment and defaults apply.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetDefault("state_dir", DefaultStateDir())
	v.SetDefault("state_backend", "file")
	v.SetDefault("min_interval", time.Hour)

	v.SetEnvPrefix("REAPER")
	v.AutomaticEnv()

	if filePath != "" {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", filePath)
		}
		v.SetConfigFile(filePath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, formatValidationError(err)
	}

	return &cfg, nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, formatFieldError(e))
		}

		if len(errorMessages) == 1 {
			return fmt.Errorf("validation error: %s", errorMessages[0])
		}

		result := "validation errors:\n"
		for _, msg := range errorMessages {
			result += fmt.Sprintf("  - %s\n", msg)
		}
		return fmt.Errorf("%s", result)
	}
	return fmt.Errorf("validation failed: %w", err)
}

// formatFieldError formats a single validation error into a user-friendly message.
func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("field '%s' is required but missing", field)
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' failed validation (%s)", field, tag)
	}
}
