// Package config loads portalimg settings from file, environment and .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"portalimg/internal/core/domain"
	"portalimg/internal/source"
)

const EnvPrefix = "PORTALIMG"

type Config struct {
	Compression domain.CompressionOptions `mapstructure:"compression"`
	Storage     StorageConfig             `mapstructure:"storage"`
	Upload      UploadConfig              `mapstructure:"upload"`
	Logging     LoggingConfig             `mapstructure:"logging"`
}

type StorageConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	ImagePrefix    string `mapstructure:"image_prefix"`
	MetadataPrefix string `mapstructure:"metadata_prefix"`
}

type UploadConfig struct {
	// Workers <= 0 means one per hardware thread.
	Workers    int     `mapstructure:"workers"`
	MaxInputMB float64 `mapstructure:"max_input_mb"`
	Category   string  `mapstructure:"category"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MaxInputBytes is the largest source file the CLI will read.
func (u UploadConfig) MaxInputBytes() int64 {
	return int64(u.MaxInputMB * domain.BytesPerMB)
}

// Load reads .env (if present), then the config file, then PORTALIMG_* variables.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".portalimg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/portalimg")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("compression.max_size_mb", domain.DefaultMaxSizeMB)
	v.SetDefault("compression.max_width_or_height", domain.DefaultMaxWidthOrHeight)
	v.SetDefault("compression.quality", domain.DefaultQuality)
	v.SetDefault("compression.file_type", domain.DefaultFileType)

	v.SetDefault("storage.bucket", "portal-media")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.image_prefix", "images/")
	v.SetDefault("storage.metadata_prefix", "metadata/")

	v.SetDefault("upload.workers", 0)
	v.SetDefault("upload.max_input_mb", 32)
	v.SetDefault("upload.category", string(domain.CategoryGeneral))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func (c *Config) Validate() error {
	if err := ValidateCompression(c.Compression); err != nil {
		return err
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	if n := c.Upload.MaxInputBytes(); n < source.MinMaxInputSize || n > source.MaxMaxInputSize {
		return fmt.Errorf("upload.max_input_mb must be between %v and %v, got %v",
			float64(source.MinMaxInputSize)/domain.BytesPerMB, float64(source.MaxMaxInputSize)/domain.BytesPerMB, c.Upload.MaxInputMB)
	}
	if !domain.Category(c.Upload.Category).IsValid() {
		return fmt.Errorf("upload.category %q is not a portal category", c.Upload.Category)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// ValidateCompression checks options after defaults have been applied, so
// zero values are rejected here rather than silently replaced.
func ValidateCompression(o domain.CompressionOptions) error {
	if o.MaxSizeMB <= 0 {
		return fmt.Errorf("compression.max_size_mb must be positive, got %v", o.MaxSizeMB)
	}
	if o.MaxWidthOrHeight <= 0 {
		return fmt.Errorf("compression.max_width_or_height must be positive, got %d", o.MaxWidthOrHeight)
	}
	if o.Quality <= 0 || o.Quality > 1 {
		return fmt.Errorf("compression.quality must be in (0, 1], got %v", o.Quality)
	}
	if !strings.HasPrefix(o.FileType, "image/") {
		return fmt.Errorf("compression.file_type must be an image MIME type, got %q", o.FileType)
	}
	return nil
}
