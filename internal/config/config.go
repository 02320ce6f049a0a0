package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/render"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Address  string `mapstructure:"address"`
	LogLevel string `mapstructure:"log_level"`

	// LogFile — путь к файлу журнала. Пустое значение — вывод в stderr.
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	// MaxBodySize ограничивает размер тела запроса в байтах.
	MaxBodySize int64 `mapstructure:"max_body_size"`
	// MaxDecompressedSize ограничивает размер распакованных данных, 0 — без ограничения.
	MaxDecompressedSize int64 `mapstructure:"max_decompressed_size"`

	GzipLevel     int    `mapstructure:"gzip_level"`
	BrotliQuality int    `mapstructure:"brotli_quality"`
	RenderMode    string `mapstructure:"render_mode"`

	// LegacyErrors возвращает 500 на любую ошибку, как делала первая версия сервиса.
	LegacyErrors bool `mapstructure:"legacy_errors"`

	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	ConfigFile string `mapstructure:"-"`
}

func New() *Config {
	return &Config{
		Address:             "localhost:8080",
		LogLevel:            "info",
		LogMaxSizeMB:        100,
		LogMaxBackups:       3,
		MaxBodySize:         10 << 20,
		MaxDecompressedSize: 64 << 20,
		GzipLevel:           -1,
		BrotliQuality:       codec.DefaultBrotliQuality,
		RenderMode:          string(render.ModeJSON),
		MetricsEnabled:      true,
		ShutdownTimeout:     10 * time.Second,
	}
}

// LoadFile читает YAML или JSON файл конфигурации поверх значений по умолчанию.
// Ключи, отсутствующие в файле, остаются без изменений.
func LoadFile(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := v.Unmarshal(config); err != nil {
		return errors.Wrapf(err, "decode config file %s", path)
	}
	config.ConfigFile = path
	return nil
}

// ParseEnv переопределяет значения переменными окружения.
func ParseEnv(config *Config) error {
	if Address := os.Getenv("SERVER_ADDRESS"); Address != "" {
		config.Address = Address
	}
	if LogLevel := os.Getenv("LOG_LEVEL"); LogLevel != "" {
		config.LogLevel = LogLevel
	}
	if LogFile := os.Getenv("LOG_FILE"); LogFile != "" {
		config.LogFile = LogFile
	}
	if RenderMode := os.Getenv("RENDER_MODE"); RenderMode != "" {
		config.RenderMode = RenderMode
	}

	var err error
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if config.MaxBodySize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return errors.Wrap(err, "MAX_BODY_SIZE")
		}
	}
	if v := os.Getenv("MAX_DECOMPRESSED_SIZE"); v != "" {
		if config.MaxDecompressedSize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return errors.Wrap(err, "MAX_DECOMPRESSED_SIZE")
		}
	}
	if v := os.Getenv("GZIP_LEVEL"); v != "" {
		if config.GzipLevel, err = strconv.Atoi(v); err != nil {
			return errors.Wrap(err, "GZIP_LEVEL")
		}
	}
	if v := os.Getenv("BROTLI_QUALITY"); v != "" {
		if config.BrotliQuality, err = strconv.Atoi(v); err != nil {
			return errors.Wrap(err, "BROTLI_QUALITY")
		}
	}
	if v := os.Getenv("LEGACY_ERRORS"); v != "" {
		if config.LegacyErrors, err = strconv.ParseBool(v); err != nil {
			return errors.Wrap(err, "LEGACY_ERRORS")
		}
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if config.MetricsEnabled, err = strconv.ParseBool(v); err != nil {
			return errors.Wrap(err, "METRICS_ENABLED")
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if config.ShutdownTimeout, err = time.ParseDuration(v); err != nil {
			return errors.Wrap(err, "SHUTDOWN_TIMEOUT")
		}
	}
	return nil
}

// Validate проверяет, что значения согласованы между собой.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("address must not be empty")
	}
	if c.MaxBodySize <= 0 {
		return errors.Newf("max body size must be positive, got %d", c.MaxBodySize)
	}
	if c.MaxDecompressedSize < 0 {
		return errors.Newf("max decompressed size must not be negative, got %d", c.MaxDecompressedSize)
	}
	if _, err := render.ParseMode(c.RenderMode); err != nil {
		return err
	}
	if _, err := codec.NewGzipCodecWithLevel(c.GzipLevel, 0); err != nil {
		return err
	}
	if _, err := codec.NewBrotliCodecWithQuality(c.BrotliQuality, 0); err != nil {
		return err
	}
	return nil
}
