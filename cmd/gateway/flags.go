package main

import (
	"flag"

	"github.com/MaxRadzey/codecgateway/internal/config"
)

// ParseFlag регистрирует флаги сервиса в fs и разбирает args.
func ParseFlag(fs *flag.FlagSet, config *config.Config, args []string) error {
	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "write logs to this file with rotation")
	fs.StringVar(&config.ConfigFile, "c", config.ConfigFile, "path to YAML or JSON config file")
	fs.StringVar(&config.RenderMode, "r", config.RenderMode, "canonical rendering of data: json or repr")
	fs.Int64Var(&config.MaxBodySize, "max-body", config.MaxBodySize, "max request body size in bytes")
	fs.Int64Var(&config.MaxDecompressedSize, "max-decompressed", config.MaxDecompressedSize, "max decompressed size in bytes, 0 for no limit")
	fs.IntVar(&config.GzipLevel, "gzip-level", config.GzipLevel, "gzip compression level")
	fs.IntVar(&config.BrotliQuality, "brotli-quality", config.BrotliQuality, "brotli quality 0..11")
	fs.BoolVar(&config.LegacyErrors, "legacy-errors", config.LegacyErrors, "answer 500 on every error")
	fs.BoolVar(&config.MetricsEnabled, "metrics", config.MetricsEnabled, "expose /metrics")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout")

	return fs.Parse(args)
}
