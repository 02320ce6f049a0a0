package main

import (
	"flag"
	"os"

	"github.com/MaxRadzey/codecgateway/internal/app"
	"github.com/MaxRadzey/codecgateway/internal/config"
	"github.com/cockroachdb/errors"
	_ "go.uber.org/automaxprocs"
)

func main() {
	AppConfig, err := LoadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}

	if err := app.Run(AppConfig); err != nil {
		panic(err)
	}
}

// LoadConfig собирает конфигурацию из всех источников.
// Порядок приоритета: значения по умолчанию < файл < флаги < переменные окружения.
// Файл задаётся флагом -c или переменной CONFIG.
func LoadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.New()
	if err := ParseFlag(fs, cfg, args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	if path := configPath(cfg); path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return nil, err
		}
		// Файл перезаписал поля, поэтому флаги применяются повторно.
		if err := fs.Parse(args); err != nil {
			return nil, errors.Wrap(err, "parse flags")
		}
	}

	if err := config.ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath(cfg *config.Config) string {
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile
	}
	return os.Getenv("CONFIG")
}
