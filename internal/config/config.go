package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Optional subsystems
// (database archive, event broker, object storage, rate limiting) stay off
// when their settings are empty.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	LibraryName     string `yaml:"libraryName"`
	LibraryLocation string `yaml:"libraryLocation"`

	DatabaseURL string `yaml:"databaseURL"`

	RedisAddr              string `yaml:"redisAddr"`
	RedisPassword          string `yaml:"redisPassword"`
	LendRateLimitPerMinute int    `yaml:"lendRateLimitPerMinute"`

	AMQPURL       string `yaml:"amqpURL"`
	EventExchange string `yaml:"eventExchange"`

	MinioEndpoint        string `yaml:"minioEndpoint"`
	MinioAccessKey       string `yaml:"minioAccessKey"`
	MinioSecretKey       string `yaml:"minioSecretKey"`
	MinioBucket          string `yaml:"minioBucket"`
	MinioUseSSL          bool   `yaml:"minioUseSSL"`
	PresignExpiryMinutes int    `yaml:"presignExpiryMinutes"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("OPENSHELF_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("OPENSHELF_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("OPENSHELF_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("OPENSHELF_AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("OPENSHELF_MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("OPENSHELF_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("OPENSHELF_MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("OPENSHELF_MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("OPENSHELF_MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("OPENSHELF_LEND_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LendRateLimitPerMinute = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.LibraryName == "" {
		cfg.LibraryName = "Central Library"
	}
	if cfg.EventExchange == "" {
		cfg.EventExchange = "openshelf.loans"
	}
	if cfg.PresignExpiryMinutes <= 0 {
		cfg.PresignExpiryMinutes = 15
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.LendRateLimitPerMinute > 0 && cfg.RedisAddr == "" {
		return errors.New("config: lendRateLimitPerMinute requires redisAddr")
	}
	if cfg.MinioEndpoint != "" {
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return errors.New("config: minio requires accessKey, secretKey, and bucket")
		}
	}
	return nil
}
