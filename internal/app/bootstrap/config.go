package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	HTTPPort  int

	RedisURL string
	WorkDir  string

	MaxUploadMB          int
	DownloadTTLMinutes   int
	SweepIntervalSeconds int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Artifacts struct {
		RedisURL             string `yaml:"redis_url"`
		WorkDir              string `yaml:"work_dir"`
		DownloadTTLMinutes   int    `yaml:"download_ttl_minutes"`
		SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
	} `yaml:"artifacts"`
	Limits struct {
		MaxUploadMB int `yaml:"max_upload_mb"`
	} `yaml:"limits"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "M63-Order-Extraction-Service",
		HTTPPort:             8080,
		MaxUploadMB:          64,
		DownloadTTLMinutes:   30,
		SweepIntervalSeconds: 60,
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Artifacts.RedisURL != "" {
			cfg.RedisURL = f.Artifacts.RedisURL
		}
		if f.Artifacts.WorkDir != "" {
			cfg.WorkDir = f.Artifacts.WorkDir
		}
		if f.Artifacts.DownloadTTLMinutes > 0 {
			cfg.DownloadTTLMinutes = f.Artifacts.DownloadTTLMinutes
		}
		if f.Artifacts.SweepIntervalSeconds > 0 {
			cfg.SweepIntervalSeconds = f.Artifacts.SweepIntervalSeconds
		}
		if f.Limits.MaxUploadMB > 0 {
			cfg.MaxUploadMB = f.Limits.MaxUploadMB
		}
	}
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.WorkDir = envOrDefault("WORK_DIR", cfg.WorkDir)
	cfg.MaxUploadMB = envInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.DownloadTTLMinutes = envInt("DOWNLOAD_TTL_MINUTES", cfg.DownloadTTLMinutes)
	cfg.SweepIntervalSeconds = envInt("SWEEP_INTERVAL_SECONDS", cfg.SweepIntervalSeconds)
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func (c Config) DownloadTTL() time.Duration {
	return time.Duration(c.DownloadTTLMinutes) * time.Minute
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
