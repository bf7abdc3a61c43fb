package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
	"github.com/dmitrijs2005/gophsession/internal/timex"
)

// JSONConfig is the file layout. Only present fields override earlier values.
type JSONConfig struct {
	BackendURL     string         `json:"backend_url"`
	Transport      string         `json:"transport"`
	GRPCAddr       string         `json:"grpc_addr"`
	TokenStore     string         `json:"token_store"`
	DatabaseDSN    string         `json:"database_dsn"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPassword  string         `json:"redis_password"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	MetricsAddr    string         `json:"metrics_addr"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.BackendURL, jc.BackendURL)
	overlay(&cfg.Transport, jc.Transport)
	overlay(&cfg.GRPCAddr, jc.GRPCAddr)
	overlay(&cfg.TokenStore, jc.TokenStore)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.RedisAddr, jc.RedisAddr)
	overlay(&cfg.RedisPassword, jc.RedisPassword)
	overlay(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
