package config

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Transports.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Token stores.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// BackendURLEnv overrides BackendURL, the same variable the relay reads.
const BackendURLEnv = "BACKEND_API_URL"

// Config holds runtime settings for the session CLI.
type Config struct {
	BackendURL     string
	Transport      string
	GRPCAddr       string
	TokenStore     string
	DatabaseDSN    string
	RedisAddr      string
	RedisPassword  string
	RequestTimeout time.Duration
	MetricsAddr    string
}

// LoadDefaults populates c with defaults for a local relay.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://localhost:3000"
	c.Transport = TransportHTTP
	c.GRPCAddr = "127.0.0.1:50051"
	c.TokenStore = StoreSQLite
	c.DatabaseDSN = "gophsession.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RequestTimeout = 10 * time.Second
}

// Validate checks the settings the selected transport and store depend on.
func (c Config) Validate() error {
	fields := []*validation.FieldRules{
		validation.Field(&c.Transport, validation.Required, validation.In(TransportHTTP, TransportGRPC)),
		validation.Field(&c.TokenStore, validation.Required, validation.In(StoreSQLite, StoreRedis, StoreMemory)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
	}
	switch c.Transport {
	case TransportHTTP:
		fields = append(fields, validation.Field(&c.BackendURL, validation.Required, is.URL))
	case TransportGRPC:
		fields = append(fields, validation.Field(&c.GRPCAddr, validation.Required, is.DialString))
	}
	switch c.TokenStore {
	case StoreSQLite:
		fields = append(fields, validation.Field(&c.DatabaseDSN, validation.Required))
	case StoreRedis:
		fields = append(fields, validation.Field(&c.RedisAddr, validation.Required, is.DialString))
	}
	return validation.ValidateStruct(&c, fields...)
}

// Load builds a Config from defaults, the JSON file named by -c/-config in
// args, the environment and finally the flags in args. Later sources win.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

func parseEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := getenv(BackendURLEnv); v != "" {
		cfg.BackendURL = v
	}
}
