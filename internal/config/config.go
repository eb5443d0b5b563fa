package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	DB struct {
		Driver string `yaml:"driver"` // sqlite|postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"db"`
	Auth struct {
		HMACSecret string `yaml:"hmac_secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Checkpoint struct {
		TTL string `yaml:"ttl"`
	} `yaml:"checkpoint"`
	Blob struct {
		BasePath string `yaml:"base_path"`
	} `yaml:"blob"`
}

// Load reads YAML config from path, then lets environment variables
// override it so container deployments need no config file at all.
// A missing file is not an error; env and defaults take over.
func Load(path string) (Config, error) {
	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("AUTH_HMAC_SECRET"); v != "" {
		c.Auth.HMACSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CHECKPOINT_TTL"); v != "" {
		c.Checkpoint.TTL = v
	}
	if v := os.Getenv("BLOB_BASE_PATH"); v != "" {
		c.Blob.BasePath = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.Auth.HMACSecret == "" {
		c.Auth.HMACSecret = "supersecret-dev-key"
	}
	if c.Blob.BasePath == "" {
		c.Blob.BasePath = "./data/blobs"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty
// or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
