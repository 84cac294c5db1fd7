package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "BOOKSHOP_"
	defaultSessionTTL = 7 * 24 * time.Hour
)

type Config struct {
	Server struct {
		Host          string `json:"host"`
		Port          int    `json:"port"`
		Subpath       string `json:"subpath"`
		SessionSecret string `json:"sessionSecret"`
		CookieSecure  bool   `json:"cookieSecure"`
	} `json:"server"`
	Database struct {
		Driver string `json:"driver"` // "sqlite" or "postgres"
		DSN    string `json:"dsn"`
	} `json:"database"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Session struct {
		TTL time.Duration `json:"ttl"`
	} `json:"session"`
	Auth struct {
		EnforceOwnership bool `json:"enforceOwnership"`
		BcryptCost       int  `json:"bcryptCost"`
	} `json:"auth"`
	Log struct {
		Level  string `json:"level"`
		Pretty bool   `json:"pretty"`
	} `json:"log"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the config file from disk once, overlays BOOKSHOP_* environment
// variables and fills defaults. A .env file next to the working directory is honoured.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		cfg, cfgErr = load(path)
	})
	return cfg, cfgErr
}

func load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	existing := k.Raw()
	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return canonicalEnvKey(strings.TrimPrefix(key, envPrefix), existing), value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	c := Defaults()
	if err := k.UnmarshalWithConf("", c, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Defaults returns a Config holding every default value. Loaded files override it.
func Defaults() *Config {
	c := &Config{}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 5555
	c.Database.Driver = "sqlite"
	c.Database.DSN = "app.db"
	c.Redis.Addr = "localhost:6379"
	c.Session.TTL = defaultSessionTTL
	c.Auth.EnforceOwnership = true
	c.Log.Level = "info"
	return c
}

func (c *Config) Validate() error {
	if c.Server.SessionSecret == "" {
		return errors.New("sessionSecret must be set in config")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

// canonicalEnvKey turns SERVER__SESSIONSECRET into server.sessionSecret, reusing the
// casing of keys already present in the file so both sources merge onto one key.
func canonicalEnvKey(raw string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(raw), "__")
	out := make([]string, 0, len(segments))
	current := existing
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		matched := seg
		var next map[string]any
		for key, value := range current {
			if strings.EqualFold(key, seg) {
				matched = key
				next, _ = value.(map[string]any)
				break
			}
		}
		out = append(out, matched)
		current = next
	}
	return strings.Join(out, ".")
}
