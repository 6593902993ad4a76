// Package config loads finsync settings. Sources are applied in order:
// built-in defaults, the YAML file, the .env file and process environment,
// and finally command line flags (bound by the cli package).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/iudanet/finsync/internal/logging"
	"github.com/iudanet/finsync/internal/validation"
)

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "FINSYNC_"

// Config holds the client configuration
type Config struct {
	BaseURL      string        // базовый URL API
	TokenURL     string        // OAuth2 token endpoint, по умолчанию BaseURL + /oauth/token
	RevokeURL    string        // необязательный revoke endpoint
	ClientID     string        // OAuth2 client_id
	ClientSecret string        // OAuth2 client_secret, может быть пустым
	DBPath       string        // путь к локальной базе
	Driver       string        // bolt или sqlite
	LogLevel     string        // debug, info, warn, error
	LogFormat    string        // text или json
	Passphrase   string        // необязательная фраза для ключа шифрования токенов
	ExpiredCodes []string      // коды ошибок 401, означающие истёкший токен
	CacheSize    int64         // 0 отключает кэш чтения
	Timeout      time.Duration // таймаут одной HTTP попытки
	Leeway       time.Duration // упреждающее обновление токена
}

// fileConfig is the layout of the YAML file
type fileConfig struct {
	API struct {
		BaseURL      string `yaml:"base_url"`
		TokenURL     string `yaml:"token_url"`
		RevokeURL    string `yaml:"revoke_url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"api"`
	Auth struct {
		RefreshLeeway string   `yaml:"refresh_leeway"`
		Passphrase    string   `yaml:"passphrase"`
		ExpiredCodes  []string `yaml:"expired_codes"`
	} `yaml:"auth"`
	Storage struct {
		Driver    string `yaml:"driver"`
		Path      string `yaml:"path"`
		CacheSize *int64 `yaml:"cache_size"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in defaults, suitable for the local sandbox.
func Default() *Config {
	return &Config{
		BaseURL:   "http://localhost:8080",
		ClientID:  "finsync-cli",
		DBPath:    "finsync.db",
		Driver:    DriverBolt,
		LogLevel:  "info",
		LogFormat: logging.FormatText,
		CacheSize: 10000,
		Timeout:   30 * time.Second,
		Leeway:    30 * time.Second,
	}
}

// LoadOptions names the files Load reads. Missing files are skipped unless
// they were requested explicitly.
type LoadOptions struct {
	ConfigPath     string
	EnvFile        string
	ConfigRequired bool
}

// Load builds the configuration from defaults, the YAML file and the
// environment. Process environment wins over the .env file.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		switch {
		case errors.Is(err, os.ErrNotExist) && !opts.ConfigRequired:
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := cfg.ApplyYAML(data); err != nil {
				return nil, err
			}
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading env file: %w", err)
		default:
			dotenv = values
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyYAML overlays the non-empty values of a YAML document.
func (c *Config) ApplyYAML(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	setString(&c.BaseURL, f.API.BaseURL)
	setString(&c.TokenURL, f.API.TokenURL)
	setString(&c.RevokeURL, f.API.RevokeURL)
	setString(&c.ClientID, f.API.ClientID)
	setString(&c.ClientSecret, f.API.ClientSecret)
	setString(&c.Passphrase, f.Auth.Passphrase)
	setString(&c.Driver, f.Storage.Driver)
	setString(&c.DBPath, f.Storage.Path)
	setString(&c.LogLevel, f.Log.Level)
	setString(&c.LogFormat, f.Log.Format)

	if len(f.Auth.ExpiredCodes) > 0 {
		c.ExpiredCodes = f.Auth.ExpiredCodes
	}
	if f.Storage.CacheSize != nil {
		c.CacheSize = *f.Storage.CacheSize
	}
	if err := setDuration(&c.Timeout, f.API.Timeout, "api.timeout"); err != nil {
		return err
	}
	return setDuration(&c.Leeway, f.Auth.RefreshLeeway, "auth.refresh_leeway")
}

// ApplyEnv overlays FINSYNC_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) string {
		v, _ := lookup(EnvPrefix + name)
		return strings.TrimSpace(v)
	}

	setString(&c.BaseURL, get("API_URL"))
	setString(&c.TokenURL, get("TOKEN_URL"))
	setString(&c.RevokeURL, get("REVOKE_URL"))
	setString(&c.ClientID, get("CLIENT_ID"))
	setString(&c.ClientSecret, get("CLIENT_SECRET"))
	setString(&c.Passphrase, get("PASSPHRASE"))
	setString(&c.Driver, get("STORAGE_DRIVER"))
	setString(&c.DBPath, get("DB"))
	setString(&c.LogLevel, get("LOG_LEVEL"))
	setString(&c.LogFormat, get("LOG_FORMAT"))

	if codes := get("EXPIRED_CODES"); codes != "" {
		c.ExpiredCodes = SplitList(codes)
	}
	if size := get("CACHE_SIZE"); size != "" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sCACHE_SIZE: %w", EnvPrefix, err)
		}
		c.CacheSize = n
	}
	if err := setDuration(&c.Timeout, get("TIMEOUT"), EnvPrefix+"TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.Leeway, get("REFRESH_LEEWAY"), EnvPrefix+"REFRESH_LEEWAY")
}

// ResolvedTokenURL returns TokenURL or the default path under BaseURL.
func (c *Config) ResolvedTokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/oauth/token"
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	var errs []error

	if err := validation.ValidateEndpoint("api url", c.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validation.ValidateEndpoint("token url", c.ResolvedTokenURL()); err != nil {
		errs = append(errs, err)
	}
	if c.RevokeURL != "" {
		if err := validation.ValidateEndpoint("revoke url", c.RevokeURL); err != nil {
			errs = append(errs, err)
		}
	}
	if c.ClientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Driver != DriverBolt && c.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Driver))
	}
	if c.CacheSize < 0 {
		errs = append(errs, errors.New("cache size must not be negative"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Leeway < 0 {
		errs = append(errs, errors.New("refresh leeway must not be negative"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, name string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}
