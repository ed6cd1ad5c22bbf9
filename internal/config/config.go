package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "AASTREE_CONFIG"

// Config is the CLI and server configuration.
type Config struct {
	MaxUndos   int              `yaml:"max_undos" validate:"gte=1"`
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Store      StoreConfig      `yaml:"store"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Redact     []string         `yaml:"redact"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// StoreConfig selects the package store used by push, pull and serve.
type StoreConfig struct {
	Kind      string        `yaml:"kind" validate:"oneof=memory file redis sqlite"`
	Path      string        `yaml:"path" validate:"required_if=Kind sqlite"`
	Format    string        `yaml:"format" validate:"omitempty,oneof=json yaml xml aasx"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Kind redis"`
	RedisDB   int           `yaml:"redis_db" validate:"gte=0"`
	Password  string        `yaml:"password"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
}

// EncryptionConfig holds hex encoded AES-256 keys. An empty key disables encryption.
type EncryptionConfig struct {
	KeyHex       string   `yaml:"key" validate:"omitempty,hexadecimal,len=64"`
	FallbackKeys []string `yaml:"fallback_keys" validate:"dive,hexadecimal,len=64"`
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxUndos: 50,
		LogLevel: "info",
		Store: StoreConfig{
			Kind:   "file",
			Path:   ".aastree/packages",
			Format: "json",
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
// An empty path falls back to $AASTREE_CONFIG, then to the defaults alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags and reports every failing field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, formatFieldError(e))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, e.Param())
	case "hexadecimal":
		return fmt.Sprintf("%s must be hexadecimal", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Keys decodes the encryption keys. ok is false when encryption is disabled.
func (e EncryptionConfig) Keys() (active []byte, fallbacks [][]byte, ok bool, err error) {
	if e.KeyHex == "" {
		return nil, nil, false, nil
	}
	active, err = hex.DecodeString(e.KeyHex)
	if err != nil {
		return nil, nil, false, fmt.Errorf("invalid encryption key: %w", err)
	}
	for _, k := range e.FallbackKeys {
		b, err := hex.DecodeString(k)
		if err != nil {
			return nil, nil, false, fmt.Errorf("invalid fallback key: %w", err)
		}
		fallbacks = append(fallbacks, b)
	}
	return active, fallbacks, true, nil
}
