// Package config loads the seeder configuration directory: a Config.toml file,
// a signing_key file and the database directory.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
)

const (
	DefaultHomeDir     = ".radius"
	ConfigFileName     = "Config.toml"
	SigningKeyFileName = "signing_key"
	DatabaseDirName    = "database"

	DefaultExternalRpcUrl = "http://127.0.0.1:6000"
	DefaultInternalRpcUrl = "http://127.0.0.1:6001"

	// DefaultSigningKey is the well-known development key. Replace it before
	// running against a real network.
	DefaultSigningKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var (
	ErrEmptyExternalRpcUrl = errors.New("seeder external rpc url is not set")
	ErrEmptyInternalRpcUrl = errors.New("seeder internal rpc url is not set")
	ErrEmptySigningKey     = errors.New("signing key is not set")
	ErrConfigExists        = errors.New("config directory already exists")
)

// File is the on-disk layout of Config.toml.
type File struct {
	SeederExternalRpcUrl string `toml:"seeder_external_rpc_url" comment:"Set seeder external rpc url"`
	SeederInternalRpcUrl string `toml:"seeder_internal_rpc_url" comment:"Set seeder internal rpc url"`
	DatabaseURI          string `toml:"database_uri,omitempty" comment:"Set the record store location (leveldb://, bolt:// or memory://)"`
	MetricsAddr          string `toml:"metrics_addr,omitempty" comment:"Set the Prometheus metrics listen address"`
}

// Overrides are values given on the command line. Empty fields leave the file
// value in place.
type Overrides struct {
	Path           string
	ExternalRpcUrl string
	InternalRpcUrl string
	DatabaseURI    string
	MetricsAddr    string
}

// Config is the merged seeder configuration.
type Config struct {
	Path           string
	ExternalRpcUrl string
	InternalRpcUrl string
	DatabaseURI    string
	MetricsAddr    string
	SigningKey     string
}

// DefaultPath returns $HOME/.radius, falling back to a relative .radius.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHomeDir
	}
	return filepath.Join(home, DefaultHomeDir)
}

// DefaultFile returns the contents written by Init.
func DefaultFile() *File {
	return &File{
		SeederExternalRpcUrl: DefaultExternalRpcUrl,
		SeederInternalRpcUrl: DefaultInternalRpcUrl,
	}
}

// Init materialises a config directory at path with default Config.toml and
// signing_key files. An existing directory is replaced only when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove config directory: %w", err)
		}
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	encoded, err := toml.Marshal(DefaultFile())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, ConfigFileName), encoded, 0o600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, SigningKeyFileName), []byte(DefaultSigningKey), 0o600); err != nil {
		return fmt.Errorf("failed to create signing key file: %w", err)
	}
	return nil
}

// Load reads the config directory named by overrides.Path (DefaultPath when
// empty) and applies the non-empty overrides on top of the file.
func Load(overrides *Overrides) (*Config, error) {
	path := overrides.Path
	if path == "" {
		path = DefaultPath()
	}

	raw, err := os.ReadFile(filepath.Join(path, ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	var file File
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	cfg := &Config{
		Path:           path,
		ExternalRpcUrl: pick(overrides.ExternalRpcUrl, file.SeederExternalRpcUrl),
		InternalRpcUrl: pick(overrides.InternalRpcUrl, file.SeederInternalRpcUrl),
		DatabaseURI:    pick(overrides.DatabaseURI, file.DatabaseURI),
		MetricsAddr:    pick(overrides.MetricsAddr, file.MetricsAddr),
	}
	if cfg.ExternalRpcUrl == "" {
		return nil, ErrEmptyExternalRpcUrl
	}
	if cfg.InternalRpcUrl == "" {
		return nil, ErrEmptyInternalRpcUrl
	}
	if cfg.DatabaseURI == "" {
		cfg.DatabaseURI = "leveldb://" + filepath.Join(path, DatabaseDirName)
	}

	key, err := os.ReadFile(filepath.Join(path, SigningKeyFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptySigningKey, err)
	}
	cfg.SigningKey = strings.TrimSpace(string(key))
	if cfg.SigningKey == "" {
		return nil, ErrEmptySigningKey
	}

	return cfg, nil
}

func pick(override, value string) string {
	if override != "" {
		return override
	}
	return value
}

// ExternalListenAddr is the host:port the external listener binds.
func (c *Config) ExternalListenAddr() (string, error) {
	return ListenAddr(c.ExternalRpcUrl)
}

// InternalListenAddr is the host:port the internal listener binds.
func (c *Config) InternalListenAddr() (string, error) {
	return ListenAddr(c.InternalRpcUrl)
}

// ListenAddr extracts host:port from an RPC url. The port is required.
func ListenAddr(rpcURL string) (string, error) {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url %q: %w", rpcURL, err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || port == "" {
		return "", fmt.Errorf("rpc url %q has no port", rpcURL)
	}
	return net.JoinHostPort(host, port), nil
}
