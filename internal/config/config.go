// ABOUTME: Configuration management for chainjournal with YAML config loading.
// ABOUTME: Handles cluster, wallet, program, cache, and log settings plus .env overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvCluster   = "CHAINJOURNAL_CLUSTER"
	EnvRPCURL    = "CHAINJOURNAL_RPC_URL"
	EnvKeypair   = "CHAINJOURNAL_KEYPAIR"
	EnvProgramID = "CHAINJOURNAL_PROGRAM_ID"
	EnvLogLevel  = "CHAINJOURNAL_LOG_LEVEL"
)

// DefaultKeypairPath is where the Solana CLI writes its default keypair.
const DefaultKeypairPath = "~/.config/solana/id.json"

// DefaultArchiveDir is where archived entries are mirrored.
const DefaultArchiveDir = "~/.local/share/chainjournal/archive"

// Config stores chainjournal configuration loaded from ~/.config/chainjournal/config.yaml.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Program ProgramConfig `yaml:"program"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ClusterConfig selects the network.
type ClusterConfig struct {
	Name       string `yaml:"name"`
	RPCURL     string `yaml:"rpc_url,omitempty"`
	Commitment string `yaml:"commitment,omitempty"`
}

// WalletConfig locates the signing keypair.
type WalletConfig struct {
	KeypairPath string `yaml:"keypair_path,omitempty"`
}

// ProgramConfig optionally overrides the journal program address.
type ProgramConfig struct {
	ID string `yaml:"id,omitempty"`
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// ArchiveConfig locates the local markdown mirror of entries.
type ArchiveConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{Name: "devnet", Commitment: "confirmed"},
		Wallet:  WalletConfig{KeypairPath: DefaultKeypairPath},
		Cache:   CacheConfig{TTL: 30 * time.Second},
		Log:     LogConfig{Level: "warn"},
		Archive: ArchiveConfig{Dir: DefaultArchiveDir},
	}
}

// GetKeypairPath returns the expanded keypair path.
func (c *Config) GetKeypairPath() (string, error) {
	path := c.Wallet.KeypairPath
	if path == "" {
		path = DefaultKeypairPath
	}
	return ExpandPath(path)
}

// GetArchiveDir returns the expanded archive directory.
func (c *Config) GetArchiveDir() (string, error) {
	dir := c.Archive.Dir
	if dir == "" {
		dir = DefaultArchiveDir
	}
	return ExpandPath(dir)
}

// GetLogFile returns the expanded log file path, or "" when file logging is off.
func (c *Config) GetLogFile() (string, error) {
	return ExpandPath(c.Log.File)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.Cluster.Commitment {
	case "", "processed", "confirmed", "finalized":
	default:
		result = multierror.Append(result, fmt.Errorf("cluster.commitment must be processed, confirmed, or finalized, got %q", c.Cluster.Commitment))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level))
	}
	if c.Cache.TTL < 0 {
		result = multierror.Append(result, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Cluster.RPCURL != "" && !strings.HasPrefix(c.Cluster.RPCURL, "http://") && !strings.HasPrefix(c.Cluster.RPCURL, "https://") {
		result = multierror.Append(result, fmt.Errorf("cluster.rpc_url must be an http(s) url, got %q", c.Cluster.RPCURL))
	}
	return result.ErrorOrNil()
}

// ApplyEnv overlays environment variables on top of file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCluster); v != "" {
		// A file endpoint belongs to the file's cluster; a switch without a new
		// endpoint falls back to the cluster default.
		if v != c.Cluster.Name {
			c.Cluster.RPCURL = ""
		}
		c.Cluster.Name = v
	}
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.Cluster.RPCURL = v
	}
	if v := os.Getenv(EnvKeypair); v != "" {
		c.Wallet.KeypairPath = v
	}
	if v := os.Getenv(EnvProgramID); v != "" {
		c.Program.ID = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "chainjournal", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk, applies .env and environment overrides, and validates.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config from disk only, without env overrides. Used by setup so
// that saved values never capture transient environment settings.
func LoadFile() (*Config, error) {
	return loadFile()
}

func loadFile() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
