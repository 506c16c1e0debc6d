// ABOUTME: Tests for chainjournal configuration loading and path expansion.
// ABOUTME: Covers YAML parsing, defaults, env and .env overrides, and validation.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points config at a temp dir and clears override variables.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, key := range []string{EnvCluster, EnvRPCURL, EnvKeypair, EnvProgramID, EnvLogLevel} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde slash", "~/foo/bar", filepath.Join(home, "foo", "bar")},
		{"absolute", "/tmp/foo", "/tmp/foo"},
		{"relative", "foo/bar", "foo/bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cluster.Name != "devnet" {
		t.Errorf("expected default cluster devnet, got %q", cfg.Cluster.Name)
	}
	if cfg.Cluster.Commitment != "confirmed" {
		t.Errorf("expected default commitment confirmed, got %q", cfg.Cluster.Commitment)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected default ttl 30s, got %s", cfg.Cache.TTL)
	}

	home, _ := os.UserHomeDir()
	got, err := cfg.GetKeypairPath()
	if err != nil {
		t.Fatalf("GetKeypairPath() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "solana", "id.json"); got != want {
		t.Errorf("GetKeypairPath() = %q, want %q", got, want)
	}

	archive, err := cfg.GetArchiveDir()
	if err != nil {
		t.Fatalf("GetArchiveDir() error: %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "chainjournal", "archive"); archive != want {
		t.Errorf("GetArchiveDir() = %q, want %q", archive, want)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "chainjournal")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configData := `cluster:
  name: "mainnet-beta"
  rpc_url: "https://rpc.example.com"
  commitment: "finalized"
wallet:
  keypair_path: "~/keys/journal.json"
program:
  id: "11111111111111111111111111111111"
cache:
  ttl: 2m
log:
  level: debug
  file: "~/logs/chainjournal.log"
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configData), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cluster.Name != "mainnet-beta" {
		t.Errorf("expected cluster 'mainnet-beta', got %q", cfg.Cluster.Name)
	}
	if cfg.Cluster.RPCURL != "https://rpc.example.com" {
		t.Errorf("expected rpc_url 'https://rpc.example.com', got %q", cfg.Cluster.RPCURL)
	}
	if cfg.Cluster.Commitment != "finalized" {
		t.Errorf("expected commitment 'finalized', got %q", cfg.Cluster.Commitment)
	}
	if cfg.Program.ID != "11111111111111111111111111111111" {
		t.Errorf("expected program id override, got %q", cfg.Program.ID)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("expected ttl 2m, got %s", cfg.Cache.TTL)
	}

	home, _ := os.UserHomeDir()
	if got, _ := cfg.GetKeypairPath(); got != filepath.Join(home, "keys", "journal.json") {
		t.Errorf("GetKeypairPath() = %q", got)
	}
	if got, _ := cfg.GetLogFile(); got != filepath.Join(home, "logs", "chainjournal.log") {
		t.Errorf("GetLogFile() = %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvCluster, "localnet")
	t.Setenv(EnvRPCURL, "http://127.0.0.1:8899")
	t.Setenv(EnvKeypair, "/tmp/id.json")
	t.Setenv(EnvLogLevel, "info")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.Name != "localnet" {
		t.Errorf("expected cluster override, got %q", cfg.Cluster.Name)
	}
	if cfg.Cluster.RPCURL != "http://127.0.0.1:8899" {
		t.Errorf("expected rpc override, got %q", cfg.Cluster.RPCURL)
	}
	if cfg.Wallet.KeypairPath != "/tmp/id.json" {
		t.Errorf("expected keypair override, got %q", cfg.Wallet.KeypairPath)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level override, got %q", cfg.Log.Level)
	}
}

func writeClusterConfig(t *testing.T, tmpDir, name, rpcURL string) {
	t.Helper()
	configDir := filepath.Join(tmpDir, "chainjournal")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	data := "cluster:\n  name: \"" + name + "\"\n  rpc_url: \"" + rpcURL + "\"\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(data), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestEnvClusterSwitchDropsFileEndpoint(t *testing.T) {
	tmpDir := isolate(t)
	writeClusterConfig(t, tmpDir, "devnet", "https://api.devnet.solana.com")
	t.Setenv(EnvCluster, "mainnet-beta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.Name != "mainnet-beta" {
		t.Errorf("expected cluster override, got %q", cfg.Cluster.Name)
	}
	if cfg.Cluster.RPCURL != "" {
		t.Errorf("expected devnet endpoint dropped, got %q", cfg.Cluster.RPCURL)
	}
}

func TestEnvClusterSwitchKeepsEnvEndpoint(t *testing.T) {
	tmpDir := isolate(t)
	writeClusterConfig(t, tmpDir, "devnet", "https://api.devnet.solana.com")
	t.Setenv(EnvCluster, "staging")
	t.Setenv(EnvRPCURL, "http://10.0.0.5:8899")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.RPCURL != "http://10.0.0.5:8899" {
		t.Errorf("expected env endpoint, got %q", cfg.Cluster.RPCURL)
	}
}

func TestEnvSameClusterKeepsFileEndpoint(t *testing.T) {
	tmpDir := isolate(t)
	writeClusterConfig(t, tmpDir, "devnet", "https://rpc.example.com")
	t.Setenv(EnvCluster, "devnet")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.RPCURL != "https://rpc.example.com" {
		t.Errorf("expected file endpoint kept, got %q", cfg.Cluster.RPCURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv(EnvProgramID)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvProgramID+"=11111111111111111111111111111111\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvProgramID) })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Program.ID != "11111111111111111111111111111111" {
		t.Errorf("expected program id from .env, got %q", cfg.Program.ID)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}

	cfg.Cluster.Commitment = "eventually"
	cfg.Log.Level = "loud"
	cfg.Cache.TTL = -time.Second
	cfg.Cluster.RPCURL = "ftp://rpc"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"cluster.commitment", "log.level", "cache.ttl", "cluster.rpc_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tmpDir := isolate(t)
	configDir := filepath.Join(tmpDir, "chainjournal")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("cluster:\n  commitment: sometime\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected Load() to reject invalid commitment")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Cluster.Name = "testnet"
	cfg.Wallet.KeypairPath = "~/saved.json"
	cfg.Cache.TTL = 45 * time.Second

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if loaded.Cluster.Name != "testnet" {
		t.Errorf("expected cluster 'testnet', got %q", loaded.Cluster.Name)
	}
	if loaded.Wallet.KeypairPath != "~/saved.json" {
		t.Errorf("expected keypair path '~/saved.json', got %q", loaded.Wallet.KeypairPath)
	}
	if loaded.Cache.TTL != 45*time.Second {
		t.Errorf("expected ttl 45s, got %s", loaded.Cache.TTL)
	}
}
