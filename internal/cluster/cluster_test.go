// ABOUTME: Tests for cluster lookup and explorer links.
// ABOUTME: Covers built-in names, endpoint overrides, and custom clusters.
package cluster

import (
	"strings"
	"testing"
)

func TestLookupBuiltIn(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		network string
	}{
		{"empty defaults to devnet", "", Devnet},
		{"devnet", "devnet", Devnet},
		{"testnet", "testnet", Testnet},
		{"mainnet alias", "mainnet", MainnetBeta},
		{"mainnet-beta", "mainnet-beta", MainnetBeta},
		{"localnet", "localnet", Localnet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.input, "")
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.input, err)
			}
			if c.Network != tt.network {
				t.Errorf("expected network %q, got %q", tt.network, c.Network)
			}
			if c.Name != tt.network {
				t.Errorf("expected name %q, got %q", tt.network, c.Name)
			}
			if c.Endpoint == "" {
				t.Error("expected default endpoint")
			}
		})
	}
}

func TestLookupEndpointOverride(t *testing.T) {
	c, err := Lookup("devnet", "http://127.0.0.1:9000")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if c.Endpoint != "http://127.0.0.1:9000" {
		t.Errorf("expected override endpoint, got %q", c.Endpoint)
	}
	if c.Network != Devnet {
		t.Errorf("expected devnet network, got %q", c.Network)
	}
}

func TestLookupCustom(t *testing.T) {
	if _, err := Lookup("my-validator", ""); err == nil {
		t.Error("expected error for custom cluster without endpoint")
	}
	if _, err := Lookup("my-validator", "not a url"); err == nil {
		t.Error("expected error for invalid endpoint")
	}

	c, err := Lookup("my-validator", "http://10.0.0.5:8899")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if c.Network != Custom {
		t.Errorf("expected custom network, got %q", c.Network)
	}
	if c.String() != "my-validator" {
		t.Errorf("expected name my-validator, got %q", c.String())
	}
}

func TestProgramID(t *testing.T) {
	c, _ := Lookup("devnet", "")

	id, err := c.ProgramID("")
	if err != nil {
		t.Fatalf("ProgramID error: %v", err)
	}
	if !id.Equals(JournalProgramID) {
		t.Errorf("expected deployed program id, got %s", id)
	}

	override := "11111111111111111111111111111111"
	id, err = c.ProgramID(override)
	if err != nil {
		t.Fatalf("ProgramID(override) error: %v", err)
	}
	if id.String() != override {
		t.Errorf("expected %s, got %s", override, id)
	}

	if _, err := c.ProgramID("not-base58-0OIl"); err == nil {
		t.Error("expected error for invalid program id")
	}
}

func TestExplorerTxURL(t *testing.T) {
	devnet, _ := Lookup("devnet", "")
	if got := devnet.ExplorerTxURL("sig123"); got != "https://explorer.solana.com/tx/sig123?cluster=devnet" {
		t.Errorf("unexpected devnet url: %s", got)
	}

	mainnet, _ := Lookup("mainnet-beta", "")
	if got := mainnet.ExplorerTxURL("sig123"); got != "https://explorer.solana.com/tx/sig123" {
		t.Errorf("unexpected mainnet url: %s", got)
	}

	local, _ := Lookup("localnet", "")
	got := local.ExplorerAddressURL("addr")
	if !strings.Contains(got, "cluster=custom") || !strings.Contains(got, "customUrl=") {
		t.Errorf("expected custom explorer params, got %s", got)
	}
}
