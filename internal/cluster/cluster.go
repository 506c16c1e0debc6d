// ABOUTME: Named Solana clusters and journal program identity resolution.
// ABOUTME: Provides the cluster registry, custom endpoints, and explorer links.
package cluster

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// JournalProgramID is the address the journal program is deployed at.
var JournalProgramID = solana.MustPublicKeyFromBase58("JDMKvhV3gafANaWaLjsUTrevDbG7kXNUm6R9UgzP1ixy")

// Network names understood by Lookup.
const (
	Devnet      = "devnet"
	Testnet     = "testnet"
	MainnetBeta = "mainnet-beta"
	Localnet    = "localnet"
	Custom      = "custom"
)

// Cluster identifies the active network. Name is the cache namespace.
type Cluster struct {
	Name     string
	Endpoint string
	Network  string // one of the network constants; Custom for unknown endpoints
}

var known = map[string]rpc.Cluster{
	Devnet:      rpc.DevNet,
	Testnet:     rpc.TestNet,
	MainnetBeta: rpc.MainNetBeta,
	Localnet:    rpc.LocalNet,
}

// Names returns the built-in cluster names in display order.
func Names() []string {
	return []string{Devnet, Testnet, MainnetBeta, Localnet}
}

// Lookup resolves a cluster by name. A non-empty endpoint overrides the default RPC URL
// while keeping the name; an unknown name requires an endpoint and becomes a custom cluster.
func Lookup(name, endpoint string) (Cluster, error) {
	name = strings.TrimSpace(name)
	endpoint = strings.TrimSpace(endpoint)
	if name == "" {
		name = Devnet
	}
	if name == "mainnet" {
		name = MainnetBeta
	}

	if rc, ok := known[name]; ok {
		if endpoint == "" {
			endpoint = rc.RPC
		}
		return Cluster{Name: name, Endpoint: endpoint, Network: name}, nil
	}

	if endpoint == "" {
		return Cluster{}, fmt.Errorf("unknown cluster %q: an rpc url is required for custom clusters", name)
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return Cluster{}, fmt.Errorf("invalid rpc url %q: %w", endpoint, err)
	}
	return Cluster{Name: name, Endpoint: endpoint, Network: Custom}, nil
}

// ProgramID returns the journal program address for the cluster. Every built-in
// network runs the same deployment; override replaces it when non-empty.
func (c Cluster) ProgramID(override string) (solana.PublicKey, error) {
	if override == "" {
		return JournalProgramID, nil
	}
	id, err := solana.PublicKeyFromBase58(override)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id %q: %w", override, err)
	}
	return id, nil
}

// ExplorerTxURL links a transaction signature to the Solana explorer for this cluster.
func (c Cluster) ExplorerTxURL(sig string) string {
	return "https://explorer.solana.com/tx/" + sig + c.explorerSuffix()
}

// ExplorerAddressURL links an account address to the Solana explorer for this cluster.
func (c Cluster) ExplorerAddressURL(addr string) string {
	return "https://explorer.solana.com/address/" + addr + c.explorerSuffix()
}

func (c Cluster) explorerSuffix() string {
	switch c.Network {
	case MainnetBeta:
		return ""
	case Devnet, Testnet:
		return "?cluster=" + c.Network
	default:
		return "?cluster=custom&customUrl=" + url.QueryEscape(c.Endpoint)
	}
}

// String implements fmt.Stringer.
func (c Cluster) String() string {
	return c.Name
}
