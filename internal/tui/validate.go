// ABOUTME: Connection validation for the setup wizard.
// ABOUTME: Resolves the cluster, checks RPC health, and loads the signing keypair.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/2389-research/chainjournal/internal/cluster"
	"github.com/2389-research/chainjournal/internal/config"
	"github.com/2389-research/chainjournal/internal/program"
	"github.com/2389-research/chainjournal/internal/wallet"
)

// ValidateConnection checks that the cluster's RPC node is healthy and that
// the keypair file loads. The context allows cancellation when the user quits
// during validation.
func ValidateConnection(ctx context.Context, clusterName, rpcURL, keypairPath string) error {
	cl, err := cluster.Lookup(clusterName, rpcURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := program.CheckHealth(ctx, rpc.New(cl.Endpoint)); err != nil {
		return fmt.Errorf("%s: %w", cl.Endpoint, err)
	}

	path, err := config.ExpandPath(keypairPath)
	if err != nil {
		return err
	}
	if _, err := wallet.Load(path); err != nil {
		return err
	}
	return nil
}
