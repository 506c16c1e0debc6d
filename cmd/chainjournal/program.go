// ABOUTME: CLI commands describing the active cluster and journal program.
// ABOUTME: Shows parsed program account info and the resolved cluster settings.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/chainjournal/internal/cluster"
)

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Show the journal program account",
	Long:  "Fetch and print parsed account info for the journal program on the active cluster.",
	RunE:  runProgram,
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Show the active cluster",
	Long:  "Print the resolved cluster, RPC endpoint, program id, and signing identity.",
	RunE:  runCluster,
}

func init() {
	rootCmd.AddCommand(programCmd)
	rootCmd.AddCommand(clusterCmd)
}

func runProgram(cmd *cobra.Command, args []string) error {
	q := globalProgram.ProgramAccount(cmd.Context())
	if q.IsError() {
		return fmt.Errorf("failed to get program account: %w", q.Err)
	}
	acct := q.Data
	if acct == nil {
		fmt.Printf("Program %s is not deployed on %s.\n", globalProgram.ProgramID(), globalProgram.Cluster().Name)
		return nil
	}

	fmt.Printf("Program:    %s\n", acct.Address)
	fmt.Printf("Owner:      %s\n", acct.Owner)
	fmt.Printf("Lamports:   %d\n", acct.Lamports)
	fmt.Printf("Executable: %t\n", acct.Executable)
	fmt.Printf("Explorer:   %s\n", globalProgram.Cluster().ExplorerAddressURL(acct.Address.String()))
	if len(acct.Parsed) > 0 {
		fmt.Println()
		fmt.Println(string(acct.Parsed))
	}
	return nil
}

func runCluster(cmd *cobra.Command, args []string) error {
	cl := globalProgram.Cluster()
	fmt.Printf("Cluster:  %s\n", cl.Name)
	fmt.Printf("Network:  %s\n", cl.Network)
	fmt.Printf("Endpoint: %s\n", cl.Endpoint)
	fmt.Printf("Program:  %s\n", globalProgram.ProgramID())
	if owner := globalProgram.Owner(); owner.IsZero() {
		fmt.Println("Wallet:   (none, read-only)")
	} else {
		fmt.Printf("Wallet:   %s\n", owner)
	}
	if cl.Network == cluster.Custom {
		fmt.Println("Explorer links use a custom cluster URL.")
	}
	return nil
}
