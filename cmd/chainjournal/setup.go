// ABOUTME: Cobra command for interactive cluster and wallet setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate connection settings.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/chainjournal/internal/config"
	"github.com/2389-research/chainjournal/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure cluster and keypair",
	Long:  "Interactive wizard to choose a cluster, RPC endpoint, and signing keypair.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.Cluster.Name,
		cfg.Cluster.RPCURL,
		cfg.Wallet.KeypairPath,
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	clusterName, rpcURL, keypairPath := final.Result()
	cfg.Cluster.Name = clusterName
	cfg.Cluster.RPCURL = rpcURL
	cfg.Wallet.KeypairPath = keypairPath

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
