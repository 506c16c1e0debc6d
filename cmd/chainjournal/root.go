// ABOUTME: Root Cobra command and global flags for the chainjournal CLI.
// ABOUTME: Lifecycle hooks build config, logging, wallet, RPC client, cache, and notifier.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"github.com/2389-research/chainjournal/internal/cluster"
	"github.com/2389-research/chainjournal/internal/config"
	"github.com/2389-research/chainjournal/internal/journal"
	"github.com/2389-research/chainjournal/internal/logging"
	"github.com/2389-research/chainjournal/internal/notify"
	"github.com/2389-research/chainjournal/internal/program"
	"github.com/2389-research/chainjournal/internal/querycache"
	"github.com/2389-research/chainjournal/internal/wallet"
)

var globalConfig *config.Config
var globalLogger *slog.Logger
var globalCache *querycache.Cache
var globalBus *notify.Bus
var globalProgram *journal.Program
var globalLogCloser io.Closer

// Flag overrides applied on top of config.
var (
	flagCluster  string
	flagRPCURL   string
	flagKeypair  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "chainjournal",
	Short: "On-chain journal entries on Solana",
	Long: `
   CHAINJOURNAL

Create, read, update, and delete journal entries stored by the
journal program on a Solana cluster. Entries are signed by your
Solana CLI keypair; without one, chainjournal runs read-only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}
		return setup(cmd.ErrOrStderr())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		teardown()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCluster, "cluster", "", "Cluster name: devnet, testnet, mainnet-beta, localnet, or custom")
	rootCmd.PersistentFlags().StringVar(&flagRPCURL, "rpc-url", "", "RPC endpoint (default: the cluster's public endpoint)")
	rootCmd.PersistentFlags().StringVar(&flagKeypair, "keypair", "", "Path to a Solana keypair file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func setup(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	globalConfig = cfg

	logFile, err := cfg.GetLogFile()
	if err != nil {
		return fmt.Errorf("failed to resolve log file: %w", err)
	}
	logger, closer, err := logging.New(cfg.Log.Level, stderr, logFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	globalLogger = logger
	globalLogCloser = closer
	slog.SetDefault(logger)

	cl, err := cluster.Lookup(cfg.Cluster.Name, cfg.Cluster.RPCURL)
	if err != nil {
		return err
	}
	programID, err := cl.ProgramID(cfg.Program.ID)
	if err != nil {
		return err
	}

	w, err := loadWallet(cfg)
	if err != nil {
		return err
	}

	var opts []program.Option
	if cfg.Cluster.Commitment != "" {
		opts = append(opts, program.WithCommitment(rpc.CommitmentType(cfg.Cluster.Commitment)))
	}
	client := program.NewRPCClient(cl.Endpoint, programID, w, opts...)

	globalCache = querycache.New(cfg.Cache.TTL)
	globalCache.Start()

	globalBus = notify.NewBus()
	globalBus.Subscribe(notify.ToastSubscriber(stderr))
	if logFile != "" {
		// Toasts already cover the console; the log file keeps a durable record.
		globalBus.Subscribe(notify.LogSubscriber(logger))
	}

	globalProgram = journal.NewProgram(cl, client, globalCache, globalBus, journal.WithLogger(logger))
	logger.Debug("chainjournal ready",
		slog.String("cluster", cl.Name),
		slog.String("endpoint", cl.Endpoint),
		slog.String("program_id", programID.String()),
		slog.Bool("read_only", w == nil),
	)
	return nil
}

// loadWallet returns nil when the keypair file does not exist, leaving the
// client read-only. A keypair that exists but fails to parse is an error.
func loadWallet(cfg *config.Config) (*wallet.Wallet, error) {
	path, err := cfg.GetKeypairPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve keypair path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		globalLogger.Info("no keypair found, running read-only", slog.String("path", path))
		return nil, nil
	}
	return wallet.Load(path)
}

func applyFlags(cfg *config.Config) {
	if flagCluster != "" {
		cfg.Cluster.Name = flagCluster
		// A cluster switch on the command line drops a file-configured endpoint.
		if flagRPCURL == "" && os.Getenv(config.EnvRPCURL) == "" {
			cfg.Cluster.RPCURL = ""
		}
	}
	if flagRPCURL != "" {
		cfg.Cluster.RPCURL = flagRPCURL
	}
	if flagKeypair != "" {
		cfg.Wallet.KeypairPath = flagKeypair
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

func teardown() {
	if globalCache != nil {
		globalCache.Stop()
		globalCache = nil
	}
	if globalLogCloser != nil {
		_ = globalLogCloser.Close()
		globalLogCloser = nil
	}
}

// requireWallet rejects mutations when no keypair was loaded.
func requireWallet() error {
	if globalProgram.Owner().IsZero() {
		return fmt.Errorf("no keypair loaded: run 'chainjournal setup' or pass --keypair")
	}
	return nil
}
