// ABOUTME: CLI commands for the local markdown archive of journal entries.
// ABOUTME: Mirrors on-chain entries to disk and lists the archived copies.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/storage"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the local entry archive",
	Long:  "Mirror journal entries from the active cluster into markdown files on disk.",
}

var archiveSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror entries to the archive",
	Long:  "Reload every entry from the cluster and write one markdown file per entry.",
	RunE:  runArchiveSync,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived entries",
	Long:  "List entries archived for the active cluster without contacting the network.",
	RunE:  runArchiveList,
}

// Flags
var (
	archiveDir   string
	archivePrune bool
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveSyncCmd)
	archiveCmd.AddCommand(archiveListCmd)

	archiveCmd.PersistentFlags().StringVar(&archiveDir, "dir", "", "Archive directory (default: archive.dir from config)")
	archiveSyncCmd.Flags().BoolVar(&archivePrune, "prune", false, "Remove archived entries that no longer exist on chain")
}

func openArchive() (*storage.ArchiveMDStore, error) {
	dir := archiveDir
	if dir == "" {
		d, err := globalConfig.GetArchiveDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve archive dir: %w", err)
		}
		dir = d
	}
	return storage.NewArchiveMDStore(dir)
}

func runArchiveSync(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := globalProgram.Refresh(cmd.Context())
	if q.IsError() {
		return fmt.Errorf("failed to list entries: %w", q.Err)
	}

	res, err := storage.Mirror(store, globalProgram.Cluster().Name, q.Data, archivePrune)
	if err != nil {
		return fmt.Errorf("failed to archive entries: %w", err)
	}
	fmt.Printf("Archived %d entries", res.Written)
	if archivePrune {
		fmt.Printf(", pruned %d", res.Pruned)
	}
	fmt.Println()
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.ListEntries(globalProgram.Cluster().Name)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No archived entries found.")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s  %s\n",
			entry.ArchivedAt.Format("2006-01-02 15:04:05"),
			entry.Title,
			models.Preview(entry.Message, listPreviewLen),
		)
	}
	return nil
}
