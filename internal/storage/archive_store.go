// ABOUTME: Interface definition for the local entry archive.
// ABOUTME: Defines the contract for mirroring on-chain journal entries to disk.
package storage

import (
	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/models"
)

// ArchiveStore keeps a local copy of journal entries per cluster.
type ArchiveStore interface {
	// WriteEntry persists an entry under cluster and returns its file path.
	WriteEntry(cluster string, entry models.JournalEntry) (string, error)

	// ReadEntry reads an archived entry from the given file path.
	ReadEntry(path string) (*ArchivedEntry, error)

	// ListEntries lists archived entries for cluster, sorted by title.
	ListEntries(cluster string) ([]*ArchivedEntry, error)

	// Prune removes archived entries for cluster whose address is not in keep.
	Prune(cluster string, keep []solana.PublicKey) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// MirrorResult counts what Mirror changed.
type MirrorResult struct {
	Written int
	Pruned  int
}

// Mirror writes every entry to the archive under cluster. With prune set it
// also removes archived entries that are no longer on chain.
func Mirror(store ArchiveStore, cluster string, entries []models.JournalEntry, prune bool) (MirrorResult, error) {
	var res MirrorResult
	keep := make([]solana.PublicKey, 0, len(entries))
	for _, entry := range entries {
		if _, err := store.WriteEntry(cluster, entry); err != nil {
			return res, err
		}
		res.Written++
		keep = append(keep, entry.Address)
	}
	if prune {
		n, err := store.Prune(cluster, keep)
		res.Pruned = n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
