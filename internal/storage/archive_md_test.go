// ABOUTME: Tests for the markdown entry archive.
// ABOUTME: Covers write/read, listing order, path containment, and pruning.
package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/models"
)

func newEntry(title, message string) models.JournalEntry {
	return models.JournalEntry{
		Address: solana.NewWallet().PublicKey(),
		Owner:   solana.NewWallet().PublicKey(),
		Title:   title,
		Message: message,
	}
}

func TestArchiveWriteAndRead(t *testing.T) {
	store, err := NewArchiveMDStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveMDStore error: %v", err)
	}

	entry := newEntry("gm: a title with --- and quotes \"", "line one\n---\nline three\n")
	path, err := store.WriteEntry("devnet", entry)
	if err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}
	if filepath.Base(path) != entry.Address.String()+".md" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}

	got, err := store.ReadEntry(path)
	if err != nil {
		t.Fatalf("ReadEntry error: %v", err)
	}
	if got.Title != entry.Title {
		t.Errorf("expected title %q, got %q", entry.Title, got.Title)
	}
	if got.Message != entry.Message {
		t.Errorf("expected message %q, got %q", entry.Message, got.Message)
	}
	if !got.Address.Equals(entry.Address) || !got.Owner.Equals(entry.Owner) {
		t.Error("expected address and owner to round-trip")
	}
	if got.Cluster != "devnet" {
		t.Errorf("expected cluster devnet, got %q", got.Cluster)
	}
	if got.ArchivedAt.IsZero() {
		t.Error("expected archived time to be set")
	}
}

func TestArchiveFileFormat(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	entry := newEntry("notes", "hello")

	path, err := store.WriteEntry("devnet", entry)
	if err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Error("expected frontmatter opening delimiter")
	}
	if !strings.Contains(content, "title: notes\n") {
		t.Errorf("expected title in frontmatter, got %q", content)
	}
	if !strings.HasSuffix(content, "---\nhello") {
		t.Errorf("expected message after frontmatter, got %q", content)
	}
}

func TestArchiveRewriteReplaces(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	entry := newEntry("notes", "v1")

	if _, err := store.WriteEntry("devnet", entry); err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}
	entry.Message = "v2"
	if _, err := store.WriteEntry("devnet", entry); err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}

	entries, err := store.ListEntries("devnet")
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "v2" {
		t.Errorf("expected rewritten message, got %q", entries[0].Message)
	}
}

func TestArchiveListSortedPerCluster(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	for _, title := range []string{"charlie", "alpha", "bravo"} {
		if _, err := store.WriteEntry("devnet", newEntry(title, "m")); err != nil {
			t.Fatalf("WriteEntry error: %v", err)
		}
	}
	if _, err := store.WriteEntry("testnet", newEntry("other", "m")); err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}

	entries, err := store.ListEntries("devnet")
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	if strings.Join(titles, ",") != "alpha,bravo,charlie" {
		t.Errorf("unexpected order: %v", titles)
	}

	empty, err := store.ListEntries("mainnet-beta")
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no entries for unused cluster, got %d", len(empty))
	}
}

func TestArchiveReadOutsideRoot(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	outside := filepath.Join(t.TempDir(), "evil.md")
	if err := os.WriteFile(outside, []byte("---\ntitle: x\n---\n"), 0600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if _, err := store.ReadEntry(outside); err == nil {
		t.Error("expected error reading outside the archive")
	}
}

func TestArchiveRejectsBadInput(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())

	if _, err := store.WriteEntry("devnet", models.JournalEntry{Title: "no address"}); err == nil {
		t.Error("expected error for entry without address")
	}
	if _, err := store.WriteEntry("../escape", newEntry("x", "y")); err == nil {
		t.Error("expected error for cluster with path separators")
	}
	if _, err := NewArchiveMDStore(""); err == nil {
		t.Error("expected error for empty root")
	}
}

func TestArchivePrune(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	keep := newEntry("keep", "k")
	drop := newEntry("drop", "d")
	for _, e := range []models.JournalEntry{keep, drop} {
		if _, err := store.WriteEntry("devnet", e); err != nil {
			t.Fatalf("WriteEntry error: %v", err)
		}
	}

	removed, err := store.Prune("devnet", []solana.PublicKey{keep.Address})
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	entries, _ := store.ListEntries("devnet")
	if len(entries) != 1 || entries[0].Title != "keep" {
		t.Errorf("expected only keep to remain, got %v", entries)
	}

	removed, err = store.Prune("localnet", nil)
	if err != nil || removed != 0 {
		t.Errorf("expected no-op prune on missing cluster dir, got %d, %v", removed, err)
	}
}

func TestMirror(t *testing.T) {
	store, _ := NewArchiveMDStore(t.TempDir())
	stale := newEntry("stale", "old")
	if _, err := store.WriteEntry("devnet", stale); err != nil {
		t.Fatalf("WriteEntry error: %v", err)
	}

	live := []models.JournalEntry{newEntry("a", "1"), newEntry("b", "2")}

	res, err := Mirror(store, "devnet", live, false)
	if err != nil {
		t.Fatalf("Mirror error: %v", err)
	}
	if res.Written != 2 || res.Pruned != 0 {
		t.Errorf("unexpected result without prune: %+v", res)
	}
	if entries, _ := store.ListEntries("devnet"); len(entries) != 3 {
		t.Errorf("expected stale entry kept without prune, got %d entries", len(entries))
	}

	res, err = Mirror(store, "devnet", live, true)
	if err != nil {
		t.Fatalf("Mirror error: %v", err)
	}
	if res.Written != 2 || res.Pruned != 1 {
		t.Errorf("unexpected result with prune: %+v", res)
	}
	if entries, _ := store.ListEntries("devnet"); len(entries) != 2 {
		t.Errorf("expected 2 entries after prune, got %d", len(entries))
	}
}
