// ABOUTME: Markdown-based archive of on-chain journal entries.
// ABOUTME: Stores one markdown file with YAML frontmatter per entry in per-cluster directories.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/chainjournal/internal/models"
)

const frontmatterDelim = "---\n"

// ArchivedEntry is an entry read back from the archive.
type ArchivedEntry struct {
	models.JournalEntry
	Cluster    string
	ArchivedAt time.Time
	FilePath   string
}

// ArchiveMDStore stores entries as <root>/<cluster>/<address>.md.
type ArchiveMDStore struct {
	root string
}

// entryFrontmatter is the YAML frontmatter for archived entry files.
type entryFrontmatter struct {
	Address  string `yaml:"address"`
	Owner    string `yaml:"owner"`
	Title    string `yaml:"title"`
	Cluster  string `yaml:"cluster"`
	Archived string `yaml:"archived"`
}

var _ ArchiveStore = (*ArchiveMDStore)(nil)

// NewArchiveMDStore creates an archive rooted at root.
func NewArchiveMDStore(root string) (*ArchiveMDStore, error) {
	if root == "" {
		return nil, fmt.Errorf("archive root is required")
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &ArchiveMDStore{root: root}, nil
}

func (s *ArchiveMDStore) clusterDir(cluster string) (string, error) {
	if cluster == "" || strings.ContainsAny(cluster, `/\`) || cluster == "." || cluster == ".." {
		return "", fmt.Errorf("invalid cluster name %q", cluster)
	}
	return filepath.Join(s.root, cluster), nil
}

// WriteEntry persists an entry. Rewriting the same address replaces the file.
func (s *ArchiveMDStore) WriteEntry(cluster string, entry models.JournalEntry) (string, error) {
	if entry.Address.IsZero() {
		return "", fmt.Errorf("entry %q has no address", entry.Title)
	}
	dir, err := s.clusterDir(cluster)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, entry.Address.String()+".md")

	fm := entryFrontmatter{
		Address:  entry.Address.String(),
		Owner:    entry.Owner.String(),
		Title:    entry.Title,
		Cluster:  cluster,
		Archived: time.Now().UTC().Format(time.RFC3339),
	}
	content, err := renderFrontmatter(fm, entry.Message)
	if err != nil {
		return "", fmt.Errorf("failed to render frontmatter: %w", err)
	}

	if err := atomicWrite(path, []byte(content)); err != nil {
		return "", fmt.Errorf("failed to write entry: %w", err)
	}
	return path, nil
}

// ReadEntry reads an archived entry. The path must be within the archive root.
func (s *ArchiveMDStore) ReadEntry(path string) (*ArchivedEntry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	absRoot, _ := filepath.Abs(s.root)
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q is outside the archive", path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	return parseArchivedEntry(absPath, string(data))
}

// ListEntries lists archived entries for cluster sorted by title then address.
func (s *ArchiveMDStore) ListEntries(cluster string) ([]*ArchivedEntry, error) {
	dir, err := s.clusterDir(cluster)
	if err != nil {
		return nil, err
	}
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []*ArchivedEntry
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		entry, err := parseArchivedEntry(path, string(data))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Title != entries[j].Title {
			return entries[i].Title < entries[j].Title
		}
		return entries[i].Address.String() < entries[j].Address.String()
	})
	return entries, nil
}

// Prune removes files for addresses not in keep and returns how many were removed.
func (s *ArchiveMDStore) Prune(cluster string, keep []solana.PublicKey) (int, error) {
	dir, err := s.clusterDir(cluster)
	if err != nil {
		return 0, err
	}
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	live := make(map[string]bool, len(keep))
	for _, k := range keep {
		live[k.String()+".md"] = true
	}

	removed := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") || live[file.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", file.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Close releases any resources held by the store.
func (s *ArchiveMDStore) Close() error {
	return nil
}

func renderFrontmatter(fm entryFrontmatter, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return frontmatterDelim + string(data) + frontmatterDelim + body, nil
}

func parseArchivedEntry(path, content string) (*ArchivedEntry, error) {
	if !strings.HasPrefix(content, frontmatterDelim) {
		return nil, fmt.Errorf("%s: missing frontmatter", path)
	}
	rest := content[len(frontmatterDelim):]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return nil, fmt.Errorf("%s: unterminated frontmatter", path)
	}

	var fm entryFrontmatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return nil, fmt.Errorf("%s: invalid frontmatter: %w", path, err)
	}
	address, err := solana.PublicKeyFromBase58(fm.Address)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid address: %w", path, err)
	}
	owner, err := solana.PublicKeyFromBase58(fm.Owner)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid owner: %w", path, err)
	}
	archivedAt, _ := time.Parse(time.RFC3339, fm.Archived)

	return &ArchivedEntry{
		JournalEntry: models.JournalEntry{
			Address: address,
			Owner:   owner,
			Title:   fm.Title,
			Message: rest[end+1+len(frontmatterDelim):],
		},
		Cluster:    fm.Cluster,
		ArchivedAt: archivedAt,
		FilePath:   path,
	}, nil
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
