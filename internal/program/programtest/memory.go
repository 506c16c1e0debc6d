// ABOUTME: In-memory journal program for tests.
// ABOUTME: Mimics on-chain create/update/delete semantics with injectable failures and call counts.
package programtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/cluster"
	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/program"
)

// Operation names accepted by Fail.
const (
	OpCreate         = "create"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpFetch          = "fetch"
	OpAll            = "all"
	OpProgramAccount = "program-account"
)

var upgradeableLoader = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

// Memory is a program.Client backed by a map of entry accounts.
type Memory struct {
	mu         sync.Mutex
	programID  solana.PublicKey
	owner      solana.PublicKey
	entries    map[solana.PublicKey]models.JournalEntry
	failures   map[string]error
	calls      map[string]int
	nextSig    []solana.Signature
	sigSeq     byte
	undeployed bool
}

var _ program.Client = (*Memory)(nil)

// NewMemory creates an empty program owned by owner.
func NewMemory(owner solana.PublicKey) *Memory {
	return &Memory{
		programID: cluster.JournalProgramID,
		owner:     owner,
		entries:   make(map[solana.PublicKey]models.JournalEntry),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

// Fail makes every subsequent call to op return err until cleared with a nil err.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Undeploy makes ProgramAccount report that no program lives at the program id.
func (m *Memory) Undeploy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undeployed = true
}

// QueueSignature makes the next successful mutation return sig.
func (m *Memory) QueueSignature(sig solana.Signature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSig = append(m.nextSig, sig)
}

// Calls returns how many times op was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Put stores an entry directly, bypassing the mutation path.
func (m *Memory) Put(entry models.JournalEntry) models.JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.Address.IsZero() {
		entry.Address, _ = program.DeriveEntryAddress(m.programID, entry.Title, entry.Owner)
	}
	m.entries[entry.Address] = entry
	return entry
}

// ProgramID implements program.Client.
func (m *Memory) ProgramID() solana.PublicKey { return m.programID }

// Owner implements program.Client.
func (m *Memory) Owner() solana.PublicKey { return m.owner }

// EntryAddress implements program.Client.
func (m *Memory) EntryAddress(title string, owner solana.PublicKey) (solana.PublicKey, error) {
	return program.DeriveEntryAddress(m.programID, title, owner)
}

func (m *Memory) begin(op string) error {
	m.calls[op]++
	return m.failures[op]
}

func (m *Memory) signature() solana.Signature {
	if len(m.nextSig) > 0 {
		sig := m.nextSig[0]
		m.nextSig = m.nextSig[1:]
		return sig
	}
	m.sigSeq++
	return solana.Signature{m.sigSeq}
}

// CreateJournalEntry implements program.Client.
func (m *Memory) CreateJournalEntry(_ context.Context, title, message string) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCreate); err != nil {
		return solana.Signature{}, err
	}
	addr, err := program.DeriveEntryAddress(m.programID, title, m.owner)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, exists := m.entries[addr]; exists {
		return solana.Signature{}, fmt.Errorf("account %s already in use", addr)
	}
	m.entries[addr] = models.JournalEntry{Address: addr, Owner: m.owner, Title: title, Message: message}
	return m.signature(), nil
}

// UpdateJournalEntry implements program.Client.
func (m *Memory) UpdateJournalEntry(_ context.Context, title, message string) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpUpdate); err != nil {
		return solana.Signature{}, err
	}
	addr, err := program.DeriveEntryAddress(m.programID, title, m.owner)
	if err != nil {
		return solana.Signature{}, err
	}
	entry, ok := m.entries[addr]
	if !ok {
		return solana.Signature{}, fmt.Errorf("%s: %w", addr, program.ErrAccountNotFound)
	}
	entry.Message = message
	m.entries[addr] = entry
	return m.signature(), nil
}

// DeleteJournalEntry implements program.Client.
func (m *Memory) DeleteJournalEntry(_ context.Context, title string) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpDelete); err != nil {
		return solana.Signature{}, err
	}
	addr, err := program.DeriveEntryAddress(m.programID, title, m.owner)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, ok := m.entries[addr]; !ok {
		return solana.Signature{}, fmt.Errorf("%s: %w", addr, program.ErrAccountNotFound)
	}
	delete(m.entries, addr)
	return m.signature(), nil
}

// FetchEntry implements program.Client.
func (m *Memory) FetchEntry(_ context.Context, address solana.PublicKey) (*models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpFetch); err != nil {
		return nil, err
	}
	entry, ok := m.entries[address]
	if !ok {
		return nil, fmt.Errorf("%s: %w", address, program.ErrAccountNotFound)
	}
	return &entry, nil
}

// AllEntries implements program.Client.
func (m *Memory) AllEntries(_ context.Context) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpAll); err != nil {
		return nil, err
	}
	out := make([]models.JournalEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ProgramAccount implements program.Client.
func (m *Memory) ProgramAccount(_ context.Context) (*models.ProgramAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpProgramAccount); err != nil {
		return nil, err
	}
	if m.undeployed {
		return nil, nil
	}
	return &models.ProgramAccount{
		Address:    m.programID,
		Owner:      upgradeableLoader,
		Lamports:   1141440,
		Executable: true,
		Parsed:     []byte(`{"program":"bpf-upgradeable-loader","parsed":{"type":"program"}}`),
	}, nil
}
