// ABOUTME: Core data models for on-chain journal entries and program account info.
// ABOUTME: Provides the argument types shared by create and update mutations.
package models

import (
	"encoding/json"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Limits enforced by the on-chain program. They are informational here; the
// program rejects oversized fields, this layer does not.
const (
	MaxTitleLen   = 50
	MaxMessageLen = 1000
)

// JournalEntry is a decoded JournalEntryState account.
type JournalEntry struct {
	Address solana.PublicKey // on-chain account address, distinct from Title
	Owner   solana.PublicKey
	Title   string
	Message string
}

// CreateEntryArgs carries the input for create and update mutations.
// Owner is retained on update for symmetry with create.
type CreateEntryArgs struct {
	Title   string
	Message string
	Owner   solana.PublicKey
}

// ProgramAccount is the parsed account info for the program address itself.
type ProgramAccount struct {
	Address    solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Executable bool
	Parsed     json.RawMessage // jsonParsed payload, nil when the RPC node returned raw bytes
}

// FindByTitle returns the first entry with the given title, or nil.
func FindByTitle(entries []JournalEntry, title string) *JournalEntry {
	for i := range entries {
		if entries[i].Title == title {
			return &entries[i]
		}
	}
	return nil
}

// Preview shortens a message to maxLen runes, adding "..." if truncated.
func Preview(message string, maxLen int) string {
	message = strings.ReplaceAll(message, "\n", " ")
	runes := []rune(message)
	if len(runes) <= maxLen {
		return message
	}
	return string(runes[:maxLen]) + "..."
}
