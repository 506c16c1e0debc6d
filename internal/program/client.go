// ABOUTME: Interface definition for the journal program client.
// ABOUTME: Defines the RPC surface consumed by the accessors: three mutations and three reads.
package program

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/models"
)

// ErrNoWallet is returned by mutations when the client was built without a signer.
var ErrNoWallet = errors.New("no wallet configured: a keypair is required to sign transactions")

// ErrAccountNotFound is returned when an address holds no account.
var ErrAccountNotFound = errors.New("account not found")

// Client defines the journal program's remote-procedure and account surface.
type Client interface {
	// ProgramID returns the address of the journal program this client targets.
	ProgramID() solana.PublicKey

	// Owner returns the signing identity, or the zero key when no wallet is configured.
	Owner() solana.PublicKey

	// EntryAddress derives the account address for a title owned by owner.
	EntryAddress(title string, owner solana.PublicKey) (solana.PublicKey, error)

	// CreateJournalEntry submits create_journal_entry and returns the transaction signature.
	CreateJournalEntry(ctx context.Context, title, message string) (solana.Signature, error)

	// UpdateJournalEntry submits update_journal_entry and returns the transaction signature.
	UpdateJournalEntry(ctx context.Context, title, message string) (solana.Signature, error)

	// DeleteJournalEntry submits delete_journal_entry and returns the transaction signature.
	DeleteJournalEntry(ctx context.Context, title string) (solana.Signature, error)

	// FetchEntry reads the journal entry stored at address.
	FetchEntry(ctx context.Context, address solana.PublicKey) (*models.JournalEntry, error)

	// AllEntries reads every journal entry account owned by the program.
	AllEntries(ctx context.Context) ([]models.JournalEntry, error)

	// ProgramAccount reads parsed account info for the program address itself.
	// It returns (nil, nil) when nothing is deployed at that address.
	ProgramAccount(ctx context.Context) (*models.ProgramAccount, error)
}
