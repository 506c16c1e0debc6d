// ABOUTME: JSON-RPC client for the journal program on a Solana cluster.
// ABOUTME: Signs and submits journal instructions and reads entry accounts.
package program

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/wallet"
)

// RPCClient talks to the journal program through a Solana RPC node.
type RPCClient struct {
	rpc          *rpc.Client
	programID    solana.PublicKey
	wallet       *wallet.Wallet
	commitment   rpc.CommitmentType
	pollInterval time.Duration
}

// Option configures an RPCClient.
type Option func(*RPCClient)

// WithCommitment sets the commitment used for reads, preflight, and confirmation.
func WithCommitment(c rpc.CommitmentType) Option {
	return func(r *RPCClient) {
		r.commitment = c
	}
}

// WithPollInterval sets how often signature status is polled while confirming.
func WithPollInterval(d time.Duration) Option {
	return func(r *RPCClient) {
		r.pollInterval = d
	}
}

// NewRPCClient creates a client for the program at programID. w may be nil for read-only use.
func NewRPCClient(endpoint string, programID solana.PublicKey, w *wallet.Wallet, opts ...Option) *RPCClient {
	c := &RPCClient{
		rpc:          rpc.New(endpoint),
		programID:    programID,
		wallet:       w,
		commitment:   rpc.CommitmentConfirmed,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgramID implements Client.
func (c *RPCClient) ProgramID() solana.PublicKey {
	return c.programID
}

// Owner implements Client.
func (c *RPCClient) Owner() solana.PublicKey {
	if c.wallet == nil {
		return solana.PublicKey{}
	}
	return c.wallet.PublicKey()
}

// EntryAddress implements Client.
func (c *RPCClient) EntryAddress(title string, owner solana.PublicKey) (solana.PublicKey, error) {
	return DeriveEntryAddress(c.programID, title, owner)
}

// CreateJournalEntry implements Client.
func (c *RPCClient) CreateJournalEntry(ctx context.Context, title, message string) (solana.Signature, error) {
	return c.invoke(ctx, title, ixCreate, titleMessageArgs{Title: title, Message: message})
}

// UpdateJournalEntry implements Client.
func (c *RPCClient) UpdateJournalEntry(ctx context.Context, title, message string) (solana.Signature, error) {
	return c.invoke(ctx, title, ixUpdate, titleMessageArgs{Title: title, Message: message})
}

// DeleteJournalEntry implements Client.
func (c *RPCClient) DeleteJournalEntry(ctx context.Context, title string) (solana.Signature, error) {
	return c.invoke(ctx, title, ixDelete, titleArgs{Title: title})
}

func (c *RPCClient) invoke(ctx context.Context, title, name string, args interface{}) (solana.Signature, error) {
	if c.wallet == nil {
		return solana.Signature{}, ErrNoWallet
	}
	ix, err := entryInstruction(c.programID, c.wallet.PublicKey(), title, name, args)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.sendAndConfirm(ctx, ix)
}

func (c *RPCClient) sendAndConfirm(ctx context.Context, ix solana.Instruction) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(c.wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}
	if _, err := tx.Sign(c.wallet.Signer); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := c.confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

var commitmentRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

func wantRank(c rpc.CommitmentType) int {
	switch c {
	case rpc.CommitmentProcessed:
		return 1
	case rpc.CommitmentFinalized:
		return 3
	default:
		return 2
	}
}

// confirm polls the signature until it reaches the client's commitment.
func (c *RPCClient) confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	want := wantRank(c.commitment)
	for {
		out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return fmt.Errorf("failed to get signature status: %w", err)
		}
		if out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if commitmentRank[status.ConfirmationStatus] >= want {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not confirmed: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

// FetchEntry implements Client.
func (c *RPCClient) FetchEntry(ctx context.Context, address solana.PublicKey) (*models.JournalEntry, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}
	if !out.Value.Owner.Equals(c.programID) {
		return nil, fmt.Errorf("account %s is owned by %s, not the journal program", address, out.Value.Owner)
	}
	return DecodeEntry(address, out.Value.Data.GetBinary())
}

// AllEntries implements Client. Results are ordered by title, then address.
func (c *RPCClient) AllEntries(ctx context.Context) ([]models.JournalEntry, error) {
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(EntryDiscriminator[:])}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	entries := make([]models.JournalEntry, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		entry, err := DecodeEntry(keyed.Pubkey, keyed.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Title != entries[j].Title {
			return entries[i].Title < entries[j].Title
		}
		return entries[i].Address.String() < entries[j].Address.String()
	})
	return entries, nil
}

// ProgramAccount implements Client.
func (c *RPCClient) ProgramAccount(ctx context.Context) (*models.ProgramAccount, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, c.programID, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingJSONParsed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get program account info: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}

	acct := &models.ProgramAccount{
		Address:    c.programID,
		Owner:      out.Value.Owner,
		Lamports:   out.Value.Lamports,
		Executable: out.Value.Executable,
	}
	if out.Value.Data != nil {
		acct.Parsed = out.Value.Data.GetRawJSON()
	}
	return acct, nil
}

// Health reports whether the RPC node answers getHealth with "ok".
func (c *RPCClient) Health(ctx context.Context) error {
	return CheckHealth(ctx, c.rpc)
}

// CheckHealth calls getHealth on an arbitrary RPC client.
func CheckHealth(ctx context.Context, client *rpc.Client) error {
	status, err := client.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("rpc health check failed: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("rpc node unhealthy: %s", status)
	}
	return nil
}
