// ABOUTME: Entry accessor scoped to one journal entry address.
// ABOUTME: Reads the entry and runs update/delete mutations that refresh both read caches.
package journal

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/querycache"
)

// EntryAccessor operates on the entry stored at one address.
type EntryAccessor struct {
	p       *Program
	address solana.PublicKey
}

// Address returns the on-chain address this accessor targets.
func (e *EntryAccessor) Address() solana.PublicKey {
	return e.address
}

func (e *EntryAccessor) entryKey() querycache.Key {
	return e.p.key(querycache.OpJournalFetch, e.address.String())
}

// Entry reads the entry at the accessor's address.
func (e *EntryAccessor) Entry(ctx context.Context) Query[*models.JournalEntry] {
	q := fetchQuery(ctx, e.p, e.entryKey(), func(ctx context.Context) (*models.JournalEntry, error) {
		return e.p.client.FetchEntry(ctx, e.address)
	})
	if q.IsSuccess() && q.Data != nil {
		cp := *q.Data
		q.Data = &cp
	}
	return q
}

// CachedEntry returns the single-entry query state without loading.
func (e *EntryAccessor) CachedEntry() Query[*models.JournalEntry] {
	return peekQuery[*models.JournalEntry](e.p, e.entryKey())
}

// UpdateEntry replaces the message of the entry titled args.Title.
func (e *EntryAccessor) UpdateEntry(ctx context.Context, args models.CreateEntryArgs) Result {
	return e.p.mutate(ctx, OpUpdateEntry, args.Owner, func(ctx context.Context) (solana.Signature, error) {
		return e.p.client.UpdateJournalEntry(ctx, args.Title, args.Message)
	}, e.p.entriesKey(), e.entryKey())
}

// DeleteEntry closes the entry titled title.
func (e *EntryAccessor) DeleteEntry(ctx context.Context, title string) Result {
	return e.p.mutate(ctx, OpDeleteEntry, solana.PublicKey{}, func(ctx context.Context) (solana.Signature, error) {
		return e.p.client.DeleteJournalEntry(ctx, title)
	}, e.p.entriesKey(), e.entryKey())
}
