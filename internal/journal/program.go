// ABOUTME: Collection accessor for journal entries on the active cluster.
// ABOUTME: Lists entries, reads program account info, and creates entries with notify + refresh.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/2389-research/chainjournal/internal/cluster"
	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/notify"
	"github.com/2389-research/chainjournal/internal/program"
	"github.com/2389-research/chainjournal/internal/querycache"
)

// DefaultMutationTimeout bounds how long a dispatched mutation may run.
const DefaultMutationTimeout = 90 * time.Second

// errorPrefix is shown ahead of every mutation failure message.
const errorPrefix = "Error creating entry: "

// Program is the collection accessor. Accessors built from the same cache and
// bus observe each other's invalidations.
type Program struct {
	cluster   cluster.Cluster
	client    program.Client
	cache     *querycache.Cache
	notifier  notify.Publisher
	mutations *mutationLog
	logger    *slog.Logger
	timeout   time.Duration
}

// Option configures a Program.
type Option func(*Program)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Program) {
		p.logger = logger
	}
}

// WithMutationTimeout bounds each dispatched mutation.
func WithMutationTimeout(d time.Duration) Option {
	return func(p *Program) {
		p.timeout = d
	}
}

// NewProgram creates the collection accessor for cl.
func NewProgram(cl cluster.Cluster, client program.Client, cache *querycache.Cache, notifier notify.Publisher, opts ...Option) *Program {
	p := &Program{
		cluster:   cl,
		client:    client,
		cache:     cache,
		notifier:  notifier,
		mutations: newMutationLog(),
		logger:    slog.Default(),
		timeout:   DefaultMutationTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("cluster", cl.Name))
	return p
}

// OnCluster returns an accessor bound to another cluster that shares this one's
// cache, notifier, and mutation log.
func (p *Program) OnCluster(cl cluster.Cluster, client program.Client) *Program {
	next := *p
	next.cluster = cl
	next.client = client
	next.logger = p.logger.With(slog.String("cluster", cl.Name))
	return &next
}

// Cluster returns the cluster the accessor is bound to.
func (p *Program) Cluster() cluster.Cluster {
	return p.cluster
}

// ProgramID returns the journal program address.
func (p *Program) ProgramID() solana.PublicKey {
	return p.client.ProgramID()
}

// Owner returns the signing identity, or the zero key for read-only use.
func (p *Program) Owner() solana.PublicKey {
	return p.client.Owner()
}

func (p *Program) key(op string, address string) querycache.Key {
	return querycache.Key{Operation: op, Cluster: p.cluster.Name, Address: address}
}

func (p *Program) entriesKey() querycache.Key {
	return p.key(querycache.OpJournalAll, "")
}

// Entries lists every journal entry known to the program on this cluster.
func (p *Program) Entries(ctx context.Context) Query[[]models.JournalEntry] {
	q := fetchQuery(ctx, p, p.entriesKey(), p.client.AllEntries)
	if q.IsSuccess() {
		q.Data = append([]models.JournalEntry(nil), q.Data...)
	}
	return q
}

// CachedEntries returns the list query state without loading.
func (p *Program) CachedEntries() Query[[]models.JournalEntry] {
	return peekQuery[[]models.JournalEntry](p, p.entriesKey())
}

// ProgramAccount returns parsed account info for the program address. A
// successful query with nil Data means nothing is deployed there.
func (p *Program) ProgramAccount(ctx context.Context) Query[*models.ProgramAccount] {
	return fetchQuery(ctx, p, p.key(querycache.OpGetProgramAccount, ""), p.client.ProgramAccount)
}

// Refresh invalidates the entry list and reloads it.
func (p *Program) Refresh(ctx context.Context) Query[[]models.JournalEntry] {
	p.cache.Invalidate(p.entriesKey())
	return p.Entries(ctx)
}

// Reset drops every cached read for this cluster and returns how many were dropped.
func (p *Program) Reset() int {
	n := p.cache.InvalidateCluster(p.cluster.Name)
	p.logger.Debug("cluster cache reset", slog.Int("dropped", n))
	return n
}

// CreateEntry creates a new entry signed by the wallet.
func (p *Program) CreateEntry(ctx context.Context, args models.CreateEntryArgs) Result {
	return p.mutate(ctx, OpCreateEntry, args.Owner, func(ctx context.Context) (solana.Signature, error) {
		return p.client.CreateJournalEntry(ctx, args.Title, args.Message)
	}, p.entriesKey())
}

// Account returns the entry accessor for the entry stored at address.
func (p *Program) Account(address solana.PublicKey) *EntryAccessor {
	return &EntryAccessor{p: p, address: address}
}

// AccountByTitle returns the entry accessor for title owned by the wallet.
func (p *Program) AccountByTitle(title string) (*EntryAccessor, error) {
	addr, err := p.client.EntryAddress(title, p.client.Owner())
	if err != nil {
		return nil, err
	}
	return p.Account(addr), nil
}

// Mutation returns the snapshot for a mutation id. Unknown or expired ids
// report MutationIdle.
func (p *Program) Mutation(id uuid.UUID) (Mutation, bool) {
	return p.mutations.get(id)
}

// InFlight returns mutations that have been dispatched but not settled.
func (p *Program) InFlight() []Mutation {
	return p.mutations.pending()
}

// mutate runs call and settles the outcome: a success notification plus one
// invalidation per key, or an error notification and no invalidation. The call
// is detached from ctx cancellation; only the mutation timeout bounds it.
func (p *Program) mutate(ctx context.Context, op string, owner solana.PublicKey, call func(context.Context) (solana.Signature, error), invalidate ...querycache.Key) Result {
	m := p.mutations.begin(MutationKey{Operation: op, Cluster: p.cluster.Name})
	logger := p.logger.With(slog.String("op", op), slog.String("mutation_id", m.ID.String()))
	logger.Debug("mutation dispatched")

	var sig solana.Signature
	err := p.checkOwner(owner)
	if err == nil {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		sig, err = call(mctx)
		cancel()
	}

	if err != nil {
		merr := &RemoteMutationError{Operation: op, Err: err}
		p.mutations.settle(m, sig, merr)
		logger.Warn("mutation failed", slog.Any("error", err))
		p.notifier.Publish(notify.Notification{
			Kind:    notify.KindError,
			Title:   "Transaction failed",
			Message: FailureMessage(err),
			Cluster: p.cluster.Name,
		})
		return Result{MutationID: m.ID, Signature: sig, Err: merr}
	}

	p.mutations.settle(m, sig, nil)
	logger.Info("mutation confirmed", slog.String("signature", sig.String()))
	p.notifier.Publish(notify.Notification{
		Kind:        notify.KindSuccess,
		Title:       "Transaction sent",
		Message:     sig.String(),
		Signature:   sig.String(),
		ExplorerURL: p.cluster.ExplorerTxURL(sig.String()),
		Cluster:     p.cluster.Name,
	})
	for _, key := range invalidate {
		p.cache.Invalidate(key)
		logger.Debug("query invalidated", slog.String("key", key.String()))
	}
	return Result{MutationID: m.ID, Signature: sig}
}

// checkOwner rejects an explicit owner that differs from the signing wallet.
// The program always records the signer as owner.
func (p *Program) checkOwner(owner solana.PublicKey) error {
	if owner.IsZero() {
		return nil
	}
	signer := p.client.Owner()
	if !owner.Equals(signer) {
		return fmt.Errorf("owner %s does not match wallet %s", owner, signer)
	}
	return nil
}
