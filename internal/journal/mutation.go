// ABOUTME: Mutation state tracking for journal writes.
// ABOUTME: Each invocation gets its own id and moves Idle -> Pending -> Success|Error.
package journal

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// MutationState is the lifecycle state of one mutation.
type MutationState string

const (
	MutationIdle    MutationState = "idle"
	MutationPending MutationState = "pending"
	MutationSuccess MutationState = "success"
	MutationError   MutationState = "error"
)

// Mutation operation names, scoped by cluster in MutationKey.
const (
	OpCreateEntry = "journalEntry/create"
	OpUpdateEntry = "journalEntry/update"
	OpDeleteEntry = "journalEntry/deleteEntry"
)

// mutationRetention bounds how long settled mutations stay inspectable.
const mutationRetention = 10 * time.Minute

// MutationKey identifies the kind of mutation. Concurrent invocations share a key
// but not an ID.
type MutationKey struct {
	Operation string
	Cluster   string
}

// Mutation is a snapshot of one mutation invocation.
type Mutation struct {
	ID        uuid.UUID
	Key       MutationKey
	State     MutationState
	Signature solana.Signature
	Err       error
	StartedAt time.Time
	SettledAt time.Time
}

// Result is what a mutation returns: a signature on success, an error otherwise.
type Result struct {
	MutationID uuid.UUID
	Signature  solana.Signature
	Err        error
}

// Ok reports whether the mutation succeeded.
func (r Result) Ok() bool {
	return r.Err == nil
}

// mutationLog records mutation snapshots by id.
type mutationLog struct {
	items *ttlcache.Cache[uuid.UUID, Mutation]
}

func newMutationLog() *mutationLog {
	return &mutationLog{
		items: ttlcache.New[uuid.UUID, Mutation](
			ttlcache.WithTTL[uuid.UUID, Mutation](mutationRetention),
			ttlcache.WithDisableTouchOnHit[uuid.UUID, Mutation](),
		),
	}
}

func (l *mutationLog) begin(key MutationKey) Mutation {
	l.items.DeleteExpired()
	m := Mutation{
		ID:        uuid.New(),
		Key:       key,
		State:     MutationPending,
		StartedAt: time.Now(),
	}
	l.items.Set(m.ID, m, ttlcache.NoTTL)
	return m
}

func (l *mutationLog) settle(m Mutation, sig solana.Signature, err error) Mutation {
	m.SettledAt = time.Now()
	m.Signature = sig
	m.Err = err
	if err != nil {
		m.State = MutationError
	} else {
		m.State = MutationSuccess
	}
	l.items.Set(m.ID, m, ttlcache.DefaultTTL)
	return m
}

func (l *mutationLog) get(id uuid.UUID) (Mutation, bool) {
	item := l.items.Get(id)
	if item == nil {
		return Mutation{ID: id, State: MutationIdle}, false
	}
	return item.Value(), true
}

func (l *mutationLog) pending() []Mutation {
	var out []Mutation
	for _, m := range l.items.Items() {
		if v := m.Value(); v.State == MutationPending {
			out = append(out, v)
		}
	}
	return out
}
