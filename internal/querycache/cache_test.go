// ABOUTME: Tests for the shared query cache.
// ABOUTME: Covers hits, error non-caching, load coalescing, invalidation, and cluster namespaces.
package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(n *int32, value any) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		atomic.AddInt32(n, 1)
		return value, nil
	}
}

func TestFetchCachesSuccess(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}
	var loads int32

	e1, err := c.Fetch(context.Background(), key, counter(&loads, "first"))
	require.NoError(t, err)
	e2, err := c.Fetch(context.Background(), key, counter(&loads, "second"))
	require.NoError(t, err)

	assert.Equal(t, "first", e1.Value)
	assert.Equal(t, "first", e2.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	assert.False(t, e1.FetchedAt.IsZero())
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}

	_, err := c.Fetch(context.Background(), key, func(context.Context) (any, error) {
		return nil, errors.New("timeout")
	})
	require.EqualError(t, err, "timeout")

	_, ok := c.Peek(key)
	assert.False(t, ok)

	e, err := c.Fetch(context.Background(), key, func(context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", e.Value)
}

func TestFetchCoalescesConcurrentLoads(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}
	release := make(chan struct{})
	var loads int32

	load := func(context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.Fetch(context.Background(), key, load)
			assert.NoError(t, err)
			results[i] = e.Value
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestFetchSharedLoadOutlivesCancelledCaller(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}
	started := make(chan struct{})
	release := make(chan struct{})
	var loads int32
	var loadErr error

	load := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			close(started)
		}
		<-release
		loadErr = ctx.Err()
		return "shared", nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctxA, key, load)
		errA <- err
	}()
	<-started

	resB := make(chan Entry, 1)
	errB := make(chan error, 1)
	go func() {
		e, err := c.Fetch(context.Background(), key, load)
		errB <- err
		resB <- e
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	require.NoError(t, <-errB)
	assert.Equal(t, "shared", (<-resB).Value)
	assert.NoError(t, loadErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	_, ok := c.Peek(key)
	assert.True(t, ok, "detached load still populates the cache")
}

func TestFetchLoadTimeout(t *testing.T) {
	c := New(time.Minute, WithLoadTimeout(20*time.Millisecond))
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}

	_, err := c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchKeysWithSlashesDoNotCollide(t *testing.T) {
	c := New(time.Minute)
	a := Key{Operation: OpJournalAll, Cluster: "x"}
	b := Key{Operation: "journal", Cluster: "all/x"}
	require.Equal(t, a.String(), b.String())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Entry, 1)
	go func() {
		e, _ := c.Fetch(context.Background(), a, func(context.Context) (any, error) {
			close(started)
			<-release
			return []string{"list"}, nil
		})
		done <- e
	}()
	<-started

	e, err := c.Fetch(context.Background(), b, counter(new(int32), 42))
	require.NoError(t, err)
	assert.Equal(t, 42, e.Value)

	close(release)
	assert.Equal(t, []string{"list"}, (<-done).Value)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}
	var loads int32

	_, err := c.Fetch(context.Background(), key, counter(&loads, "v1"))
	require.NoError(t, err)

	c.Invalidate(key)

	e, err := c.Fetch(context.Background(), key, counter(&loads, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", e.Value)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestInvalidateNotifiesListenersOnce(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}

	var seen []Key
	c.OnInvalidate(func(k Key) { seen = append(seen, k) })

	c.Invalidate(key)
	require.Len(t, seen, 1)
	assert.Equal(t, key, seen[0])
}

func TestInvalidateDuringLoadDoesNotRepopulate(t *testing.T) {
	c := New(time.Minute)
	key := Key{Operation: OpJournalAll, Cluster: "devnet"}
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan Entry)
	go func() {
		e, _ := c.Fetch(context.Background(), key, func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- e
	}()

	<-started
	c.Invalidate(key)
	close(release)

	e := <-done
	assert.Equal(t, "stale", e.Value)
	_, ok := c.Peek(key)
	assert.False(t, ok, "stale load must not repopulate an invalidated key")
}

func TestClusterNamespacesAreIndependent(t *testing.T) {
	c := New(time.Minute)
	devnet := Key{Operation: OpJournalAll, Cluster: "devnet"}
	mainnet := Key{Operation: OpJournalAll, Cluster: "mainnet-beta"}

	_, err := c.Fetch(context.Background(), devnet, counter(new(int32), "devnet-list"))
	require.NoError(t, err)

	e, err := c.Fetch(context.Background(), mainnet, counter(new(int32), "mainnet-list"))
	require.NoError(t, err)
	assert.Equal(t, "mainnet-list", e.Value)

	n := c.InvalidateCluster("devnet")
	assert.Equal(t, 1, n)
	_, ok := c.Peek(devnet)
	assert.False(t, ok)
	_, ok = c.Peek(mainnet)
	assert.True(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	c := New(20 * time.Millisecond)
	key := Key{Operation: OpGetProgramAccount, Cluster: "devnet"}
	var loads int32

	_, err := c.Fetch(context.Background(), key, counter(&loads, "v"))
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.Fetch(context.Background(), key, counter(&loads, "v"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "journal/all/devnet", Key{Operation: OpJournalAll, Cluster: "devnet"}.String())
	assert.Equal(t, "journal/fetch/devnet/abc", Key{Operation: OpJournalFetch, Cluster: "devnet", Address: "abc"}.String())
}

func TestStartStop(t *testing.T) {
	c := New(time.Minute)
	c.Stop()
	c.Start()
	c.Start()
	c.Stop()
	c.Stop()
}
