package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RecordStore {
	engine, err := NewMemoryEngine()
	require.NoError(t, err)
	store := NewRecordStore(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { store.Close() })
	return store
}

func testAddress(t *testing.T, hex string) interfaces.Address {
	addr, err := interfaces.NewAddressFromHex(hex)
	require.NoError(t, err)
	return addr
}

func TestRecordStore_PutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addr := testAddress(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	key := NodeRecordKey(interfaces.SequencerNode, addr)

	_, err := Get[interfaces.NodeRecord](store, key)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)

	record := &interfaces.NodeRecord{Address: addr, ExternalRpcUrl: "http://a:8000", ClusterRpcUrl: "http://a:9000"}
	require.NoError(t, Put(ctx, store, key, record))

	loaded, err := Get[interfaces.NodeRecord](store, key)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	// Same address under another kind is a different record
	_, err = Get[interfaces.NodeRecord](store, NodeRecordKey(interfaces.TxOrdererNode, addr))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)

	require.NoError(t, Delete(ctx, store, key))
	_, err = Get[interfaces.NodeRecord](store, key)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)

	assert.ErrorIs(t, Delete(ctx, store, key), interfaces.ErrRecordNotFound)
}

func TestRecordStore_GetOrDefault(t *testing.T) {
	store := newTestStore(t)

	list, err := GetOrDefault(store, SequencingInfoListKey(), func() *SequencingInfoList { return &SequencingInfoList{} })
	require.NoError(t, err)
	assert.Empty(t, list.Keys)

	key := interfaces.NewSequencingInfoKey(interfaces.PlatformEthereum, interfaces.FunctionLiveness, interfaces.ServiceProviderRadius)
	assert.True(t, list.Insert(key))
	assert.False(t, list.Insert(key))
	require.NoError(t, Put(context.Background(), store, SequencingInfoListKey(), list))

	loaded, err := GetOrDefault(store, SequencingInfoListKey(), func() *SequencingInfoList { return &SequencingInfoList{} })
	require.NoError(t, err)
	assert.Equal(t, []interfaces.SequencingInfoKey{key}, loaded.Keys)
}

func TestGuard_CommitAndRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addr := testAddress(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	key := NodeRecordKey(interfaces.TxOrdererNode, addr)

	guard, err := GetForUpdate[interfaces.NodeRecord](ctx, store, key)
	require.NoError(t, err)
	assert.False(t, guard.Found)
	guard.Value.Address = addr
	guard.Value.ExternalRpcUrl = "http://b:8000"
	guard.Rollback()

	_, err = Get[interfaces.NodeRecord](store, key)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound, "rolled back guard must not write")

	guard, err = GetForUpdate[interfaces.NodeRecord](ctx, store, key)
	require.NoError(t, err)
	guard.Value.Address = addr
	guard.Value.ExternalRpcUrl = "http://b:8000"
	require.NoError(t, guard.Commit())
	guard.Rollback()
	assert.Error(t, guard.Commit(), "guard cannot be committed twice")

	guard, err = GetForUpdate[interfaces.NodeRecord](ctx, store, key)
	require.NoError(t, err)
	assert.True(t, guard.Found)
	assert.Equal(t, "http://b:8000", guard.Value.ExternalRpcUrl)
	require.NoError(t, guard.Delete())

	_, err = Get[interfaces.NodeRecord](store, key)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
}

func TestGuard_CommitThenRunsUnderLock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := NewKey("Counter")

	type counter struct {
		N int
	}

	guard, err := GetForUpdate[counter](ctx, store, key)
	require.NoError(t, err)
	guard.Value.N = 7

	var published int
	require.NoError(t, guard.CommitThen(func(c *counter) {
		published = c.N

		// The key is still held while publishing
		timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := GetForUpdate[counter](timeoutCtx, store, key)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}))
	assert.Equal(t, 7, published)

	// Released afterwards
	next, err := GetForUpdate[counter](ctx, store, key)
	require.NoError(t, err)
	assert.Equal(t, 7, next.Value.N)
	next.Rollback()

	assert.Error(t, guard.CommitThen(func(*counter) { t.Fatal("publish after release") }))
}

func TestGuard_ExclusivePerKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := NodeRecordKey(interfaces.SequencerNode, testAddress(t, "0xcccccccccccccccccccccccccccccccccccccccc"))
	otherKey := NodeRecordKey(interfaces.SequencerNode, testAddress(t, "0xdddddddddddddddddddddddddddddddddddddddd"))

	guard, err := GetForUpdate[interfaces.NodeRecord](ctx, store, key)
	require.NoError(t, err)

	// A different key is not blocked
	other, err := GetForUpdate[interfaces.NodeRecord](ctx, store, otherKey)
	require.NoError(t, err)
	other.Rollback()

	// The same key blocks until the context expires
	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = GetForUpdate[interfaces.NodeRecord](timeoutCtx, store, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan struct{})
	go func() {
		second, err := GetForUpdate[interfaces.NodeRecord](ctx, store, key)
		if err == nil {
			second.Rollback()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second guard acquired while the first is held")
	case <-time.After(20 * time.Millisecond):
	}

	guard.Rollback()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second guard not acquired after release")
	}
}

func TestGuard_ConcurrentIncrements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := NewKey("Counter")

	type counter struct {
		N int
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := GetForUpdate[counter](ctx, store, key)
			if !assert.NoError(t, err) {
				return
			}
			defer guard.Rollback()
			guard.Value.N++
			assert.NoError(t, guard.Commit())
		}()
	}
	wg.Wait()

	final, err := Get[counter](store, key)
	require.NoError(t, err)
	assert.Equal(t, 50, final.N)
	assert.Empty(t, store.locks.locks, "lock entries must be released")
}

func TestKey_FieldsDoNotCollide(t *testing.T) {
	a := NewKey(KindClusterInfo, "a/b", "c")
	b := NewKey(KindClusterInfo, "a", "b/c")
	assert.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestEngineFactory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := NewEngineFactory(logger)
	dir := t.TempDir()

	tests := []struct {
		name string
		uri  string
	}{
		{name: "leveldb", uri: "leveldb://" + filepath.Join(dir, "leveldb")},
		{name: "bolt", uri: "bolt://" + filepath.Join(dir, "bolt", "records.db")},
		{name: "memory", uri: "memory://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := factory.EngineFor(tt.uri)
			require.NoError(t, err)
			store := NewRecordStore(engine, logger)
			defer store.Close()

			ctx := context.Background()
			addr := testAddress(t, "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
			key := NodeRecordKey(interfaces.RollupExecutorNode, addr)
			require.NoError(t, Put(ctx, store, key, &interfaces.NodeRecord{Address: addr, ExternalRpcUrl: "http://e:1"}))

			loaded, err := Get[interfaces.NodeRecord](store, key)
			require.NoError(t, err)
			assert.Equal(t, "http://e:1", loaded.ExternalRpcUrl)

			require.NoError(t, Delete(ctx, store, key))
			assert.ErrorIs(t, Delete(ctx, store, key), interfaces.ErrRecordNotFound)
		})
	}

	_, err := factory.EngineFor("s3://bucket")
	assert.ErrorIs(t, err, ErrInvalidLocationURI)
}
