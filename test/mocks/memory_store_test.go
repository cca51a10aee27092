package mocks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IncrSetsTTLOnlyOnCreate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store := NewMemoryStore()
	store.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	v, err := store.IncrWithExpiry(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	// Later increments must not extend the TTL.
	advance(30 * time.Second)
	v, err = store.IncrWithExpiry(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	advance(31 * time.Second)
	v, err = store.IncrWithExpiry(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, v, "key should have expired at its original TTL")
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()
	const k = 200
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.IncrWithExpiry(context.Background(), "counter", time.Minute)
		}()
	}
	wg.Wait()

	v, err := store.IncrWithExpiry(context.Background(), "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, k+1, v)
}

func TestMemoryStore_SetIfAbsent(t *testing.T) {
	store := NewMemoryStore()
	ok, err := store.SetIfAbsent(context.Background(), "k", []byte("a"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.SetIfAbsent(context.Background(), "k", []byte("b"), time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	val, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("a"), val)
}

func TestMemoryStore_DeleteAndAbsentGet(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), 0))
	require.NoError(t, store.Delete(context.Background(), "k"))

	_, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, found)
}
