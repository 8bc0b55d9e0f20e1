package docstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailor-backend/internal/query"
)

func TestSubscribe_InitialSnapshotThenChanges(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, "customers", map[string]any{"name": "Ada", "userId": "u1"})
	require.NoError(t, err)

	snapshots := make(chan []Document, 16)
	unsub := s.Subscribe(ctx,
		query.New("customers", query.Where("userId", query.Eq, "u1")),
		func(docs []Document) { snapshots <- docs },
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	defer unsub()

	first := <-snapshots
	require.Len(t, first, 1)

	_, err = s.Insert(ctx, "customers", map[string]any{"name": "Grace", "userId": "u1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case docs := <-snapshots:
			return len(docs) == 2
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribe_CoalescesToLatestSnapshot(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var mu sync.Mutex
	var last []Document
	unsub := s.Subscribe(ctx, query.New("payments"),
		func(docs []Document) {
			mu.Lock()
			last = docs
			mu.Unlock()
		},
		func(err error) { t.Errorf("unexpected error: %v", err) },
	)
	defer unsub()

	for i := 0; i < 20; i++ {
		_, err := s.Insert(ctx, "payments", map[string]any{"amount": float64(i + 1)})
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 20
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribe_NoCallbacksAfterUnsubscribe(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var calls atomic.Int32
	unsub := s.Subscribe(ctx, query.New("orders"),
		func([]Document) { calls.Add(1) },
		func(error) { calls.Add(1) },
	)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	unsub()
	unsub()
	before := calls.Load()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, "orders", map[string]any{"style": "kurta"})
		require.NoError(t, err)
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, calls.Load())

	feed := s.Feed().(*LocalFeed)
	assert.Zero(t, feed.Listeners("orders"))
}

func TestSubscribe_ErrorIsTerminal(t *testing.T) {
	feed := NewLocalFeed()
	boom := newError(CodeInternal, "fetch", "orders", errors.New("boom"))

	var fetches atomic.Int32
	fetch := func(context.Context, query.Query) ([]Document, error) {
		fetches.Add(1)
		return nil, boom
	}

	errs := make(chan error, 4)
	unsub := subscribe(context.Background(), feed, fetch, query.New("orders"),
		func([]Document) { t.Error("unexpected snapshot") },
		func(err error) { errs <- err },
	)
	defer unsub()

	err := <-errs
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsBenign(err))

	require.NoError(t, feed.Publish(context.Background(), "orders"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestLocalFeed_ListenAndCancel(t *testing.T) {
	feed := NewLocalFeed()

	var a, b atomic.Int32
	cancelA := feed.Listen("customers", func() { a.Add(1) })
	cancelB := feed.Listen("customers", func() { b.Add(1) })
	defer cancelB()

	require.NoError(t, feed.Publish(context.Background(), "customers"))
	require.NoError(t, feed.Publish(context.Background(), "orders"))
	cancelA()
	cancelA()
	require.NoError(t, feed.Publish(context.Background(), "customers"))

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(2), b.Load())
	assert.Equal(t, 1, feed.Listeners("customers"))
}
