package tablelock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
)

func TestAcquireWrite_MutualExclusion(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	lease, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", time.Second)
	require.NoError(t, err)

	var acquired atomic.Bool

	done := make(chan struct{})

	go func() {
		l2, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", 2*time.Second)
		if err == nil {
			acquired.Store(true)
			l2.Release()
		}

		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load())

	lease.Release()
	<-done
	assert.True(t, acquired.Load())
}

func TestAcquireWrite_DistinctIDsDoNotContend(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	l1, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t1", time.Second)
	require.NoError(t, err)
	defer l1.Release()

	start := time.Now()
	l2, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t2", time.Second)
	require.NoError(t, err)
	defer l2.Release()

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAcquireWrite_TimesOutWhenHeld(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	lease, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", time.Second)
	require.NoError(t, err)
	defer lease.Release()

	_, err = mgr.AcquireWrite(context.Background(), "p1/default/b/t", 100*time.Millisecond)
	require.Error(t, err)
}

func TestAcquireWrite_FIFOFairness(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	first, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", time.Second)
	require.NoError(t, err)

	const waiters = 5

	var order []int

	var mu sync.Mutex

	var wg sync.WaitGroup

	for i := 0; i < waiters; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			time.Sleep(time.Duration(i) * 5 * time.Millisecond)

			l, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", 5*time.Second)
			if err != nil {
				return
			}

			mu.Lock()
			order = append(order, i)
			mu.Unlock()

			l.Release()
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	first.Release()
	wg.Wait()

	require.Len(t, order, waiters)

	for i := 1; i < len(order); i++ {
		assert.GreaterOrEqual(t, order[i], order[i-1]-1)
	}
}

func TestRelease_IsIdempotent(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	lease, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", time.Second)
	require.NoError(t, err)

	lease.Release()
	assert.NotPanics(t, func() { lease.Release() })
}

func TestSnapshot_ReportsHolders(t *testing.T) {
	mgr := NewManager(&mlog.NoneLogger{})

	lease, err := mgr.AcquireWrite(context.Background(), "p1/default/b/t", time.Second)
	require.NoError(t, err)

	snap := mgr.Snapshot()
	assert.Equal(t, 1, snap.HoldersByID["p1/default/b/t"])

	lease.Release()

	snap = mgr.Snapshot()
	assert.Equal(t, 0, snap.HoldersByID["p1/default/b/t"])
}
