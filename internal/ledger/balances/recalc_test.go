package balances

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
)

// gatedItems blocks every ItemsInRange call until released so concurrent
// recalculations overlap deterministically.
type gatedItems struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	once    sync.Once
	proceed chan struct{}
}

func newGatedItems() *gatedItems {
	return &gatedItems{
		started: make(chan struct{}),
		proceed: make(chan struct{}),
	}
}

func (g *gatedItems) ItemsInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]entries.ItemDetail, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.proceed:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedItems) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestRecalculatorCollapsesConcurrentRuns(t *testing.T) {
	store := newMemBalanceStore()
	items := newGatedItems()
	recalc := NewRecalculator(NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		items,
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	))
	ctx := context.Background()

	const workers = 5
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- recalc.CalculateFor(ctx, tenantID, january(), Options{})
		}()
	}

	<-items.started
	// let the remaining callers join the in-flight run before releasing it
	time.Sleep(100 * time.Millisecond)
	close(items.proceed)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, items.callCount())
	require.Equal(t, 1, store.replaces)
}

func TestRecalculatorSeparatePeriodsRunSeparately(t *testing.T) {
	store := newMemBalanceStore()
	recalc := NewRecalculator(NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	))
	ctx := context.Background()

	require.NoError(t, recalc.CalculateFor(ctx, tenantID, january(), Options{}))
	require.NoError(t, recalc.CalculateFor(ctx, tenantID, february(), Options{}))
	require.Equal(t, 2, store.replaces)
}

func TestRecalculatorHonorsContextCancellation(t *testing.T) {
	store := newMemBalanceStore()
	items := newGatedItems()
	recalc := NewRecalculator(NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		items,
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- recalc.CalculateFor(ctx, tenantID, january(), Options{})
	}()

	<-items.started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(items.proceed)
}
