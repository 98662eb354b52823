package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop-client/internal/model"
)

func snapshotFixture() model.CartSnapshot {
	return model.BuildSnapshot([]model.CartLine{
		{ID: "line-1", ProductID: "A", Name: "Product A", UnitPrice: 500, Quantity: 2},
		{ID: "line-2", ProductID: "B", Name: "Product B", UnitPrice: 250, Quantity: 1},
	})
}

func TestOptimisticCache_StageAndConfirm(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	tx := cache.Begin("line-1")
	staged := tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applySetQuantity(s, "line-1", 5)
	})

	// the optimistic state is visible before any confirmation
	assert.Equal(t, 6, staged.TotalItems)
	assert.Equal(t, 6, cache.Snapshot().TotalItems)

	authoritative := model.BuildSnapshot([]model.CartLine{
		{ID: "line-1", ProductID: "A", Name: "Product A", UnitPrice: 500, Quantity: 5},
		{ID: "line-2", ProductID: "B", Name: "Product B", UnitPrice: 250, Quantity: 1},
	})
	tx.Confirm(authoritative)

	got := cache.Snapshot()
	assert.Equal(t, authoritative.TotalItems, got.TotalItems)
	assert.Equal(t, authoritative.Subtotal, got.Subtotal)
}

func TestOptimisticCache_Rollback(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())
	require.Equal(t, 3, cache.Snapshot().TotalItems)

	tx := cache.Begin("line-1")
	tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applySetQuantity(s, "line-1", 10)
	})
	require.Equal(t, 11, cache.Snapshot().TotalItems)

	tx.Rollback()

	got := cache.Snapshot()
	assert.Equal(t, 3, got.TotalItems, "rollback must restore the pre-mutation snapshot")
	assert.Equal(t, 1250.0, got.Subtotal)
}

func TestOptimisticCache_ConfirmAfterRollbackIsIgnored(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	tx := cache.Begin("line-1")
	tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applyRemove(s, "line-1")
	})
	tx.Rollback()
	tx.Confirm(model.CartSnapshot{})

	assert.Equal(t, 3, cache.Snapshot().TotalItems)
}

func TestOptimisticCache_SameLineSerialized(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	first := cache.Begin("line-1")

	secondStarted := make(chan struct{})
	secondDone := make(chan struct{})
	go func() {
		close(secondStarted)
		tx := cache.Begin("line-1")
		tx.Confirm(cache.Snapshot())
		close(secondDone)
	}()

	<-secondStarted
	select {
	case <-secondDone:
		t.Fatal("second mutation on the same line ran before the first finished")
	case <-time.After(50 * time.Millisecond):
	}

	first.Confirm(cache.Snapshot())

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second mutation never unblocked")
	}
}

func TestOptimisticCache_DifferentLinesConcurrent(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	first := cache.Begin("line-1")
	defer first.Rollback()

	done := make(chan struct{})
	go func() {
		tx := cache.Begin("line-2")
		tx.Confirm(cache.Snapshot())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutation on an unrelated line was blocked")
	}
}

func TestOptimisticCache_SnapshotIsACopy(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	got := cache.Snapshot()
	got.Lines[0].Quantity = 99

	assert.Equal(t, 2, cache.Snapshot().Lines[0].Quantity)
}

func TestOptimisticCache_ConcurrentMutations(t *testing.T) {
	cache := NewOptimisticCache(nil)
	cache.Set(snapshotFixture())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(confirm bool) {
			defer wg.Done()

			tx := cache.Begin("line-1")
			tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
				return applySetQuantity(s, "line-1", 7)
			})
			if confirm {
				tx.Confirm(tx.prior)
			} else {
				tx.Rollback()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	// every mutation ended by restoring its prior state
	assert.Equal(t, 3, cache.Snapshot().TotalItems)
}
