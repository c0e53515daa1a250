package tasktree

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/tasktree/internal/clock"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDays(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid, "expected %s person days, got null", want)
	assert.True(t, decimal.RequireFromString(want).Equal(got.Decimal),
		"expected %s person days, got %s", want, got.Decimal)
}

func TestGetPersonDays_RootSumsChildren(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "A", testutil.WithMaxHours(160)),
		task(3, 1, "B"),
	)
	store.addOrder(testutil.NewTestOrderPosition(4711, 1, 3, "5"))
	tree, _ := newTestTree(t, store)

	days, err := tree.GetPersonDays(context.Background(), 1)
	require.NoError(t, err)
	assertDays(t, "25", days)
}

func TestGetPersonDays_FallbackChain(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "Budgeted parent"),
		task(3, 2, "Leaf A", testutil.WithMaxHours(80)),
		task(4, 2, "Leaf B", testutil.WithMaxHours(80)),
		task(5, 1, "Ordered parent"),
		task(6, 5, "Leaf C", testutil.WithMaxHours(80)),
		task(7, 1, "Empty"),
	)
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 5, "3.5"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	days, err := tree.GetPersonDays(ctx, 3)
	require.NoError(t, err)
	assertDays(t, "10", days)

	days, err = tree.GetPersonDays(ctx, 2)
	require.NoError(t, err)
	assertDays(t, "20", days)

	days, err = tree.GetPersonDays(ctx, 5)
	require.NoError(t, err)
	assertDays(t, "3.5", days)

	days, err = tree.GetPersonDays(ctx, 7)
	require.NoError(t, err)
	assert.False(t, days.Valid)

	days, err = tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	assertDays(t, "23.5", days)
}

func TestGetPersonDays_OwnMaxHoursWinOverOrderedChild(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "Budgeted parent", testutil.WithMaxHours(40)),
		task(3, 2, "Ordered leaf"),
	)
	store.addOrder(testutil.NewTestOrderPosition(4711, 1, 3, "12"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	days, err := tree.GetPersonDays(ctx, 2)
	require.NoError(t, err)
	assertDays(t, "5", days)

	days, err = tree.GetPersonDays(ctx, 3)
	require.NoError(t, err)
	assertDays(t, "12", days)

	days, err = tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	assertDays(t, "5", days)
}

func TestGetPersonDays_HoursPerDayOption(t *testing.T) {
	store := newMemStore(task(1, 0, "Root", testutil.WithMaxHours(75)))
	tree, _ := newTestTree(t, store, WithHoursPerDay(decimal.RequireFromString("7.5")))

	days, err := tree.GetPersonDays(context.Background(), 1)
	require.NoError(t, err)
	assertDays(t, "10", days)
}

func TestGetPersonDays_DeletedAndUnknown(t *testing.T) {
	deleted := task(2, 1, "Gone", testutil.WithMaxHours(80))
	deleted.Deleted = true
	store := newMemStore(task(1, 0, "Root"), deleted)
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	days, err := tree.GetPersonDays(ctx, 2)
	require.NoError(t, err)
	assert.False(t, days.Valid)

	days, err = tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	assert.False(t, days.Valid)

	days, err = tree.GetPersonDays(ctx, 99)
	require.NoError(t, err)
	assert.False(t, days.Valid)
}

func TestGetPersonDays_PositionsWithoutWorkload(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "A", testutil.WithMaxHours(80)),
	)
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 2, ""))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	has, err := tree.HasOrderPositions(ctx, 2, false)
	require.NoError(t, err)
	assert.True(t, has)

	days, err := tree.GetPersonDays(ctx, 2)
	require.NoError(t, err)
	assert.False(t, days.Valid, "positions override the budget even without a figure")
}

func TestRefreshOrderPositions_Idempotent(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 4, "2.25"))
	store.addOrder(testutil.NewTestOrderPosition(1, 2, 4, "1.75"))
	store.addOrder(testutil.NewTestOrderPosition(2, 1, 6, "8"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	require.NoError(t, tree.RefreshOrderPositions(ctx))
	first := map[int64]decimal.NullDecimal{}
	for id := int64(1); id <= 6; id++ {
		first[id] = tree.PeekTaskNode(id).OrderedPersonDays()
	}
	require.NoError(t, tree.RefreshOrderPositions(ctx))
	for id := int64(1); id <= 6; id++ {
		got := tree.PeekTaskNode(id).OrderedPersonDays()
		assert.Equal(t, first[id].Valid, got.Valid, "task %d", id)
		assert.True(t, first[id].Decimal.Equal(got.Decimal), "task %d", id)
	}
	assertDays(t, "4", first[4])
	assert.False(t, first[2].Valid)
}

func TestOrderPositions_LoadedOnceUntilDirty(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 4, "2"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	_, err := tree.GetPersonDays(ctx, 4)
	require.NoError(t, err)
	_, err = tree.HasOrderPositions(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.orderReads.Load())

	_, err = tree.AddTaskNode(task(7, 4, "API"))
	require.NoError(t, err)
	store.addOrder(testutil.NewTestOrderPosition(1, 2, 7, "3"))

	days, err := tree.GetOrderedPersonDaysSum(ctx, 4)
	require.NoError(t, err)
	assertDays(t, "5", days)
	assert.Equal(t, int32(2), store.orderReads.Load())
}

func TestOrderPositions_DirtyAfterRefresh(t *testing.T) {
	store := sampleStore()
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	_, err := tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, tree.Refresh(ctx))
	_, err = tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.orderReads.Load())
}

func TestGetPersonDays_ReaderDuringRefreshSeesPositions(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(4711, 1, 3, "5"))
	hc := &hookClock{Clock: clock.Fake(testEpoch)}
	tree, _ := newTestTree(t, store, WithClock(hc))
	ctx := context.Background()

	days, err := tree.GetPersonDays(ctx, 3)
	require.NoError(t, err)
	assertDays(t, "5", days)

	// Refresh reads the clock right after publishing the new nodes.
	var during decimal.NullDecimal
	var duringErr error
	hc.arm(func() {
		during, duringErr = tree.GetPersonDays(ctx, 3)
	})
	require.NoError(t, tree.Refresh(ctx))

	require.NoError(t, duringErr)
	assertDays(t, "5", during)
	assert.Equal(t, int32(2), store.orderReads.Load())
}

func TestHasOrderPositions(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 5, "1"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	has, err := tree.HasOrderPositions(ctx, 2, false)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = tree.HasOrderPositions(ctx, 2, true)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = tree.HasOrderPositions(ctx, 3, true)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetOrderPositionEntries(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(4711, 1, 5, "1"))
	store.addOrder(testutil.NewTestOrderPosition(4711, 2, 5, ""))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	entries, err := tree.GetOrderPositionEntries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "4711.1", entries[0].Key())

	entries, err = tree.GetOrderPositionEntries(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestGetPersonDaysNode(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "Budget", testutil.WithMaxHours(40)),
		task(3, 2, "Inner"),
		task(4, 3, "Leaf"),
		task(5, 1, "Ordered"),
		task(6, 5, "Leaf"),
		task(7, 1, "Nothing"),
	)
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 5, "2"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	node, err := tree.GetPersonDaysNode(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, int64(2), node.ID())

	node, err = tree.GetPersonDaysNode(ctx, 6)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, int64(5), node.ID())

	node, err = tree.GetPersonDaysNode(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), node.ID())

	node, err = tree.GetPersonDaysNode(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestGetOrderedPersonDaysSum_IgnoresBudgets(t *testing.T) {
	store := newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "A", testutil.WithMaxHours(800)),
		task(3, 2, "A1"),
		task(4, 1, "B"),
	)
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 2, "1.5"))
	store.addOrder(testutil.NewTestOrderPosition(1, 2, 3, "2"))
	tree, _ := newTestTree(t, store)
	ctx := context.Background()

	days, err := tree.GetOrderedPersonDaysSum(ctx, 1)
	require.NoError(t, err)
	assertDays(t, "3.5", days)

	days, err = tree.GetOrderedPersonDaysSum(ctx, 4)
	require.NoError(t, err)
	assert.False(t, days.Valid)
}

func TestOrderPositions_ErrorKeepsCacheDirty(t *testing.T) {
	store := sampleStore()
	tree, _ := newTestTree(t, store)
	ctx := context.Background()
	store.orderErr = errors.New("orders unavailable")

	_, err := tree.GetPersonDays(ctx, 1)
	require.Error(t, err)

	store.orderErr = nil
	_, err = tree.GetPersonDays(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.orderReads.Load())
}

func TestOrderPositions_UnknownTaskIgnored(t *testing.T) {
	store := sampleStore()
	store.addOrder(testutil.NewTestOrderPosition(1, 1, 99, "4"))
	tree, _ := newTestTree(t, store)

	require.NoError(t, tree.RefreshOrderPositions(context.Background()))
	days, err := tree.GetOrderedPersonDaysSum(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, days.Valid)
}
