package tasktree

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tasktree/internal/clock"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// memStore serves every source interface from plain maps.
type memStore struct {
	mu        sync.Mutex
	tasks     []*domain.Task
	rules     []*domain.GroupTaskAccess
	projects  []*domain.Project
	durations map[int64]int64
	kost2     []*domain.Kost2
	orders    map[int64][]domain.OrderContribution

	readErr  error
	orderErr error
	kost2Err error
	gate     chan struct{}

	// minuteLoaded receives a value once SumMinutesForTask has read its
	// figure; the call then blocks until minuteGate is closed.
	minuteLoaded chan struct{}
	minuteGate   chan struct{}

	reads       atomic.Int32
	orderReads  atomic.Int32
	minuteReads atomic.Int32
}

// hookClock runs hook once, on the first Now after arm.
type hookClock struct {
	clock.Clock
	armed atomic.Bool
	hook  func()
}

func (c *hookClock) arm(hook func()) {
	c.hook = hook
	c.armed.Store(true)
}

func (c *hookClock) Now() time.Time {
	if c.armed.CompareAndSwap(true, false) {
		c.hook()
	}
	return c.Clock.Now()
}

func newMemStore(tasks ...*domain.Task) *memStore {
	return &memStore{
		tasks:     tasks,
		durations: map[int64]int64{},
		orders:    map[int64][]domain.OrderContribution{},
	}
}

func (m *memStore) sources() Sources {
	return Sources{Snapshots: m, CostCenters: m, Orders: m, Durations: m}
}

func (m *memStore) addTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

func (m *memStore) addOrder(o domain.OrderContribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.TaskID] = append(m.orders[o.TaskID], o)
}

func (m *memStore) ReadTreeSnapshot(ctx context.Context) (*domain.TreeSnapshot, error) {
	m.reads.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	snap := &domain.TreeSnapshot{}
	for _, t := range m.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	for _, r := range m.rules {
		snap.AccessRules = append(snap.AccessRules, r.Clone())
	}
	for _, p := range m.projects {
		c := *p
		snap.Projects = append(snap.Projects, &c)
	}
	for id, minutes := range m.durations {
		snap.Durations = append(snap.Durations, domain.TaskDuration{TaskID: id, Minutes: minutes})
	}
	return snap, nil
}

func (m *memStore) ListActiveByNamespace(_ context.Context, ns domain.CostCenterNamespace) ([]*domain.Kost2, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Kost2
	for _, k := range m.kost2 {
		if k.Namespace == ns && k.IsActive() {
			c := *k
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) FindByCode(_ context.Context, code string) (*domain.Kost2, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kost2Err != nil {
		return nil, m.kost2Err
	}
	for _, k := range m.kost2 {
		if k.Code == code {
			c := *k
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListWorkloadReferences(context.Context) (map[int64][]domain.OrderContribution, error) {
	m.orderReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	out := make(map[int64][]domain.OrderContribution, len(m.orders))
	for id, positions := range m.orders {
		out[id] = append([]domain.OrderContribution(nil), positions...)
	}
	return out, nil
}

func (m *memStore) SumMinutesForTask(_ context.Context, taskID int64) (int64, error) {
	m.minuteReads.Add(1)
	m.mu.Lock()
	minutes := m.durations[taskID]
	loaded, gate := m.minuteLoaded, m.minuteGate
	m.mu.Unlock()
	if loaded != nil {
		loaded <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return minutes, nil
}

// task builds a task record; parent 0 makes it a root.
func task(id, parent int64, title string, opts ...testutil.TaskOption) *domain.Task {
	opts = append([]testutil.TaskOption{testutil.WithTaskID(id)}, opts...)
	if parent != 0 {
		opts = append(opts, testutil.WithParent(parent))
	}
	return testutil.NewTestTask(title, opts...)
}

// newTestTree returns a refreshed tree over store, driven by a fake clock.
func newTestTree(t *testing.T, store *memStore, opts ...Option) (*TaskTree, *clock.FakeClock) {
	t.Helper()
	fc := clock.Fake(testEpoch)
	opts = append([]Option{WithClock(fc)}, opts...)
	tree := New(store.sources(), opts...)
	require.NoError(t, tree.Refresh(context.Background()))
	return tree, fc
}

// sampleStore is the hierarchy most tests use:
//
//	1 Root
//	├── 2 Development
//	│   ├── 4 Backend
//	│   └── 5 Frontend
//	└── 3 Operations
//	    └── 6 Hosting
func sampleStore() *memStore {
	return newMemStore(
		task(1, 0, "Root"),
		task(2, 1, "Development"),
		task(3, 1, "Operations"),
		task(4, 2, "Backend"),
		task(5, 2, "Frontend"),
		task(6, 3, "Hosting"),
	)
}

func ids(nodes []*TaskNode) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

// requireSingleRoot checks that exactly one indexed node is a root and every
// other node reaches it by walking up.
func requireSingleRoot(t *testing.T, tree *TaskTree) {
	t.Helper()
	tree.mapMu.RLock()
	nodes := make([]*TaskNode, 0, len(tree.nodes))
	for _, n := range tree.nodes {
		nodes = append(nodes, n)
	}
	root := tree.root
	tree.mapMu.RUnlock()

	require.NotNil(t, root)
	roots := 0
	for _, n := range nodes {
		if n.Parent() == nil {
			roots++
			continue
		}
		top := n
		for top.Parent() != nil {
			top = top.Parent()
		}
		require.Same(t, root, top, "node %d does not reach the root", n.ID())
	}
	require.Equal(t, 1, roots)
}
