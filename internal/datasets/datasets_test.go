package datasets

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/internal/dataset/datasettest"
)

// fakeGate implements DatasetGate for tests with counters.
type fakeGate struct {
	acquireErr error
	acquires   atomic.Int64
	releases   atomic.Int64
}

func (g *fakeGate) AcquireDataset(ctx context.Context) error {
	g.acquires.Add(1)
	return g.acquireErr
}
func (g *fakeGate) ReleaseDataset() { g.releases.Add(1) }

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ds := datasettest.Dataset([]dataset.Employee{datasettest.Employee("E1"), datasettest.Employee("E2")}, nil, nil, nil)
	datasettest.WriteDir(t, dir, ds)
	return dir
}

func TestAdoptGetClose(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(2*time.Second, time.Second, gate, time.Now)

	id, err := m.Adopt(context.Background(), &dataset.Dataset{})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, 1, m.Count())

	h, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, id, h.ID)

	require.NoError(t, m.CloseHandle(context.Background(), id))
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())
	require.ErrorIs(t, m.CloseHandle(context.Background(), id), ErrHandleNotFound)
}

func TestTTLExpiryAndEviction(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Now().UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	gate := &fakeGate{}
	m := NewManager(50*time.Millisecond, 5*time.Millisecond, gate, clock)

	id, err := m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: "abc"})
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())

	now.Store(time.Now().Add(200 * time.Millisecond).UnixNano())
	m.EvictExpired()

	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())
	require.ErrorIs(t, m.WithDataset(id, func(*dataset.Dataset) error { return nil }), ErrHandleNotFound)

	// The fingerprint no longer resolves after eviction.
	id2, err := m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: "abc"})
	require.NoError(t, err)
	require.NotEqual(t, id, id2)
}

func TestOpen_DeduplicatesByFingerprint(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Minute, gate, time.Now)
	dir := writeSample(t)

	id1, err := m.Open(context.Background(), dir)
	require.NoError(t, err)
	id2, err := m.Open(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, id1, id2)
	require.Equal(t, 1, m.Count())
	require.Equal(t, int64(1), gate.acquires.Load())

	var employees int
	require.NoError(t, m.WithDataset(id1, func(ds *dataset.Dataset) error {
		employees = len(ds.Employees)
		return nil
	}))
	require.Equal(t, 2, employees)
}

func TestOpen_LoadFailureReleasesGate(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Second, gate, time.Now)
	m.load = func(context.Context, string) (*dataset.Dataset, error) { return nil, errors.New("boom") }

	_, err := m.Open(context.Background(), writeSample(t))
	require.Error(t, err)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, int64(1), gate.releases.Load())
}

func TestOpen_GateBusy(t *testing.T) {
	gate := &fakeGate{acquireErr: context.DeadlineExceeded}
	m := NewManager(time.Second, time.Second, gate, time.Now)

	_, err := m.Open(context.Background(), writeSample(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, int64(0), gate.releases.Load())
}

func TestOpen_MissingSource(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Second, gate, time.Now)

	_, err := m.Open(context.Background(), t.TempDir())
	require.ErrorIs(t, err, dataset.ErrMissingTable)
	require.Equal(t, int64(0), gate.acquires.Load())
}

type denyValidator struct{}

func (denyValidator) ValidateOpenPath(string) (string, error) { return "", fmt.Errorf("denied") }

func TestOpen_PathValidatorDenied(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Second, gate, time.Now)
	m.SetValidator(denyValidator{})

	_, err := m.Open(context.Background(), writeSample(t))
	require.Error(t, err)
	require.Equal(t, int64(0), gate.acquires.Load())
}

func TestClose_ReleasesAll(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, 5*time.Millisecond, gate, time.Now)
	m.Start()

	_, err := m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: "a"})
	require.NoError(t, err)
	_, err = m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: "b"})
	require.NoError(t, err)
	require.Len(t, m.IDs(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Close(ctx))
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(2), gate.releases.Load())
}

func TestClose_Twice(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, 5*time.Millisecond, gate, time.Now)
	m.Start()

	_, err := m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Close(ctx))
	require.NotPanics(t, func() { require.NoError(t, m.Close(ctx)) })
	require.Equal(t, int64(1), gate.releases.Load())
}

func TestIDs_Sorted(t *testing.T) {
	m := NewManager(time.Minute, time.Minute, nil, time.Now)
	for _, fp := range []string{"a", "b", "c"} {
		_, err := m.Adopt(context.Background(), &dataset.Dataset{Fingerprint: fp})
		require.NoError(t, err)
	}
	ids := m.IDs()
	require.Len(t, ids, 3)
	require.IsNonDecreasing(t, ids)
}
