package datasets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/hrpulse/config"
	"github.com/vinodismyname/hrpulse/internal/dataset"
)

// Handle pairs a loaded dataset with metadata for TTL eviction.
type Handle struct {
	ID        string
	Data      *dataset.Dataset
	LoadedAt  time.Time
	ExpiresAt time.Time
	mu        sync.RWMutex
}

// DatasetGate coordinates capacity for open dataset handles (backed by runtime.Controller).
type DatasetGate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator abstracts filesystem path validation. Implementations should
// return a canonical absolute path if allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// LoadFunc parses a dataset from a canonical path.
type LoadFunc func(ctx context.Context, path string) (*dataset.Dataset, error)

// ErrHandleNotFound indicates an unknown or expired handle ID.
var ErrHandleNotFound = errors.New("datasets: handle not found")

// Manager caches loaded datasets behind TTL-bearing handles. Datasets with
// identical source bytes share one handle.
type Manager struct {
	mu            sync.RWMutex
	handles       map[string]*Handle
	byFingerprint map[string]string
	ttl           time.Duration
	cleanupEvery  time.Duration
	clock         func() time.Time
	gate          DatasetGate
	validator     PathValidator
	load          LoadFunc
	stopCh        chan struct{}
	stopOnce      sync.Once
	cleanupWG     sync.WaitGroup
}

// NewManager constructs a manager with a TTL-bearing handle cache.
// Pass ttl or cleanupEvery <= 0 to use defaults from config.
// Gate can be nil for tests; clock defaults to time.Now when nil.
func NewManager(ttl, cleanupEvery time.Duration, gate DatasetGate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		handles:       make(map[string]*Handle),
		byFingerprint: make(map[string]string),
		ttl:           ttl,
		cleanupEvery:  cleanupEvery,
		clock:         clock,
		gate:          gate,
		load:          dataset.Load,
		stopCh:        make(chan struct{}),
	}
}

// SetValidator installs the path validator consulted by Open.
func (m *Manager) SetValidator(v PathValidator) { m.validator = v }

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops all handles. It is safe to call
// more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.handles {
		delete(m.handles, id)
		m.release()
	}
	clear(m.byFingerprint)
	return nil
}

// Open loads the dataset at path and returns its handle ID. A path whose
// content is already cached resolves to the existing handle.
func (m *Manager) Open(ctx context.Context, path string) (string, error) {
	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return "", err
		}
		path = canonical
	}

	fp, err := dataset.Fingerprint(path)
	if err != nil {
		return "", err
	}
	if id, ok := m.lookupFingerprint(fp); ok {
		return id, nil
	}

	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	ds, err := m.load(ctx, path)
	if err != nil {
		m.release()
		return "", err
	}
	id, dup := m.register(ds)
	if dup {
		m.release()
	}
	zerolog.Ctx(ctx).Info().Str("dataset_id", id).Str("source", ds.Source).Int("employees", len(ds.Employees)).Msg("dataset opened")
	return id, nil
}

// Adopt registers an already-loaded dataset as a managed handle.
func (m *Manager) Adopt(ctx context.Context, ds *dataset.Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("datasets: nil dataset")
	}
	if ds.Fingerprint != "" {
		if id, ok := m.lookupFingerprint(ds.Fingerprint); ok {
			return id, nil
		}
	}
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	id, dup := m.register(ds)
	if dup {
		m.release()
	}
	return id, nil
}

func (m *Manager) lookupFingerprint(fp string) (string, bool) {
	m.mu.RLock()
	id, ok := m.byFingerprint[fp]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if _, live := m.Get(id); !live {
		return "", false
	}
	return id, true
}

// register stores ds under a fresh ID unless a concurrent Open registered the
// same fingerprint first; dup reports the latter.
func (m *Manager) register(ds *dataset.Dataset) (id string, dup bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ds.Fingerprint != "" {
		if existing, ok := m.byFingerprint[ds.Fingerprint]; ok {
			if _, live := m.handles[existing]; live {
				return existing, true
			}
		}
	}
	now := m.clock()
	id = uuid.NewString()
	m.handles[id] = &Handle{ID: id, Data: ds, LoadedAt: now, ExpiresAt: now.Add(m.ttl)}
	if ds.Fingerprint != "" {
		m.byFingerprint[ds.Fingerprint] = id
	}
	return id, false
}

// Get returns the handle when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	// Refresh TTL on access (idle timeout semantics)
	now := m.clock()
	h.mu.Lock()
	h.ExpiresAt = now.Add(m.ttl)
	h.mu.Unlock()
	return h, true
}

// WithDataset runs fn against the dataset behind id.
func (m *Manager) WithDataset(id string, fn func(*dataset.Dataset) error) error {
	h, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	return fn(h.Data)
}

// CloseHandle removes a handle by ID, releasing capacity via the gate.
func (m *Manager) CloseHandle(ctx context.Context, id string) error {
	m.mu.Lock()
	h, ok := m.handles[id]
	if ok {
		m.drop(id, h)
	}
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	m.release()
	return nil
}

// EvictExpired scans for expired handles and drops them.
func (m *Manager) EvictExpired() {
	now := m.clock()
	m.mu.Lock()
	var evicted int
	for id, h := range m.handles {
		if h.Expired(now) {
			m.drop(id, h)
			evicted++
		}
	}
	m.mu.Unlock()
	for range evicted {
		m.release()
	}
}

// drop removes a handle; callers hold m.mu.
func (m *Manager) drop(id string, h *Handle) {
	delete(m.handles, id)
	if fp := h.Data.Fingerprint; fp != "" && m.byFingerprint[fp] == id {
		delete(m.byFingerprint, fp)
	}
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

// IDs lists the live handle IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.handles))
	for id := range m.handles {
		out = append(out, id)
	}
	m.mu.RUnlock()
	slices.Sort(out)
	return out
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireDataset(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}

// Expired reports whether the handle has reached its TTL.
func (h *Handle) Expired(now time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return now.After(h.ExpiresAt)
}
