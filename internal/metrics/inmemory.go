package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered      uint64
	UsersUpdated         uint64
	UsersDeleted         uint64
	UserCacheHits        uint64
	UserStoreLookups     uint64
	AccountsOpened       uint64
	AccountsUpdated      uint64
	AccountsClosed       uint64
	EventsPublished      uint64
	EventsDropped        uint64
	StoreErrors          map[string]uint64
	StoreDurationCount   uint64
	StoreDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered      uint64
	usersUpdated         uint64
	usersDeleted         uint64
	userCacheHits        uint64
	userStoreLookups     uint64
	accountsOpened       uint64
	accountsUpdated      uint64
	accountsClosed       uint64
	eventsPublished      uint64
	eventsDropped        uint64
	storeDurationCount   uint64
	storeDurationTotalNs int64

	mu          sync.Mutex
	storeErrors map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{storeErrors: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	errs := make(map[string]uint64, len(m.storeErrors))
	for op, n := range m.storeErrors {
		errs[op] = n
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:      atomic.LoadUint64(&m.usersRegistered),
		UsersUpdated:         atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:         atomic.LoadUint64(&m.usersDeleted),
		UserCacheHits:        atomic.LoadUint64(&m.userCacheHits),
		UserStoreLookups:     atomic.LoadUint64(&m.userStoreLookups),
		AccountsOpened:       atomic.LoadUint64(&m.accountsOpened),
		AccountsUpdated:      atomic.LoadUint64(&m.accountsUpdated),
		AccountsClosed:       atomic.LoadUint64(&m.accountsClosed),
		EventsPublished:      atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:        atomic.LoadUint64(&m.eventsDropped),
		StoreErrors:          errs,
		StoreDurationCount:   atomic.LoadUint64(&m.storeDurationCount),
		StoreDurationTotalNs: atomic.LoadInt64(&m.storeDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncUserUpdated increments the user update counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user delete counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncUserLookup counts a successful lookup by where it was served from.
func (m *InMemoryRecorder) IncUserLookup(source string) {
	if source == SourceCache {
		atomic.AddUint64(&m.userCacheHits, 1)
		return
	}
	atomic.AddUint64(&m.userStoreLookups, 1)
}

// IncAccountOpened increments the account open counter.
func (m *InMemoryRecorder) IncAccountOpened() {
	atomic.AddUint64(&m.accountsOpened, 1)
}

// IncAccountUpdated increments the account update counter.
func (m *InMemoryRecorder) IncAccountUpdated() {
	atomic.AddUint64(&m.accountsUpdated, 1)
}

// IncAccountClosed increments the account close counter.
func (m *InMemoryRecorder) IncAccountClosed() {
	atomic.AddUint64(&m.accountsClosed, 1)
}

// IncEventPublished counts stream publishes by outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncStoreError counts an unavailable-store failure per operation.
func (m *InMemoryRecorder) IncStoreError(op string) {
	m.mu.Lock()
	m.storeErrors[op]++
	m.mu.Unlock()
}

// ObserveStoreDuration records store call latency.
func (m *InMemoryRecorder) ObserveStoreDuration(duration time.Duration) {
	atomic.AddUint64(&m.storeDurationCount, 1)
	atomic.AddInt64(&m.storeDurationTotalNs, duration.Nanoseconds())
}
