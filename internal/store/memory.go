package store

import (
	"context"
	"sync"
	"time"

	"shippingbar-service/internal/model"
	"shippingbar-service/prometheus"
)

// MemoryStore keeps records in a process-local map. State is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.SettingsRecord

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now Clock
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source
func WithClock(now Clock) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty store
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*model.SettingsRecord),
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// keyLock serializes writers of one instance without blocking other instances
func (s *MemoryStore) keyLock(instanceID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[instanceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[instanceID] = l
	}
	return l
}

// Get returns a copy of the instance's record, or ErrNotFound
func (s *MemoryStore) Get(_ context.Context, instanceID string) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("get")(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[instanceID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Create stores the default record with initial applied on top.
// It returns ErrAlreadyExists when the instance is already present.
func (s *MemoryStore) Create(_ context.Context, instanceID string, initial *model.SettingsPatch) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("create")(time.Now())

	l := s.keyLock(instanceID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	_, exists := s.records[instanceID]
	s.mu.RUnlock()
	if exists {
		return nil, ErrAlreadyExists
	}

	rec := model.DefaultSettings(instanceID)
	initial.ApplyTo(rec)
	now := s.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	s.mu.Lock()
	s.records[instanceID] = rec
	s.mu.Unlock()

	return rec.Clone(), nil
}

// Update merges patch onto the stored record under the instance lock
func (s *MemoryStore) Update(_ context.Context, instanceID string, patch *model.SettingsPatch) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("update")(time.Now())

	l := s.keyLock(instanceID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	current, ok := s.records[instanceID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	patch.ApplyTo(next)
	next.InstanceID = instanceID
	next.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	s.records[instanceID] = next
	s.mu.Unlock()

	return next.Clone(), nil
}

// Len returns the number of stored instances
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
