package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"rrt-planner/planner"
)

// runRecord is a finished planning run kept for later export
type runRecord struct {
	ID        string
	Config    planner.Config
	Result    planner.Result
	CreatedAt time.Time
}

// runStore keeps the most recent runs by id. Seeded runs are deterministic,
// so it also maps a config digest to the run that config produced.
type runStore struct {
	mu      sync.RWMutex
	runs    map[string]*runRecord
	order   []string
	byKey   map[uint64]string
	maxRuns int
}

func newRunStore(maxRuns int) *runStore {
	return &runStore{
		runs:    make(map[string]*runRecord),
		byKey:   make(map[uint64]string),
		maxRuns: maxRuns,
	}
}

// configKey digests the canonical JSON form of a config
func configKey(cfg planner.Config) (uint64, bool) {
	data, err := json.Marshal(cfg.Normalize())
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

// Lookup returns the stored run produced by an identical config
func (s *runStore) Lookup(cfg planner.Config) (*runRecord, bool) {
	key, ok := configKey(cfg)
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	rec, ok := s.runs[id]
	return rec, ok
}

// Put stores a finished run under a fresh id, evicting the oldest run when full.
// Cancelled runs are kept by id but never served from the cache.
func (s *runStore) Put(cfg planner.Config, res planner.Result) *runRecord {
	rec := &runRecord{
		ID:        uuid.NewString(),
		Config:    cfg,
		Result:    res,
		CreatedAt: time.Now(),
	}
	key, cacheable := configKey(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.maxRuns {
		s.evictOldest()
	}
	s.runs[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	if cacheable && res.Status != planner.StatusCancelled {
		s.byKey[key] = rec.ID
	}
	return rec
}

// Get returns a run by id
func (s *runStore) Get(id string) (*runRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	return rec, ok
}

// Len returns the number of stored runs
func (s *runStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.runs)
}

func (s *runStore) evictOldest() {
	id := s.order[0]
	s.order = s.order[1:]

	rec, ok := s.runs[id]
	if !ok {
		return
	}
	delete(s.runs, id)

	if key, ok := configKey(rec.Config); ok && s.byKey[key] == id {
		delete(s.byKey, key)
	}
}
