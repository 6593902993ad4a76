// Package cache provides a read-through ristretto cache in front of a
// storage.RecordStore.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
)

// Store caches single records and whole-type snapshots.
// Keys are remembered per resource type so that a commit touching a type
// can drop all of that type's entries at once.
type Store struct {
	inner storage.RecordStore
	cache *ristretto.Cache[string, []storage.Record]

	// mu сериализует чтение промахов и коммиты, чтобы в кеш не попало
	// значение, прочитанное до коммита
	mu sync.RWMutex

	keysMu sync.Mutex
	keys   map[models.ResourceType]map[string]struct{}
}

var _ storage.RecordStore = (*Store)(nil)

// New wraps inner with a cache holding at most maxItems entries.
func New(inner storage.RecordStore, maxItems int64) (*Store, error) {
	if maxItems <= 0 {
		maxItems = 10000
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []storage.Record]{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return &Store{
		inner: inner,
		cache: c,
		keys:  make(map[models.ResourceType]map[string]struct{}),
	}, nil
}

// Close releases cache resources; the wrapped store is not closed.
func (s *Store) Close() {
	s.cache.Close()
}

func recordKey(rt models.ResourceType, id int64) string {
	return string(rt) + "/" + strconv.FormatInt(id, 10)
}

func snapshotKey(rt models.ResourceType) string {
	return string(rt) + "/*"
}

// set must be called with mu held for reading.
func (s *Store) set(rt models.ResourceType, key string, value []storage.Record) {
	// читатели держат только RLock, поэтому map ключей под своим мьютексом
	s.keysMu.Lock()
	if s.keys[rt] == nil {
		s.keys[rt] = make(map[string]struct{})
	}
	s.keys[rt][key] = struct{}{}
	s.keysMu.Unlock()

	s.cache.Set(key, value, 1)
}

// Get returns a cached record or loads it from the wrapped store.
func (s *Store) Get(ctx context.Context, rt models.ResourceType, id int64) ([]byte, error) {
	key := recordKey(rt, id)
	if v, ok := s.cache.Get(key); ok {
		return v[0].Data, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.inner.Get(ctx, rt, id)
	if err != nil {
		return nil, err
	}

	s.set(rt, key, []storage.Record{{ID: id, Data: data}})
	return data, nil
}

// Query filters a cached snapshot of the whole type.
func (s *Store) Query(ctx context.Context, rt models.ResourceType, match func(id int64, data []byte) bool) ([]storage.Record, error) {
	all, ok := s.cache.Get(snapshotKey(rt))
	if !ok {
		s.mu.RLock()
		var err error
		all, err = s.inner.Query(ctx, rt, nil)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		s.set(rt, snapshotKey(rt), all)
		s.mu.RUnlock()
	}

	var out []storage.Record
	for _, rec := range all {
		if match == nil || match(rec.ID, rec.Data) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Update delegates to the wrapped store and, after a successful commit,
// invalidates every type the transaction wrote to.
func (s *Store) Update(ctx context.Context, fn func(tx storage.RecordTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[models.ResourceType]struct{})
	err := s.inner.Update(ctx, func(tx storage.RecordTx) error {
		return fn(&trackingTx{RecordTx: tx, touched: touched})
	})
	if err != nil {
		return err
	}

	for rt := range touched {
		s.invalidate(rt)
	}
	return nil
}

// Wipe clears the wrapped store and the whole cache.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inner.Wipe(ctx); err != nil {
		return err
	}

	s.cache.Clear()
	s.keysMu.Lock()
	s.keys = make(map[models.ResourceType]map[string]struct{})
	s.keysMu.Unlock()
	return nil
}

// invalidate must be called with mu held for writing.
func (s *Store) invalidate(rt models.ResourceType) {
	s.keysMu.Lock()
	keys := s.keys[rt]
	delete(s.keys, rt)
	s.keysMu.Unlock()

	for key := range keys {
		s.cache.Del(key)
	}
}

// trackingTx records which types were written.
type trackingTx struct {
	storage.RecordTx
	touched map[models.ResourceType]struct{}
}

func (t *trackingTx) UpsertBatch(rt models.ResourceType, records []storage.Record) error {
	t.touched[rt] = struct{}{}
	return t.RecordTx.UpsertBatch(rt, records)
}

func (t *trackingTx) DeleteBatch(rt models.ResourceType, ids []int64) error {
	t.touched[rt] = struct{}{}
	return t.RecordTx.DeleteBatch(rt, ids)
}
