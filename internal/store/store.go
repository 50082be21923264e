package store

import (
	"hash/fnv"
	"sync"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

const shardCount = 32

// shard is one partition of the store, keyed by listing id hash.
type shard struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

// ListingStore is the in-memory system of record for listing attributes.
// Listings are stored by value so readers never observe partial writes.
type ListingStore struct {
	shards [shardCount]*shard
}

// New creates an empty ListingStore.
func New() *ListingStore {
	s := &ListingStore{}
	for i := range s.shards {
		s.shards[i] = &shard{listings: make(map[string]domain.Listing)}
	}
	return s
}

func (s *ListingStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Upsert inserts or fully replaces a listing. Partial updates are not
// supported; callers send the complete record.
func (s *ListingStore) Upsert(l domain.Listing) error {
	if l.ID == "" {
		return apperrors.InvalidArgument("listing id is required")
	}

	sh := s.shardFor(l.ID)
	sh.mu.Lock()
	sh.listings[l.ID] = l
	sh.mu.Unlock()
	return nil
}

// Get returns the listing with the given id, or NotFound.
func (s *ListingStore) Get(id string) (domain.Listing, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	l, ok := sh.listings[id]
	sh.mu.RUnlock()

	if !ok {
		return domain.Listing{}, apperrors.NotFound("listing", id)
	}
	return l, nil
}

// GetMany returns the listings for the given ids, preserving input order.
// Ids that are not present are silently dropped; with a concurrently mutated
// catalog a caller holding ids from an earlier index scan may legitimately
// ask for listings that no longer exist.
func (s *ListingStore) GetMany(ids []string) []domain.Listing {
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.RLock()
		l, ok := sh.listings[id]
		sh.mu.RUnlock()
		if ok {
			out = append(out, l)
		}
	}
	return out
}

// Delete removes a listing. Unknown ids fail with NotFound.
func (s *ListingStore) Delete(id string) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.listings[id]; !ok {
		return apperrors.NotFound("listing", id)
	}
	delete(sh.listings, id)
	return nil
}

// Len returns the number of stored listings.
func (s *ListingStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.listings)
		sh.mu.RUnlock()
	}
	return n
}

// Range calls fn for every listing until fn returns false. Iteration order
// is unspecified. The shard lock is held while fn runs, so fn must not call
// back into the store.
func (s *ListingStore) Range(fn func(domain.Listing) bool) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, l := range sh.listings {
			if !fn(l) {
				sh.mu.RUnlock()
				return
			}
		}
		sh.mu.RUnlock()
	}
}
