// Package scrollstate remembers the last scroll offset of a list by a caller
// supplied identity, so a list that is unmounted and mounted again (a tab
// switch, for example) resumes where it was.
package scrollstate

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Store maps list identities to their last seen scroll offset. Writes are
// last-write-wins. With a positive capacity the least recently used key is
// evicted once the store is full; otherwise entries live for the lifetime of
// the process.
type Store struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	entries  map[string]*list.Element
}

type entry struct {
	key string
	pos Position
}

// Position is a recorded scroll position. Offset is the line offset of the
// viewport. Anchor, when set, is the key of the item at the top of the
// viewport and Delta the number of lines of that item scrolled past. Lists
// whose item heights are only known after rendering resume from the anchor
// rather than the raw offset.
type Position struct {
	Offset int
	Anchor string
	Delta  int
}

// New creates a store. A capacity of zero or less means unbounded.
func New(capacity int) *Store {
	return &Store{
		capacity: max(0, capacity),
		ll:       list.New(),
		entries:  make(map[string]*list.Element),
	}
}

var defaultStore atomic.Pointer[Store]

func init() {
	defaultStore.Store(New(0))
}

// Default returns the process-wide store.
func Default() *Store {
	return defaultStore.Load()
}

// SetDefault replaces the process-wide store.
func SetDefault(s *Store) {
	if s != nil {
		defaultStore.Store(s)
	}
}

// Capacity returns the eviction bound, zero when unbounded.
func (s *Store) Capacity() int {
	return s.capacity
}

// Record stores offset under key and drops any anchor recorded with it.
// Negative offsets are stored as zero and empty keys are ignored.
func (s *Store) Record(key string, offset int) {
	s.RecordPosition(key, Position{Offset: offset})
}

// RecordPosition stores pos under key.
func (s *Store) RecordPosition(key string, pos Position) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pos.Offset = max(0, pos.Offset)
	pos.Delta = max(0, pos.Delta)
	if pos.Anchor == "" {
		pos.Delta = 0
	}
	if elem, ok := s.entries[key]; ok {
		elem.Value.(*entry).pos = pos
		s.ll.MoveToFront(elem)
		return
	}
	s.entries[key] = s.ll.PushFront(&entry{key: key, pos: pos})
	for s.capacity > 0 && s.ll.Len() > s.capacity {
		oldest := s.ll.Back()
		s.ll.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry).key)
	}
}

// Read returns the offset recorded under key, or 0 (the top) if the key was
// never recorded.
func (s *Store) Read(key string) int {
	offset, _ := s.Lookup(key)
	return offset
}

// Lookup returns the offset recorded under key and whether it exists.
func (s *Store) Lookup(key string) (int, bool) {
	pos, ok := s.LookupPosition(key)
	return pos.Offset, ok
}

// LookupPosition returns the position recorded under key and whether it
// exists.
func (s *Store) LookupPosition(key string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return Position{}, false
	}
	s.ll.MoveToFront(elem)
	return elem.Value.(*entry).pos, true
}

// Forget removes key from the store.
func (s *Store) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.ll.Remove(elem)
		delete(s.entries, key)
	}
}

// Len returns the number of recorded keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// Keys returns the recorded keys, most recently used first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, s.ll.Len())
	for e := s.ll.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry).key)
	}
	return keys
}
