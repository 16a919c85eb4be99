package transcript

import "sync"

// DefaultKeySetLimit bounds the seen-conversation cache when no limit is
// given to NewKeySet.
const DefaultKeySetLimit = 10000

// KeySet is a bounded set of conversation keys a store has already
// observed. It exists only to skip the engine point-query on repeat
// activities; losing an entry (eviction, restart) costs one redundant
// query, never correctness. Check-and-add is a single atomic step so two
// racing writers for a brand-new conversation each decide the start flag
// independently, which is the tolerated duplicate-start anomaly.
type KeySet struct {
	mu    sync.Mutex
	limit int
	keys  map[string]struct{}
	order []string
}

// NewKeySet creates a KeySet holding at most limit keys. A non-positive
// limit falls back to DefaultKeySetLimit.
func NewKeySet(limit int) *KeySet {
	if limit <= 0 {
		limit = DefaultKeySetLimit
	}
	return &KeySet{
		limit: limit,
		keys:  make(map[string]struct{}),
	}
}

// Seen reports whether key was already present, marking it present either
// way. Oldest keys are evicted once the limit is reached.
func (s *KeySet) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return true
	}
	if len(s.order) >= s.limit {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.keys, evicted)
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)
	return false
}

// Len returns the number of cached keys.
func (s *KeySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
