package bayesopt

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dspygo/optimizer/internal/primitives"
)

const defaultSeenCapacity = 4096

// SeenSet tracks Configurations already observed within one optimize run, so
// candidate generation can exclude them (§4.4 step 2b: "excluding any
// already observed, dedupe by value equality"). Backed by an LRU so a long
//-running optimize loop with a large candidate pool doesn't grow this set
// unboundedly.
type SeenSet struct {
	cache *lru.Cache[string, struct{}]
}

// NewSeenSet creates a SeenSet with room for capacity distinct configuration
// keys; capacity <= 0 uses a sensible default.
func NewSeenSet(capacity int) *SeenSet {
	if capacity <= 0 {
		capacity = defaultSeenCapacity
	}
	cache, _ := lru.New[string, struct{}](capacity)
	return &SeenSet{cache: cache}
}

// Contains reports whether config has already been observed.
func (s *SeenSet) Contains(config primitives.Configuration) bool {
	_, ok := s.cache.Get(config.Key())
	return ok
}

// Add records config as observed.
func (s *SeenSet) Add(config primitives.Configuration) {
	s.cache.Add(config.Key(), struct{}{})
}
