package filter

import (
	lru "github.com/hashicorp/golang-lru"
)

// designCacheSize bounds the number of distinct filter designs kept in memory.
const designCacheSize = 64

// designKey identifies a high-pass design.
type designKey struct {
	order        int
	cutoff       float64
	samplingRate float64
}

// designCache memoizes filter designs. The underlying LRU is safe for
// concurrent use. Designs go in and come out as copies, so callers may
// modify what they get.
type designCache struct {
	cache *lru.Cache
}

//nolint:gochecknoglobals // Designs are pure values shared by every caller.
var designs = newDesignCache(designCacheSize)

func newDesignCache(size int) *designCache {
	cache, _ := lru.New(size) // Can only error if size is not positive.

	return &designCache{cache: cache}
}

func (c *designCache) get(key designKey) (*Butterworth, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}

	design, ok := v.(*Butterworth)
	if !ok {
		return nil, false
	}

	return design.clone(), true
}

func (c *designCache) add(key designKey, design *Butterworth) {
	c.cache.Add(key, design.clone())
}
