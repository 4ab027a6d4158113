package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

// InMemory holds parsed grids keyed by the hash of their raw text. Concurrent
// misses for the same text share one parse.
type InMemory struct {
	items *lru.Cache[string, *patrol.Grid]
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max <= 0 {
		max = 1
	}
	items, err := lru.New[string, *patrol.Grid](max)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &InMemory{items: items}
}

func (c *InMemory) GetOrCompute(raw string, fn func() (*patrol.Grid, error)) (*patrol.Grid, error) {
	key := hash(raw)
	if g, ok := c.items.Get(key); ok {
		return g, nil
	}

	v, err, _ := c.group.Do(key, func() (v any, err error) {
		if g, ok := c.items.Get(key); ok {
			return g, nil
		}
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("grid compute panicked: %v", r)
			}
		}()

		g, err := fn()
		if err != nil {
			return nil, err
		}
		c.items.Add(key, g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*patrol.Grid), nil
}

func (c *InMemory) Len() int { return c.items.Len() }

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
