// Package snapshot keeps per user and company views of Tally masters. A
// snapshot is never changed in place; updates replace it.
package snapshot

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vouchrit/tally"
)

// Key identifies the owner of a snapshot.
type Key struct {
	UserID    string
	CompanyID string
}

// String is the cache key of k. The user id is length prefixed so that no
// pair of ids can collide.
func (k Key) String() string {
	return strconv.Itoa(len(k.UserID)) + ":" + k.UserID + "/" + k.CompanyID
}

// Snapshot is the ledger and stock item catalog of one company at FetchedAt.
type Snapshot struct {
	Company    string                 `json:"company"`
	Ledgers    tally.LedgerCatalog    `json:"ledgers"`
	StockItems tally.StockItemCatalog `json:"stockItems"`
	FetchedAt  time.Time              `json:"fetchedAt"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	s.Ledgers = s.Ledgers.Clone()
	s.StockItems = slices.Clone(s.StockItems)
	return s
}

// WithLedger returns a copy of s that also lists a newly created ledger.
func (s Snapshot) WithLedger(name, parent string, groups tally.GroupTable) Snapshot {
	out := s.Clone()
	out.Ledgers = s.Ledgers.WithLedger(name, parent, groups)
	return out
}

// Cache holds snapshots in memory for a limited time.
type Cache struct {
	mu sync.Mutex
	c  *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Get returns a copy of the cached snapshot.
func (c *Cache) Get(k Key) (Snapshot, bool) {
	v, ok := c.c.Get(k.String())
	if !ok {
		return Snapshot{}, false
	}
	return v.(Snapshot).Clone(), true
}

// Put stores a copy of s.
func (c *Cache) Put(k Key, s Snapshot) {
	c.c.Set(k.String(), s.Clone(), cache.DefaultExpiration)
}

// Invalidate drops the snapshot of k.
func (c *Cache) Invalidate(k Key) {
	c.c.Delete(k.String())
}

// AppendLedger replaces the snapshot of k by one that also lists the ledger.
// It reports false when nothing is cached for k.
func (c *Cache) AppendLedger(k Key, name, parent string, groups tally.GroupTable) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.c.Get(k.String())
	if !ok {
		return Snapshot{}, false
	}
	next := v.(Snapshot).WithLedger(name, parent, groups)
	c.c.Set(k.String(), next, cache.DefaultExpiration)
	return next.Clone(), true
}
