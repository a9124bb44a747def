package state

import (
	"net/netip"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// LSDB is the link-state database: router and network advertisements keyed
// by link-state id, plus an append-only list of AS-external advertisements.
// Advertisements age out at MaxAge unless the next discovery cycle
// re-inserts them; lookups never extend an entry's lifetime.
//
// The database is read-only during route computation. Exploration status is
// tracked per computation run, not here, so concurrent multi-root runs can
// share one LSDB.
type LSDB struct {
	db  *ttlcache.Cache[netip.Addr, *LSA]
	ext []*LSA
}

// LSDBOption configures a new LSDB.
type LSDBOption func(*lsdbConfig)

type lsdbConfig struct {
	maxAge time.Duration
}

// WithMaxAge overrides the advertisement lifetime. Used by tests; real
// deployments keep the RFC value.
func WithMaxAge(d time.Duration) LSDBOption {
	return func(c *lsdbConfig) {
		c.maxAge = d
	}
}

func NewLSDB(opts ...LSDBOption) *LSDB {
	cfg := lsdbConfig{maxAge: MaxAge}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LSDB{
		db: ttlcache.New[netip.Addr, *LSA](
			ttlcache.WithTTL[netip.Addr, *LSA](cfg.maxAge),
			ttlcache.WithDisableTouchOnHit[netip.Addr, *LSA](),
		),
	}
}

// Insert stores the router or network advertisement under key, replacing
// any previous advertisement for the same key. Topology changes are
// expected to resubmit full advertisements.
func (l *LSDB) Insert(key netip.Addr, lsa *LSA) {
	l.db.Set(key, lsa, ttlcache.DefaultTTL)
}

// Lookup returns the advertisement whose link-state id equals key, or nil.
func (l *LSDB) Lookup(key netip.Addr) *LSA {
	item := l.db.Get(key)
	if item == nil {
		return nil
	}
	return item.Value()
}

// LookupByLinkData returns the router advertisement carrying a transit link
// record whose link data (local interface address) equals addr, or nil.
// This resolves an attached-router address from a network advertisement
// back to the router that owns it.
func (l *LSDB) LookupByLinkData(addr netip.Addr) *LSA {
	var found *LSA
	l.db.Range(func(item *ttlcache.Item[netip.Addr, *LSA]) bool {
		for _, lr := range item.Value().Links {
			if lr.Type == TransitNetwork && lr.Data == addr {
				found = item.Value()
				return false
			}
		}
		return true
	})
	return found
}

// Range calls fn for every router and network advertisement until fn
// returns false.
func (l *LSDB) Range(fn func(lsa *LSA) bool) {
	l.db.Range(func(item *ttlcache.Item[netip.Addr, *LSA]) bool {
		return fn(item.Value())
	})
}

// Len returns the number of router and network advertisements.
func (l *LSDB) Len() int {
	return l.db.Len()
}

// InsertExternal appends an AS-external advertisement. Duplicates are
// allowed; entries are addressed by position.
func (l *LSDB) InsertExternal(lsa *LSA) {
	l.ext = append(l.ext, lsa)
}

// ExternalAt returns the external advertisement at index, or nil when the
// index is out of range.
func (l *LSDB) ExternalAt(index int) *LSA {
	if index < 0 || index >= len(l.ext) {
		return nil
	}
	return l.ext[index]
}

// ExternalCount returns the number of external advertisements.
func (l *LSDB) ExternalCount() int {
	return len(l.ext)
}
